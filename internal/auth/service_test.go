package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tenantgate/pkg/problems"
	"tenantgate/pkg/secrets"
	"tenantgate/pkg/tenants"
	"tenantgate/pkg/token"
)

const (
	acmeID     = "7d1c9a52-0d5e-4c1e-9b8e-3a4d3d4f2b10"
	acmeSecret = "super-secret-value"
)

type fixture struct {
	svc   *Service
	store *tenants.MemoryStore
	codec *token.Codec
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, mutate func(*tenants.Tenant)) fixture {
	t.Helper()
	hasher := secrets.NewBcrypt(4)
	digest, err := hasher.Hash(acmeSecret)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	acme := tenants.Tenant{
		ID:           acmeID,
		ClientID:     "acme-corp",
		HashedSecret: digest,
		BackendURL:   "https://api.acme.example/v1",
		Metadata:     `{"name":"Acme Corporation","plan":"enterprise"}`,
	}
	if mutate != nil {
		mutate(&acme)
	}
	store := tenants.NewMemoryStore(acme)
	return newFixtureWithStore(t, store, hasher, store)
}

func newFixtureWithStore(t *testing.T, st tenants.Store, hasher secrets.Hasher, mem *tenants.MemoryStore) fixture {
	t.Helper()
	codec, err := token.NewCodec([]byte("unit-test-secret"), "1h")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	core, logs := observer.New(zapcore.DebugLevel)
	svc, err := NewService(st, hasher, codec, zap.New(core).Sugar())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return fixture{svc: svc, store: mem, codec: codec, logs: logs}
}

func TestAuthenticateSuccess(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.Authenticate(context.Background(), "acme-corp", acmeSecret)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.TokenType != "Bearer" || res.ExpiresIn != 3600 {
		t.Errorf("result = %+v", res)
	}
	want := Summary{ID: acmeID, ClientID: "acme-corp", BackendURL: "https://api.acme.example/v1"}
	if res.Tenant != want {
		t.Errorf("Tenant = %+v, want %+v", res.Tenant, want)
	}

	id, err := f.codec.Verify(res.AccessToken)
	if err != nil {
		t.Fatalf("Verify issued token: %v", err)
	}
	if id.TenantID != acmeID || id.ClientID != "acme-corp" {
		t.Errorf("identity = %+v", id.Payload)
	}
	var meta map[string]string
	if err := id.Metadata.Decode(&meta); err != nil || meta["plan"] != "enterprise" {
		t.Errorf("metadata = %s (err %v)", id.Metadata, err)
	}
	if d := id.ExpiresAt.Sub(id.IssuedAt); d != time.Hour {
		t.Errorf("exp - iat = %v, want 1h", d)
	}
	if f.logs.FilterMessage("login attempt").Len() != 1 || f.logs.FilterMessage("login succeeded").Len() != 1 {
		t.Errorf("audit entries missing: %v", f.logs.All())
	}
}

func TestAuthenticateFailures(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*tenants.Tenant)
		clientID string
		secret   string
		want     error
		logMsg   string
	}{
		{"wrong secret", nil, "acme-corp", "wrong", problems.ErrInvalidCredentials, "login failed: invalid secret"},
		{"unknown client", nil, "ghost", acmeSecret, problems.ErrInvalidCredentials, "login failed: unknown client"},
		{"client id is case sensitive", nil, "ACME-CORP", acmeSecret, problems.ErrInvalidCredentials, "login failed: unknown client"},
		{"empty secret", nil, "acme-corp", "", problems.ErrInvalidCredentials, "login failed: invalid secret"},
		{"disabled", func(t *tenants.Tenant) { t.IsDisabled = true }, "acme-corp", acmeSecret, problems.ErrTenantDisabled, "login failed: tenant disabled"},
		{"disabled wins over wrong secret", func(t *tenants.Tenant) { t.IsDisabled = true }, "acme-corp", "wrong", problems.ErrTenantDisabled, "login failed: tenant disabled"},
		{"corrupt digest", func(t *tenants.Tenant) { t.HashedSecret = "not-a-hash" }, "acme-corp", acmeSecret, problems.ErrInvalidCredentials, "login failed: invalid secret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.mutate)
			res, err := f.svc.Authenticate(context.Background(), tc.clientID, tc.secret)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if res.AccessToken != "" {
				t.Error("token issued on failure")
			}
			if f.logs.FilterMessage(tc.logMsg).Len() != 1 {
				t.Errorf("missing log %q: %v", tc.logMsg, f.logs.All())
			}
		})
	}
}

func TestUnknownClientAndWrongSecretLookAlike(t *testing.T) {
	f := newFixture(t, nil)
	_, errUnknown := f.svc.Authenticate(context.Background(), "ghost", "x")
	_, errWrong := f.svc.Authenticate(context.Background(), "acme-corp", "x")
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("errors differ: %q vs %q", errUnknown, errWrong)
	}
}

type failingStore struct{ err error }

func (s failingStore) FindByClientID(context.Context, string) (tenants.Tenant, error) {
	return tenants.Tenant{}, s.err
}

func TestStoreOutageIsInfrastructure(t *testing.T) {
	f := newFixtureWithStore(t, failingStore{err: errors.New("connection refused")}, secrets.NewBcrypt(4), nil)
	_, err := f.svc.Authenticate(context.Background(), "acme-corp", acmeSecret)
	if problems.KindOf(err) != problems.KindInfrastructure {
		t.Fatalf("kind = %s, want infrastructure", problems.KindOf(err))
	}
	if errors.Is(err, problems.ErrInvalidCredentials) {
		t.Error("outage reported as invalid credentials")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %v, want cause retained", err)
	}
	if f.logs.FilterLevelExact(zapcore.ErrorLevel).Len() == 0 {
		t.Error("outage not logged at error level")
	}
}

func TestCorruptMetadataStillIssuesToken(t *testing.T) {
	for _, raw := range []string{`{not json`, `[1,2]`, `"text"`} {
		f := newFixture(t, func(t *tenants.Tenant) { t.Metadata = raw })
		res, err := f.svc.Authenticate(context.Background(), "acme-corp", acmeSecret)
		if err != nil {
			t.Fatalf("metadata %q: Authenticate: %v", raw, err)
		}
		id, err := f.codec.Verify(res.AccessToken)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if id.Metadata != nil {
			t.Errorf("metadata %q: token metadata = %s, want null", raw, id.Metadata)
		}
		if f.logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
			t.Errorf("metadata %q: want one warning, got %v", raw, f.logs.All())
		}
	}
}

func TestTokenIsSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.svc.Authenticate(context.Background(), "acme-corp", acmeSecret)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := f.store.SetDisabled("acme-corp", true); err != nil {
		t.Fatalf("SetDisabled: %v", err)
	}
	if _, err := f.codec.Verify(res.AccessToken); err != nil {
		t.Errorf("token issued before disable no longer verifies: %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), "acme-corp", acmeSecret); !errors.Is(err, problems.ErrTenantDisabled) {
		t.Errorf("login after disable err = %v, want ErrTenantDisabled", err)
	}
}

type failingSigner struct{}

func (failingSigner) Sign(token.Payload) (string, error) { return "", errors.New("hsm offline") }
func (failingSigner) ExpiresIn() int64                   { return 0 }

func TestSigningFailureIsInfrastructure(t *testing.T) {
	hasher := secrets.NewBcrypt(4)
	digest, _ := hasher.Hash(acmeSecret)
	store := tenants.NewMemoryStore(tenants.Tenant{ID: acmeID, ClientID: "acme-corp", HashedSecret: digest})
	svc, err := NewService(store, hasher, failingSigner{}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "acme-corp", acmeSecret); problems.KindOf(err) != problems.KindInfrastructure {
		t.Errorf("err = %v, want infrastructure", err)
	}
}

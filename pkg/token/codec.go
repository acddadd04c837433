// pkg/token/codec.go
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"tenantgate/pkg/problems"
	"tenantgate/pkg/tenants"
)

// Private claim names carried in every token.
const (
	claimTenantID   = "tenantId"
	claimClientID   = "clientId"
	claimBackendURL = "backendUrl"
	claimMetadata   = "metadata"
)

// Payload is the tenant snapshot embedded in a token at login.
type Payload struct {
	TenantID   string           `json:"tenantId"`
	ClientID   string           `json:"clientId"`
	BackendURL string           `json:"backendUrl"`
	Metadata   tenants.Metadata `json:"metadata"`
}

// Identity is a verified token: its payload plus the implicit claims.
type Identity struct {
	Payload
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// MarshalJSON renders iat and exp as epoch seconds next to the payload fields.
func (id Identity) MarshalJSON() ([]byte, error) {
	type wire struct {
		Payload
		IssuedAt  int64 `json:"iat"`
		ExpiresAt int64 `json:"exp"`
	}
	return json.Marshal(wire{Payload: id.Payload, IssuedAt: id.IssuedAt.Unix(), ExpiresAt: id.ExpiresAt.Unix()})
}

// Codec signs payloads into HS256 JWTs and verifies them. It is immutable
// after construction and safe for concurrent use.
type Codec struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithIssuer sets the iss claim and requires it on verification.
func WithIssuer(iss string) Option { return func(c *Codec) { c.issuer = iss } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(c *Codec) { c.now = now } }

// NewCodec builds a codec from the shared signing secret and an expiry policy
// (see ParseExpiry). Both failures are configuration errors.
func NewCodec(secret []byte, expiresIn string, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, problems.Configuration("JWT_SECRET is not configured", nil)
	}
	ttl, err := ParseExpiry(expiresIn)
	if err != nil {
		return nil, err
	}
	c := &Codec{key: append([]byte(nil), secret...), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ExpiresIn returns the token lifetime in seconds.
func (c *Codec) ExpiresIn() int64 { return int64(c.ttl / time.Second) }

// Sign encodes p with fresh iat/exp claims.
func (c *Codec) Sign(p Payload) (string, error) {
	now := c.now().Truncate(time.Second)
	b := jwt.NewBuilder().
		Subject(p.TenantID).
		IssuedAt(now).
		Expiration(now.Add(c.ttl)).
		Claim(claimTenantID, p.TenantID).
		Claim(claimClientID, p.ClientID).
		Claim(claimBackendURL, p.BackendURL).
		Claim(claimMetadata, p.Metadata)
	if c.issuer != "" {
		b = b.Issuer(c.issuer)
	}
	tok, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, c.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature and lifetime of raw and decodes its payload.
// Every failure is reported as problems.ErrUnauthorized, so callers cannot
// tell an expired token from a forged or malformed one.
func (c *Codec) Verify(raw string) (Identity, error) {
	id, err := c.verify(raw)
	if err != nil {
		return Identity{}, &problems.Error{Kind: problems.KindUnauthorized, Message: problems.ErrUnauthorized.Message, Err: err}
	}
	return id, nil
}

func (c *Codec) verify(raw string) (Identity, error) {
	if err := checkCompact(raw); err != nil {
		return Identity{}, err
	}
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, c.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(c.now)),
		jwt.WithRequiredClaim("exp"),
		jwt.WithRequiredClaim(claimClientID),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	tok, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{IssuedAt: tok.IssuedAt(), ExpiresAt: tok.Expiration()}
	id.TenantID = stringClaim(tok, claimTenantID)
	id.ClientID = stringClaim(tok, claimClientID)
	id.BackendURL = stringClaim(tok, claimBackendURL)
	if v, ok := tok.Get(claimMetadata); ok && v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return Identity{}, fmt.Errorf("metadata claim: %w", err)
		}
		id.Metadata = tenants.Metadata(b)
	}
	if id.ClientID == "" {
		return Identity{}, errors.New("empty clientId claim")
	}
	return id, nil
}

func stringClaim(tok jwt.Token, name string) string {
	v, _ := tok.Get(name)
	s, _ := v.(string)
	return s
}

var errNotCompact = errors.New("token is not a compact JWS")

// checkCompact requires three canonical base64url segments. Strict decoding
// rejects alternate encodings of the same signature bytes.
func checkCompact(raw string) error {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return errNotCompact
	}
	for _, p := range parts {
		if p == "" {
			return errNotCompact
		}
		if _, err := base64.RawURLEncoding.Strict().DecodeString(p); err != nil {
			return errNotCompact
		}
	}
	return nil
}

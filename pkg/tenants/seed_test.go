package tenants

import (
	"context"
	"strings"
	"testing"
)

type prefixHasher struct{}

func (prefixHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func TestParseSeedJSON(t *testing.T) {
	entries, err := ParseSeed([]byte(`[{"client_id":"acme-corp","client_secret":"s","backend_url":"https://api.acme.example/v1","metadata":{"plan":"enterprise"}}]`))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].ClientID != "acme-corp" || entries[0].Metadata["plan"] != "enterprise" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestParseSeedYAML(t *testing.T) {
	src := `
- client_id: acme-corp
  client_secret: super-secret-value
  backend_url: https://api.acme.example/v1
  metadata:
    plan: enterprise
    features: [webhooks, sso]
- client_id: globex
  client_secret: other
  disabled: true
`
	entries, err := ParseSeed([]byte(src))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if !entries[1].Disabled {
		t.Error("globex should be disabled")
	}
}

func TestParseSeedRejectsIncompleteEntries(t *testing.T) {
	if _, err := ParseSeed([]byte(`[{"client_id":"acme-corp"}]`)); err == nil {
		t.Fatal("expected error for missing client_secret")
	}
	if entries, err := ParseSeed([]byte("  ")); err != nil || entries != nil {
		t.Fatalf("empty seed = %v, %v", entries, err)
	}
}

func TestSeedHashesAndUpserts(t *testing.T) {
	s := NewMemoryStore()
	if err := Seed(context.Background(), s, prefixHasher{}, DevSeed); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	got, err := s.FindByClientID(context.Background(), "acme-corp")
	if err != nil {
		t.Fatalf("FindByClientID: %v", err)
	}
	if got.HashedSecret != "hashed:super-secret-value" {
		t.Errorf("HashedSecret = %q", got.HashedSecret)
	}
	if !strings.Contains(got.Metadata, `"plan":"enterprise"`) {
		t.Errorf("Metadata = %q", got.Metadata)
	}
	if _, err := ParseMetadata(got.Metadata); err != nil {
		t.Errorf("seeded metadata does not parse: %v", err)
	}
}

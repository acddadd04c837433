package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedEntry describes one tenant to provision at startup. The secret is
// plaintext here and hashed before it reaches the store.
type SeedEntry struct {
	ClientID     string         `yaml:"client_id"`
	ClientSecret string         `yaml:"client_secret"`
	BackendURL   string         `yaml:"backend_url"`
	Metadata     map[string]any `yaml:"metadata"`
	Disabled     bool           `yaml:"disabled"`
}

// DevSeed is provisioned into the in-memory store in development when no seed
// is configured.
var DevSeed = []SeedEntry{{
	ClientID:     "acme-corp",
	ClientSecret: "super-secret-value",
	BackendURL:   "https://api.acme.example/v1",
	Metadata: map[string]any{
		"name":         "Acme Corp",
		"contactEmail": "admin@acme.example",
		"plan":         "enterprise",
		"features":     []any{"webhooks", "sso"},
	},
}}

type secretHasher interface {
	Hash(plain string) (string, error)
}

// ParseSeed decodes a seed list. YAML is a superset of JSON so both
// TENANT_SEED_JSON and TENANT_SEED_FILE contents are accepted.
// Format:
//
//	[
//	  {"client_id":"acme-corp","client_secret":"...","backend_url":"https://...","metadata":{...},"disabled":false}
//	]
func ParseSeed(data []byte) ([]SeedEntry, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var entries []SeedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tenant seed: %w", err)
	}
	for i, e := range entries {
		if e.ClientID == "" || e.ClientSecret == "" {
			return nil, fmt.Errorf("tenant seed entry %d: client_id and client_secret are required", i)
		}
	}
	return entries, nil
}

// Seed hashes each entry's secret and upserts it into w.
func Seed(ctx context.Context, w Writer, h secretHasher, entries []SeedEntry) error {
	for _, e := range entries {
		digest, err := h.Hash(e.ClientSecret)
		if err != nil {
			return fmt.Errorf("hash secret for %s: %w", e.ClientID, err)
		}
		meta := []byte("{}")
		if e.Metadata != nil {
			if meta, err = json.Marshal(e.Metadata); err != nil {
				return fmt.Errorf("encode metadata for %s: %w", e.ClientID, err)
			}
		}
		if err := w.Upsert(ctx, Tenant{
			ClientID:     e.ClientID,
			HashedSecret: digest,
			BackendURL:   e.BackendURL,
			Metadata:     string(meta),
			IsDisabled:   e.Disabled,
		}); err != nil {
			return err
		}
	}
	return nil
}

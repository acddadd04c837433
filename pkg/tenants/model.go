package tenants

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Tenant is a registered API client. Records are owned by the storage
// backend; this service only reads them (seeding aside).
type Tenant struct {
	ID           string // uuid
	ClientID     string // login identifier, unique, case-sensitive
	HashedSecret string // bcrypt or argon2id digest
	BackendURL   string // tenant routing target, passed into tokens
	Metadata     string // raw JSON document as stored
	IsDisabled   bool
}

// Metadata is a free-form JSON object forwarded into issued tokens.
// A nil Metadata means absent and encodes as null.
type Metadata json.RawMessage

var errMetadataNotObject = errors.New("metadata is not a JSON object")

// ParseMetadata validates raw as a JSON object and returns it compacted.
func ParseMetadata(raw string) (Metadata, error) {
	raw = strings.TrimSpace(raw)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errMetadataNotObject
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return nil, err
	}
	return Metadata(buf.Bytes()), nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*m = nil
		return nil
	}
	*m = append((*m)[:0], b...)
	return nil
}

// Decode unmarshals the document into v. Absent metadata decodes as JSON null.
func (m Metadata) Decode(v any) error {
	b, _ := m.MarshalJSON()
	return json.Unmarshal(b, v)
}

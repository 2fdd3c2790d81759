package tenantcfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Load when no document exists for the
// tenant. The cached store reacts by generating and persisting a default.
var ErrNotFound = errors.New("tenant config not found")

// Store is one durable backend for tenant configuration documents. Documents
// are stored whole; the unit of read and write is the full per-tenant JSON
// document.
type Store interface {
	Load(ctx context.Context, tenantID string) (map[string]any, error)
	Save(ctx context.Context, tenantID string, doc map[string]any) error
}

// ConfigURN is the key a tenant's document is stored under.
func ConfigURN(tenantID string) string {
	return fmt.Sprintf("urn:scim:server:%s:config", tenantID)
}

func encodeDoc(doc map[string]any) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config document: %w", err)
	}
	return b, nil
}

func decodeDoc(b []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode config document: %w", err)
	}
	return doc, nil
}

// cloneDoc deep-copies a document so cached state never aliases caller state.
func cloneDoc(doc map[string]any) map[string]any {
	b, err := json.Marshal(doc)
	if err != nil {
		return map[string]any{}
	}
	out, err := decodeDoc(b)
	if err != nil {
		return map[string]any{}
	}
	return out
}

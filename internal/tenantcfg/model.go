// Package tenantcfg owns the per-tenant provisioning configuration: the
// durable JSON document each tenant's schemas and validation behavior are
// derived from, the backends that persist it, and the read-through cache in
// front of them.
package tenantcfg

import (
	"encoding/json"
	"fmt"
)

// TenantConfig is the typed view of one tenant's configuration document.
// Unknown document keys are not represented here but survive updates: the
// deep-merge operates on the raw document, never on this struct.
type TenantConfig struct {
	TenantID              string                     `json:"server_id"`
	Name                  string                     `json:"name"`
	Description           string                     `json:"description"`
	EnabledResourceTypes  []string                   `json:"enabled_resource_types"`
	UserAttributes        ResourceAttributes         `json:"user_attributes"`
	GroupAttributes       ResourceAttributes         `json:"group_attributes"`
	EntitlementAttributes ResourceAttributes         `json:"entitlement_attributes"`
	SchemaExtensions      map[string]SchemaExtension `json:"schema_extensions"`
	EntitlementTypes      []EntitlementDefinition    `json:"entitlement_types"`
	ValidationRules       ValidationRules            `json:"validation_rules"`
	RateLimits            map[string]int             `json:"rate_limits"`

	raw map[string]any
}

// ResourceAttributes describes which attributes a tenant has enabled for one
// resource type and how the non-builtin ones are shaped.
type ResourceAttributes struct {
	Required []string                     `json:"required_attributes"`
	Optional []string                     `json:"optional_attributes"`
	Custom   map[string]AttributeFragment `json:"custom_attributes"`
	Complex  map[string]AttributeFragment `json:"complex_attributes"`
}

// AttributeFragment is a tenant-supplied partial attribute definition. The
// same shape serves for custom attributes, complex-attribute overrides and
// sub-attribute entries (where Name is set).
type AttributeFragment struct {
	Name            string              `json:"name,omitempty" yaml:"name,omitempty"`
	Type            string              `json:"type,omitempty" yaml:"type,omitempty"`
	MultiValued     bool                `json:"multiValued,omitempty" yaml:"multiValued,omitempty"`
	Required        bool                `json:"required,omitempty" yaml:"required,omitempty"`
	Mutability      string              `json:"mutability,omitempty" yaml:"mutability,omitempty"`
	Returned        string              `json:"returned,omitempty" yaml:"returned,omitempty"`
	Description     string              `json:"description,omitempty" yaml:"description,omitempty"`
	CanonicalValues []string            `json:"canonicalValues,omitempty" yaml:"canonicalValues,omitempty"`
	SubAttributes   []AttributeFragment `json:"subAttributes,omitempty" yaml:"subAttributes,omitempty"`
}

// SchemaExtension is a tenant-declared schema reachable only by URI.
type SchemaExtension struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Attributes  []AttributeFragment `json:"attributes"`
}

// EntitlementDefinition declares one entitlement family and the canonical
// values its members may take.
type EntitlementDefinition struct {
	Name            string   `json:"name" yaml:"name"`
	Type            string   `json:"type" yaml:"type"`
	Description     string   `json:"description" yaml:"description"`
	CanonicalValues []string `json:"canonical_values" yaml:"canonical_values"`
	MultiValued     bool     `json:"multi_valued" yaml:"multi_valued"`
}

// ValidationRules are the tenant's validation policy flags.
type ValidationRules struct {
	StrictMode                bool `json:"strict_mode"`
	AllowUnknownAttributes    bool `json:"allow_unknown_attributes"`
	ValidateCanonicalValues   bool `json:"validate_canonical_values"`
	ValidateRequiredFields    bool `json:"validate_required_fields"`
	ValidateComplexAttributes bool `json:"validate_complex_attributes"`
}

// ParseDocument decodes a raw configuration document into its typed view.
// The document itself is retained verbatim and reachable via Raw.
func ParseDocument(doc map[string]any) (*TenantConfig, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config document: %w", err)
	}
	var cfg TenantConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("decode config document: %w", err)
	}
	cfg.raw = doc
	return &cfg, nil
}

// Raw returns the full document this config was parsed from, including keys
// the typed view does not model. Callers must treat it as read-only.
func (c *TenantConfig) Raw() map[string]any {
	return c.raw
}

// Attributes returns the attribute configuration for a resource type, and
// whether the type is one this config knows about.
func (c *TenantConfig) Attributes(resourceType string) (ResourceAttributes, bool) {
	switch resourceType {
	case "User":
		return c.UserAttributes, true
	case "Group":
		return c.GroupAttributes, true
	case "Entitlement":
		return c.EntitlementAttributes, true
	}
	return ResourceAttributes{}, false
}

// ResourceTypeEnabled reports whether the tenant has enabled a resource type.
// A config with no enabled_resource_types key enables all three.
func (c *TenantConfig) ResourceTypeEnabled(resourceType string) bool {
	if len(c.EnabledResourceTypes) == 0 {
		return true
	}
	for _, rt := range c.EnabledResourceTypes {
		if rt == resourceType {
			return true
		}
	}
	return false
}

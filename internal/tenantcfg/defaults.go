package tenantcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults carries the deployment-level values baked into a tenant's config
// document when it is created on first access.
type Defaults struct {
	EntitlementDefinitions []EntitlementDefinition
	RateLimitCreate        int
	RateLimitRead          int
	MaxResultsPerPage      int
	DefaultPageSize        int
}

// builtinEntitlementDefinitions mirror the entitlement families the reference
// deployment ships with. Deployments override them via a YAML registry file.
var builtinEntitlementDefinitions = []EntitlementDefinition{
	{
		Name:            "Licenses",
		Type:            "license_based",
		Description:     "Software licenses assigned to users",
		CanonicalValues: []string{"Office365", "Salesforce", "GitHub Enterprise"},
		MultiValued:     true,
	},
	{
		Name:            "Profiles",
		Type:            "application_access",
		Description:     "Application access profiles",
		CanonicalValues: []string{"Standard", "Admin", "ReadOnly"},
		MultiValued:     false,
	},
	{
		Name:            "Departments",
		Type:            "department_based",
		Description:     "Department membership entitlements",
		CanonicalValues: []string{"Engineering", "Sales", "Finance", "HR"},
		MultiValued:     false,
	},
}

// NewDefaults builds the default set, optionally replacing the built-in
// entitlement definitions with a YAML registry file.
func NewDefaults(registryPath string, rateCreate, rateRead, maxPerPage, pageSize int) (Defaults, error) {
	d := Defaults{
		EntitlementDefinitions: builtinEntitlementDefinitions,
		RateLimitCreate:        rateCreate,
		RateLimitRead:          rateRead,
		MaxResultsPerPage:      maxPerPage,
		DefaultPageSize:        pageSize,
	}
	if registryPath != "" {
		defs, err := LoadEntitlementRegistry(registryPath)
		if err != nil {
			return Defaults{}, err
		}
		d.EntitlementDefinitions = defs
	}
	return d, nil
}

// LoadEntitlementRegistry reads entitlement definitions from a YAML file of
// the form:
//
//	entitlements:
//	  - name: Licenses
//	    type: license_based
//	    canonical_values: [Office365, Salesforce]
//	    multi_valued: true
func LoadEntitlementRegistry(path string) ([]EntitlementDefinition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entitlement registry: %w", err)
	}
	var doc struct {
		Entitlements []EntitlementDefinition `yaml:"entitlements"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse entitlement registry %s: %w", path, err)
	}
	if len(doc.Entitlements) == 0 {
		return nil, fmt.Errorf("entitlement registry %s defines no entitlements", path)
	}
	return doc.Entitlements, nil
}

// DefaultDocument is the configuration document generated for a tenant on
// first access. Keys match the persisted document format, so a
// freshly created config and a stored one are indistinguishable.
func DefaultDocument(tenantID string, d Defaults) map[string]any {
	entitlements := make([]any, 0, len(d.EntitlementDefinitions))
	for _, def := range d.EntitlementDefinitions {
		values := make([]any, 0, len(def.CanonicalValues))
		for _, v := range def.CanonicalValues {
			values = append(values, v)
		}
		entitlements = append(entitlements, map[string]any{
			"name":             def.Name,
			"type":             def.Type,
			"description":      def.Description,
			"canonical_values": values,
			"multi_valued":     def.MultiValued,
		})
	}
	return map[string]any{
		"server_id":              tenantID,
		"name":                   fmt.Sprintf("SCIM Server %s", tenantID),
		"description":            fmt.Sprintf("Dynamic SCIM server with ID %s", tenantID),
		"enabled_resource_types": []any{"User", "Group", "Entitlement"},
		"custom_attributes":      map[string]any{},
		"schema_extensions":      map[string]any{},
		"entitlement_types":      entitlements,
		"user_attributes": map[string]any{
			"required_attributes": []any{"userName"},
			"optional_attributes": []any{"displayName", "emails", "name", "active"},
			"custom_attributes":   map[string]any{},
			"complex_attributes": map[string]any{
				"emails": map[string]any{
					"type":        "complex",
					"multiValued": true,
					"subAttributes": []any{
						map[string]any{"name": "value", "type": "string", "required": true},
						map[string]any{"name": "primary", "type": "boolean", "required": false},
					},
				},
				"name": map[string]any{
					"type":        "complex",
					"multiValued": false,
					"subAttributes": []any{
						map[string]any{"name": "givenName", "type": "string", "required": false},
						map[string]any{"name": "familyName", "type": "string", "required": false},
					},
				},
			},
		},
		"group_attributes": map[string]any{
			"required_attributes": []any{"displayName"},
			"optional_attributes": []any{"description"},
			"custom_attributes":   map[string]any{},
			"complex_attributes":  map[string]any{},
		},
		"entitlement_attributes": map[string]any{
			"required_attributes": []any{"displayName", "type"},
			"optional_attributes": []any{"description", "entitlementType", "multiValued"},
			"custom_attributes":   map[string]any{},
			"complex_attributes":  map[string]any{},
		},
		"validation_rules": map[string]any{
			"strict_mode":                 true,
			"allow_unknown_attributes":    false,
			"validate_canonical_values":   true,
			"validate_required_fields":    true,
			"validate_complex_attributes": true,
		},
		"rate_limits": map[string]any{
			"create": d.RateLimitCreate,
			"read":   d.RateLimitRead,
			"update": d.RateLimitCreate,
			"delete": d.RateLimitCreate,
		},
		"api_settings": map[string]any{
			"max_results_per_page": d.MaxResultsPerPage,
			"default_page_size":    d.DefaultPageSize,
		},
	}
}

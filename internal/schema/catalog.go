package schema

import (
	"sort"

	"go.uber.org/zap"

	"scimgate/internal/tenantcfg"
	"scimgate/pkg/scimerr"
)

// Catalog synthesizes resource schemas from tenant configuration. Stateless
// and safe for concurrent use as long as the configs passed in are treated
// as immutable snapshots.
type Catalog struct {
	log *zap.SugaredLogger
}

func NewCatalog(log *zap.SugaredLogger) *Catalog {
	return &Catalog{log: log}
}

// SchemaFor builds the schema for one of the three known resource types.
//
// Construction order is fixed: envelope attributes, then the tenant's
// required attributes, then optional attributes (skipping names already
// emitted), then complex-attribute overrides, then custom fragments appended
// verbatim. Reordering any step would break schema determinism for tenants
// that declare the same name in more than one bucket.
func (c *Catalog) SchemaFor(cfg *tenantcfg.TenantConfig, resourceType string) (*ResourceSchema, error) {
	attrCfg, ok := cfg.Attributes(resourceType)
	if !ok {
		return nil, scimerr.UnsupportedResourceType(resourceType)
	}

	attrs := envelopeAttributes(resourceType)
	seen := map[string]bool{}
	for _, a := range attrs {
		seen[a.Name] = true
	}

	for _, name := range attrCfg.Required {
		if seen[name] {
			continue
		}
		a := c.resolveAttribute(cfg, resourceType, name)
		a.Required = true
		attrs = append(attrs, a)
		seen[name] = true
	}

	for _, name := range attrCfg.Optional {
		if seen[name] {
			continue
		}
		a := c.resolveAttribute(cfg, resourceType, name)
		a.Required = false
		attrs = append(attrs, a)
		seen[name] = true
	}

	for _, name := range sortedKeys(attrCfg.Complex) {
		override := fragmentToAttribute(name, attrCfg.Complex[name])
		if seen[name] {
			// Reshape the already-emitted attribute in place, keeping its
			// position and required flag.
			for i := range attrs {
				if attrs[i].Name == name {
					override.Required = attrs[i].Required
					attrs[i] = override
					break
				}
			}
			continue
		}
		attrs = append(attrs, override)
		seen[name] = true
	}

	for _, name := range sortedKeys(attrCfg.Custom) {
		if seen[name] {
			continue
		}
		attrs = append(attrs, fragmentToAttribute(name, attrCfg.Custom[name]))
		seen[name] = true
	}

	uri, description := schemaIdentity(resourceType)
	return &ResourceSchema{
		Schemas:     []string{uri},
		URI:         uri,
		Name:        resourceType,
		Description: description,
		Attributes:  attrs,
	}, nil
}

// SchemaByURI dispatches on the three known schema URIs, then on the
// tenant's declared schema extensions. Unknown URIs are not an error.
func (c *Catalog) SchemaByURI(cfg *tenantcfg.TenantConfig, uri string) (*ResourceSchema, bool) {
	var resourceType string
	switch uri {
	case URIUser:
		resourceType = "User"
	case URIGroup:
		resourceType = "Group"
	case URIEntitlement:
		resourceType = "Entitlement"
	}
	if resourceType != "" {
		s, err := c.SchemaFor(cfg, resourceType)
		if err != nil {
			return nil, false
		}
		return s, true
	}
	ext, ok := cfg.SchemaExtensions[uri]
	if !ok {
		return nil, false
	}
	attrs := make([]Attribute, 0, len(ext.Attributes))
	for _, frag := range ext.Attributes {
		attrs = append(attrs, fragmentToAttribute(frag.Name, frag))
	}
	return &ResourceSchema{
		Schemas:     []string{uri},
		URI:         uri,
		Name:        ext.Name,
		Description: ext.Description,
		Attributes:  attrs,
	}, true
}

// AllSchemas returns the schemas of every enabled resource type in canonical
// order.
func (c *Catalog) AllSchemas(cfg *tenantcfg.TenantConfig) []*ResourceSchema {
	var out []*ResourceSchema
	for _, rt := range []string{"User", "Group", "Entitlement"} {
		if !cfg.ResourceTypeEnabled(rt) {
			continue
		}
		s, err := c.SchemaFor(cfg, rt)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ResourceTypes lists the tenant's enabled resource types in the fixed
// canonical order User, Group, Entitlement.
func (c *Catalog) ResourceTypes(cfg *tenantcfg.TenantConfig) []ResourceType {
	all := []ResourceType{
		{ID: "User", Name: "User", Endpoint: "/Users", Schema: URIUser, Description: "User Account"},
		{ID: "Group", Name: "Group", Endpoint: "/Groups", Schema: URIGroup, Description: "Group"},
		{ID: "Entitlement", Name: "Entitlement", Endpoint: "/Entitlements", Schema: URIEntitlement, Description: "Entitlement"},
	}
	out := make([]ResourceType, 0, len(all))
	for _, rt := range all {
		if cfg.ResourceTypeEnabled(rt.ID) {
			out = append(out, rt)
		}
	}
	return out
}

// resolveAttribute gives a declared attribute name its concrete shape: the
// built-in catalog entry when the name is known, a plain string otherwise.
// The Entitlement "type" attribute additionally gets its canonical values
// from the tenant's entitlement definitions.
func (c *Catalog) resolveAttribute(cfg *tenantcfg.TenantConfig, resourceType, name string) Attribute {
	a, ok := builtinAttributes[name]
	if !ok {
		a = Attribute{
			Name: name, Type: TypeString,
			Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none",
		}
	} else {
		a = a.Clone()
	}
	if resourceType == "Entitlement" && name == "type" {
		a.CanonicalValues = flattenCanonicalValues(cfg.EntitlementTypes)
	}
	return a
}

// flattenCanonicalValues is the ordered, duplicate-free union of canonical
// values across all entitlement definitions. Order preservation keeps schema
// synthesis deterministic.
func flattenCanonicalValues(defs []tenantcfg.EntitlementDefinition) []string {
	var out []string
	seen := map[string]bool{}
	for _, def := range defs {
		for _, v := range def.CanonicalValues {
			if seen[v] {
				continue
			}
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

func fragmentToAttribute(name string, frag tenantcfg.AttributeFragment) Attribute {
	a := Attribute{
		Name:            name,
		Type:            Type(frag.Type),
		MultiValued:     frag.MultiValued,
		Required:        frag.Required,
		Description:     frag.Description,
		Mutability:      Mutability(frag.Mutability),
		Returned:        Returned(frag.Returned),
		CanonicalValues: append([]string(nil), frag.CanonicalValues...),
	}
	if a.Type == "" {
		a.Type = TypeString
	}
	if a.Mutability == "" {
		a.Mutability = MutabilityReadWrite
	}
	if a.Returned == "" {
		a.Returned = ReturnedDefault
	}
	for _, sub := range frag.SubAttributes {
		a.SubAttributes = append(a.SubAttributes, fragmentToAttribute(sub.Name, sub))
	}
	return a
}

func schemaIdentity(resourceType string) (uri, description string) {
	switch resourceType {
	case "User":
		return URIUser, "User Account"
	case "Group":
		return URIGroup, "Group"
	default:
		return URIEntitlement, "Entitlement"
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

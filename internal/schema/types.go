// Package schema synthesizes SCIM resource schemas from tenant
// configuration. Synthesis is a pure function of (config, resource type):
// the catalog holds no state of its own, and the same config always yields
// an identical schema.
package schema

// Type is an attribute's SCIM data type.
type Type string

const (
	TypeString    Type = "string"
	TypeBoolean   Type = "boolean"
	TypeComplex   Type = "complex"
	TypeReference Type = "reference"
)

// Mutability states whether and when a value may be set by a client.
type Mutability string

const (
	// MutabilityReadOnly values are server-assigned and never client-settable.
	MutabilityReadOnly Mutability = "readOnly"
	// MutabilityReadWrite values may always be set.
	MutabilityReadWrite Mutability = "readWrite"
	// MutabilityImmutable values may be set only while no value exists.
	MutabilityImmutable Mutability = "immutable"
	// MutabilityWriteOnce values may be set only during resource creation.
	MutabilityWriteOnce Mutability = "writeOnce"
)

// Returned controls whether an attribute appears in outbound representations.
type Returned string

const (
	ReturnedAlways  Returned = "always"
	ReturnedNever   Returned = "never"
	ReturnedDefault Returned = "default"
	ReturnedRequest Returned = "request"
)

// Canonical schema URIs the catalog recognizes.
const (
	URIUser        = "urn:ietf:params:scim:schemas:core:2.0:User"
	URIGroup       = "urn:ietf:params:scim:schemas:core:2.0:Group"
	URIEntitlement = "urn:okta:scim:schemas:core:1.0:Entitlement"
)

// Attribute is one schema attribute definition. Attributes of type complex
// carry SubAttributes; every other type is a scalar shape, optionally
// constrained by CanonicalValues.
type Attribute struct {
	Name            string      `json:"name"`
	Type            Type        `json:"type"`
	MultiValued     bool        `json:"multiValued"`
	Description     string      `json:"description,omitempty"`
	Required        bool        `json:"required"`
	CaseExact       bool        `json:"caseExact"`
	Mutability      Mutability  `json:"mutability"`
	Returned        Returned    `json:"returned"`
	Uniqueness      string      `json:"uniqueness,omitempty"`
	CanonicalValues []string    `json:"canonicalValues,omitempty"`
	SubAttributes   []Attribute `json:"subAttributes,omitempty"`
}

// Clone deep-copies an attribute so catalog templates are never aliased into
// synthesized schemas.
func (a Attribute) Clone() Attribute {
	out := a
	if len(a.CanonicalValues) > 0 {
		out.CanonicalValues = append([]string(nil), a.CanonicalValues...)
	}
	if len(a.SubAttributes) > 0 {
		out.SubAttributes = make([]Attribute, 0, len(a.SubAttributes))
		for _, sub := range a.SubAttributes {
			out.SubAttributes = append(out.SubAttributes, sub.Clone())
		}
	}
	return out
}

// ResourceSchema is the full synthesized schema document for one resource
// type, serialized in the SCIM schema representation.
type ResourceSchema struct {
	Schemas     []string    `json:"schemas"`
	URI         string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Attributes  []Attribute `json:"attributes"`
}

// Attribute looks up a top-level attribute by name.
func (s *ResourceSchema) Attribute(name string) (*Attribute, bool) {
	for i := range s.Attributes {
		if s.Attributes[i].Name == name {
			return &s.Attributes[i], true
		}
	}
	return nil, false
}

// ResourceType is one entry of the resource type discovery listing.
type ResourceType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint"`
	Schema      string `json:"schema"`
	Description string `json:"description"`
}

package schema

// builtinAttributes is the fixed catalog of known attribute names. When a
// tenant enables one of these by name, its concrete shape (type, fixed
// sub-attribute set, canonical values) comes from here; names not in the
// catalog fall back to a plain readWrite string.
var builtinAttributes = map[string]Attribute{
	"userName": {
		Name: "userName", Type: TypeString,
		Description: "Unique identifier for the user, typically used by the user to directly authenticate to the service provider",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "server",
	},
	"displayName": {
		Name: "displayName", Type: TypeString,
		Description: "A human-readable name, suitable for display to end-users",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none",
	},
	"description": {
		Name: "description", Type: TypeString,
		Description: "A human-readable description",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none",
	},
	"active": {
		Name: "active", Type: TypeBoolean,
		Description: "A Boolean value indicating the resource's administrative status",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault,
	},
	"password": {
		Name: "password", Type: TypeString,
		Description: "The user's cleartext password, write-only",
		Mutability:  MutabilityWriteOnce, Returned: ReturnedNever, Uniqueness: "none",
	},
	"name": {
		Name: "name", Type: TypeComplex,
		Description: "The components of the user's real name",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault,
		SubAttributes: []Attribute{
			{Name: "givenName", Type: TypeString, Description: "The given name of the User", Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none"},
			{Name: "familyName", Type: TypeString, Description: "The family name of the User", Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none"},
			{Name: "formatted", Type: TypeString, Description: "The full name, including all middle names, titles, and suffixes", Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none"},
		},
	},
	"emails": {
		Name: "emails", Type: TypeComplex, MultiValued: true,
		Description: "Email addresses for the user",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault,
		SubAttributes: []Attribute{
			{Name: "value", Type: TypeString, Description: "Email address value", Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none"},
			{Name: "type", Type: TypeString, Description: "A label indicating the attribute's function", Mutability: MutabilityReadWrite, Returned: ReturnedDefault, CanonicalValues: []string{"work", "home", "other"}},
			{Name: "primary", Type: TypeBoolean, Description: "A Boolean value indicating the 'primary' or preferred attribute value", Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
		},
	},
	"groups": {
		Name: "groups", Type: TypeComplex, MultiValued: true,
		Description: "A list of groups to which the user belongs",
		Mutability:  MutabilityReadOnly, Returned: ReturnedDefault,
		SubAttributes: []Attribute{
			{Name: "value", Type: TypeString, Description: "The identifier of the user's group", Mutability: MutabilityReadOnly, Returned: ReturnedDefault, Uniqueness: "none"},
			{Name: "display", Type: TypeString, Description: "The display name of the user's group", Mutability: MutabilityReadOnly, Returned: ReturnedDefault, Uniqueness: "none"},
		},
	},
	"entitlements": {
		Name: "entitlements", Type: TypeComplex, MultiValued: true,
		Description: "A list of entitlements assigned to the user",
		Mutability:  MutabilityReadOnly, Returned: ReturnedDefault,
		SubAttributes: []Attribute{
			{Name: "value", Type: TypeString, Description: "The identifier of the user's entitlement", Mutability: MutabilityReadOnly, Returned: ReturnedDefault, Uniqueness: "none"},
			{Name: "display", Type: TypeString, Description: "The display name of the user's entitlement", Mutability: MutabilityReadOnly, Returned: ReturnedDefault, Uniqueness: "none"},
		},
	},
	"members": {
		Name: "members", Type: TypeComplex, MultiValued: true,
		Description: "A list of members of the Group",
		Mutability:  MutabilityReadOnly, Returned: ReturnedDefault,
		SubAttributes: []Attribute{
			{Name: "value", Type: TypeString, Description: "The identifier of the member of this Group", Mutability: MutabilityReadOnly, Returned: ReturnedDefault, Uniqueness: "none"},
			{Name: "display", Type: TypeString, Description: "The display name of the member of this Group", Mutability: MutabilityReadOnly, Returned: ReturnedDefault, Uniqueness: "none"},
		},
	},
	"type": {
		Name: "type", Type: TypeString,
		Description: "The type of entitlement (e.g., 'License', 'Profile', 'Access')",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none",
	},
	"entitlementType": {
		Name: "entitlementType", Type: TypeString,
		Description: "The category of entitlement (e.g., 'application_access', 'role_based', 'permission_based')",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none",
		CanonicalValues: []string{"application_access", "role_based", "permission_based", "license_based", "department_based", "project_based"},
	},
	"multiValued": {
		Name: "multiValued", Type: TypeBoolean,
		Description: "Whether this entitlement supports multiple values",
		Mutability:  MutabilityReadWrite, Returned: ReturnedDefault,
	},
}

func envelopeAttributes(resourceType string) []Attribute {
	attrs := []Attribute{
		{
			Name: "schemas", Type: TypeString, MultiValued: true,
			Description: "The list of schema URIs describing this resource",
			CaseExact:   true, Mutability: MutabilityReadWrite, Returned: ReturnedAlways,
		},
		{
			Name: "id", Type: TypeString, Required: true,
			Description: "Unique identifier for the " + resourceType,
			Mutability:  MutabilityReadOnly, Returned: ReturnedAlways, Uniqueness: "global",
		},
	}
	if resourceType == "User" {
		attrs = append(attrs, Attribute{
			Name: "externalId", Type: TypeString,
			Description: "A String that is an identifier for the resource as defined by the provisioning client",
			Mutability:  MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: "none",
		})
	}
	return attrs
}

// Package validate enforces a tenant's synthesized schema and validation
// policy against inbound provisioning payloads, and filters outbound
// representations by each attribute's returned policy.
package validate

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"scimgate/internal/schema"
	"scimgate/internal/tenantcfg"
	"scimgate/pkg/scimerr"
)

// maxNestingDepth bounds recursion over complex sub-attributes so malformed
// deeply nested input cannot blow the stack.
const maxNestingDepth = 8

// Validator is stateless; one instance serves all tenants concurrently.
type Validator struct {
	log *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Validator {
	return &Validator{log: log}
}

// PatchOperation is one instruction of a partial update. Path, when present,
// names a single top-level attribute; a leading slash is tolerated.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Create validates a creation payload. Mutability is not enforced here:
// create accepts server-assigned attributes and leaves rejecting them to
// the update and patch paths.
// Required-field checks run only after every supplied field has validated,
// so a missing required field never masks a per-field error.
func (v *Validator) Create(s *schema.ResourceSchema, rules tenantcfg.ValidationRules, payload map[string]any) (map[string]any, error) {
	r := effectiveRules(rules)
	validated := map[string]any{}
	for _, name := range sortedFieldNames(payload) {
		attr, ok := s.Attribute(name)
		if !ok {
			if r.AllowUnknownAttributes {
				continue
			}
			return nil, scimerr.UnknownField(name)
		}
		val, err := v.validateValue(attr, payload[name], r, 0)
		if err != nil {
			return nil, err
		}
		validated[name] = val
	}
	if r.ValidateRequiredFields {
		for i := range s.Attributes {
			attr := &s.Attributes[i]
			if !attr.Required || attr.Mutability == schema.MutabilityReadOnly {
				continue
			}
			if _, ok := validated[attr.Name]; !ok {
				return nil, scimerr.RequiredFieldMissing(attr.Name)
			}
		}
	}
	return validated, nil
}

// Update validates a full update. The result starts as a copy of the
// existing resource and payload fields overwrite it; absent fields are left
// untouched, so a full update is a merge, not a replace.
func (v *Validator) Update(s *schema.ResourceSchema, rules tenantcfg.ValidationRules, payload, existing map[string]any) (map[string]any, error) {
	r := effectiveRules(rules)
	result := copyResource(existing)
	for _, name := range sortedFieldNames(payload) {
		attr, ok := s.Attribute(name)
		if !ok {
			if r.AllowUnknownAttributes {
				continue
			}
			return nil, scimerr.UnknownField(name)
		}
		if err := checkWritable(attr, existing, "update"); err != nil {
			return nil, err
		}
		val, err := v.validateValue(attr, payload[name], r, 0)
		if err != nil {
			return nil, err
		}
		result[name] = val
	}
	return result, nil
}

// Patch applies a list of partial-update operations, in order, to a copy of
// the existing resource.
func (v *Validator) Patch(s *schema.ResourceSchema, rules tenantcfg.ValidationRules, operations []PatchOperation, existing map[string]any) (map[string]any, error) {
	r := effectiveRules(rules)
	result := copyResource(existing)
	for _, op := range operations {
		name := trimPath(op.Path)
		kind := op.Op
		if kind == "" {
			kind = "replace"
		}
		switch kind {
		case "replace":
			if name == "" {
				if err := v.applyWholeResource(s, r, op.Value, result); err != nil {
					return nil, err
				}
				continue
			}
			attr, ok := s.Attribute(name)
			if !ok {
				if r.AllowUnknownAttributes {
					continue
				}
				return nil, scimerr.UnknownField(name)
			}
			if err := checkWritable(attr, result, "replace"); err != nil {
				return nil, err
			}
			val, err := v.validateValue(attr, op.Value, r, 0)
			if err != nil {
				return nil, err
			}
			result[name] = val
		case "add":
			if name == "" {
				// An add with no path behaves like the lenient whole-resource
				// replace.
				if err := v.applyWholeResource(s, r, op.Value, result); err != nil {
					return nil, err
				}
				continue
			}
			attr, ok := s.Attribute(name)
			if !ok {
				if r.AllowUnknownAttributes {
					continue
				}
				return nil, scimerr.UnknownField(name)
			}
			if !attr.MultiValued {
				return nil, scimerr.InvalidOperation(name, "add",
					fmt.Sprintf("Cannot use 'add' operation on single-valued field '%s'", name))
			}
			val, err := v.validateValue(attr, op.Value, r, 0)
			if err != nil {
				return nil, err
			}
			seq, _ := result[name].([]any)
			if items, ok := val.([]any); ok {
				seq = append(seq, items...)
			} else {
				seq = append(seq, val)
			}
			result[name] = seq
		case "remove":
			if name == "" {
				continue
			}
			attr, ok := s.Attribute(name)
			if !ok {
				if r.AllowUnknownAttributes {
					continue
				}
				return nil, scimerr.UnknownField(name)
			}
			if attr.MultiValued {
				seq, ok := result[name].([]any)
				if !ok {
					continue
				}
				result[name] = removeValue(seq, op.Value)
			} else {
				delete(result, name)
			}
		}
	}
	return result, nil
}

// applyWholeResource is the lenient merge used by a replace (or add) with no
// path: unknown and non-writable attributes are skipped silently, but values
// that do validate still validate strictly.
func (v *Validator) applyWholeResource(s *schema.ResourceSchema, r tenantcfg.ValidationRules, value any, result map[string]any) error {
	fields, ok := value.(map[string]any)
	if !ok {
		return scimerr.TypeMismatch("", "object", value)
	}
	for _, name := range sortedFieldNames(fields) {
		attr, ok := s.Attribute(name)
		if !ok {
			continue
		}
		if checkWritable(attr, result, "replace") != nil {
			continue
		}
		val, err := v.validateValue(attr, fields[name], r, 0)
		if err != nil {
			return err
		}
		result[name] = val
	}
	return nil
}

// FilterResponse drops attributes from an outbound representation according
// to the schema's returned policies plus the request's attributes /
// excludedAttributes parameters.
func (v *Validator) FilterResponse(s *schema.ResourceSchema, data map[string]any, requested, excluded []string) map[string]any {
	out := map[string]any{}
	for i := range s.Attributes {
		attr := &s.Attributes[i]
		val, ok := data[attr.Name]
		if !ok {
			continue
		}
		switch attr.Returned {
		case schema.ReturnedNever:
			continue
		case schema.ReturnedAlways:
			out[attr.Name] = val
		case schema.ReturnedRequest:
			if containsName(requested, attr.Name) {
				out[attr.Name] = val
			}
		default: // returned=default
			if containsName(excluded, attr.Name) {
				continue
			}
			out[attr.Name] = val
		}
	}
	return out
}

// validateValue normalizes and validates one attribute value. A scalar
// supplied for a multi-valued attribute is wrapped into a single-element
// sequence before item-by-item validation.
func (v *Validator) validateValue(attr *schema.Attribute, value any, r tenantcfg.ValidationRules, depth int) (any, error) {
	if attr.MultiValued {
		items, ok := value.([]any)
		if !ok {
			items = []any{value}
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			vv, err := v.validateSingle(attr, item, r, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, vv)
		}
		return out, nil
	}
	return v.validateSingle(attr, value, r, depth)
}

func (v *Validator) validateSingle(attr *schema.Attribute, value any, r tenantcfg.ValidationRules, depth int) (any, error) {
	if depth > maxNestingDepth {
		e := scimerr.TypeMismatch(attr.Name, "object", value)
		e.Message = fmt.Sprintf("Field '%s' exceeds the maximum attribute nesting depth", attr.Name)
		return nil, e
	}
	switch attr.Type {
	case schema.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return nil, scimerr.TypeMismatch(attr.Name, "boolean", value)
		}
	case schema.TypeComplex:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, scimerr.TypeMismatch(attr.Name, "object", value)
		}
		if !r.ValidateComplexAttributes {
			return m, nil
		}
		validated := map[string]any{}
		for i := range attr.SubAttributes {
			sub := &attr.SubAttributes[i]
			raw, present := m[sub.Name]
			if !present {
				if sub.Required {
					return nil, scimerr.RequiredFieldMissing(sub.Name)
				}
				continue
			}
			vv, err := v.validateValue(sub, raw, r, depth+1)
			if err != nil {
				return nil, err
			}
			validated[sub.Name] = vv
		}
		// Sub-attributes not declared in the schema are dropped silently;
		// complex attributes do not honor allow_unknown_attributes.
		return validated, nil
	default: // string, reference
		if _, ok := value.(string); !ok {
			return nil, scimerr.TypeMismatch(attr.Name, "string", value)
		}
	}
	if r.ValidateCanonicalValues && len(attr.CanonicalValues) > 0 {
		sv, _ := value.(string)
		found := false
		for _, allowed := range attr.CanonicalValues {
			if sv == allowed {
				found = true
				break
			}
		}
		if !found {
			return nil, scimerr.InvalidCanonicalValue(attr.Name, value, attr.CanonicalValues)
		}
	}
	return value, nil
}

// checkWritable is the mutability gate for update and patch writes:
// readOnly is never client-settable, writeOnce only during creation, and
// immutable only while the resource has no value for the attribute yet.
func checkWritable(attr *schema.Attribute, existing map[string]any, operation string) error {
	switch attr.Mutability {
	case schema.MutabilityReadOnly:
		return scimerr.ReadOnlyField(attr.Name, operation)
	case schema.MutabilityWriteOnce:
		e := scimerr.ReadOnlyField(attr.Name, operation)
		e.Message = fmt.Sprintf("Cannot modify write-once field '%s' after creation", attr.Name)
		return e
	case schema.MutabilityImmutable:
		if cur, ok := existing[attr.Name]; ok && cur != nil {
			e := scimerr.ReadOnlyField(attr.Name, operation)
			e.Message = fmt.Sprintf("Cannot modify immutable field '%s' once set", attr.Name)
			return e
		}
	}
	return nil
}

// effectiveRules collapses the policy flags. The individual flags act
// independently; strict mode is an umbrella that forces full enforcement on
// regardless of how the individual flags are set.
func effectiveRules(r tenantcfg.ValidationRules) tenantcfg.ValidationRules {
	if r.StrictMode {
		r.AllowUnknownAttributes = false
		r.ValidateRequiredFields = true
		r.ValidateCanonicalValues = true
		r.ValidateComplexAttributes = true
	}
	return r
}

func removeValue(seq []any, value any) []any {
	out := make([]any, 0, len(seq))
	for _, item := range seq {
		if reflect.DeepEqual(item, value) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func copyResource(existing map[string]any) map[string]any {
	out := make(map[string]any, len(existing))
	for k, v := range existing {
		out[k] = v
	}
	return out
}

// sortedFieldNames fixes the field iteration order so the first violation
// reported for a payload is deterministic.
func sortedFieldNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func trimPath(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}

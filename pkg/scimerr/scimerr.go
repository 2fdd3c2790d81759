// Package scimerr defines the structured validation error returned by the
// schema engine. Every rejection carries the same JSON shape so provisioning
// clients can branch on the machine-readable kind instead of parsing message
// strings.
package scimerr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies one class of validation failure.
type Kind string

const (
	KindRequiredFieldMissing  Kind = "required_field_missing"
	KindUnknownField          Kind = "unknown_field"
	KindReadOnlyField         Kind = "readonly_field_modification"
	KindTypeMismatch          Kind = "type_mismatch"
	KindInvalidCanonicalValue Kind = "invalid_canonical_value"
	KindInvalidOperation      Kind = "invalid_operation_for_field_type"
	KindUnsupportedResource   Kind = "unsupported_resource_type"
	KindInvalidTenantID       Kind = "invalid_tenant_id"
)

// Error is the wire shape of every validation rejection.
type Error struct {
	Code          string   `json:"error"`
	Message       string   `json:"message"`
	Field         string   `json:"field,omitempty"`
	ResourceType  string   `json:"resourceType,omitempty"`
	TenantID      string   `json:"tenantId,omitempty"`
	Kind          Kind     `json:"type"`
	ProvidedValue any      `json:"provided_value,omitempty"`
	ExpectedType  string   `json:"expected_type,omitempty"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	Operation     string   `json:"operation,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithContext returns a shallow copy annotated with the resource type and
// tenant the failure occurred for. Handlers call this once at the boundary so
// the inner validation code never needs to thread tenant IDs around.
func (e *Error) WithContext(resourceType, tenantID string) *Error {
	c := *e
	if c.ResourceType == "" {
		c.ResourceType = resourceType
	}
	c.TenantID = tenantID
	return &c
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HTTPStatus maps a validation error to the status a handler should write.
func HTTPStatus(err error) int {
	se, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if se.Kind == KindUnsupportedResource {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func newError(kind Kind, field, msg string) *Error {
	return &Error{Code: "VALIDATION_ERROR", Kind: kind, Field: field, Message: msg}
}

func RequiredFieldMissing(field string) *Error {
	return newError(KindRequiredFieldMissing, field, fmt.Sprintf("Required field '%s' is missing", field))
}

func UnknownField(field string) *Error {
	return newError(KindUnknownField, field, fmt.Sprintf("Unknown field '%s'", field))
}

func ReadOnlyField(field, operation string) *Error {
	e := newError(KindReadOnlyField, field, fmt.Sprintf("Cannot modify readOnly field '%s'", field))
	e.Operation = operation
	return e
}

func TypeMismatch(field, expected string, value any) *Error {
	e := newError(KindTypeMismatch, field, fmt.Sprintf("Field '%s' must be a %s", field, expected))
	e.ExpectedType = expected
	e.ProvidedValue = value
	return e
}

func InvalidCanonicalValue(field string, value any, allowed []string) *Error {
	e := newError(KindInvalidCanonicalValue, field, fmt.Sprintf("Field '%s' value '%v' is not valid; allowed: %s", field, value, strings.Join(allowed, ", ")))
	e.ProvidedValue = value
	e.AllowedValues = allowed
	return e
}

func InvalidOperation(field, operation, why string) *Error {
	e := newError(KindInvalidOperation, field, why)
	e.Operation = operation
	return e
}

func UnsupportedResourceType(resourceType string) *Error {
	e := newError(KindUnsupportedResource, "", fmt.Sprintf("Unsupported resource type '%s'", resourceType))
	e.ResourceType = resourceType
	return e
}

func InvalidTenantID() *Error {
	return newError(KindInvalidTenantID, "", "Tenant ID must not be empty")
}

package scimapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	jmes "github.com/jmespath/go-jmespath"

	"scimgate/internal/validate"
	"scimgate/pkg/middleware"
	"scimgate/pkg/scimerr"
)

func (a *App) listSchemas(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	schemas := a.catalog.AllSchemas(cfg)
	schemaRequests.WithLabelValues("all").Inc()
	writeJSON(w, listResponse(len(schemas), schemas), http.StatusOK)
}

func (a *App) getSchemaByURI(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	uri := chi.URLParam(r, "uri")
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	s, ok := a.catalog.SchemaByURI(cfg, uri)
	if !ok {
		http.Error(w, "schema not found", http.StatusNotFound)
		return
	}
	schemaRequests.WithLabelValues(s.Name).Inc()
	writeJSON(w, s, http.StatusOK)
}

func (a *App) listResourceTypes(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	types := a.catalog.ResourceTypes(cfg)
	writeJSON(w, listResponse(len(types), types), http.StatusOK)
}

func (a *App) serviceProviderConfig(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	maxResults := 100
	if api, ok := cfg.Raw()["api_settings"].(map[string]any); ok {
		if v, ok := api["max_results_per_page"].(float64); ok {
			maxResults = int(v)
		}
	}
	writeJSON(w, map[string]any{
		"schemas":        []string{"urn:ietf:params:scim:api:messages:2.0:ServiceProviderConfig"},
		"patch":          map[string]any{"supported": true},
		"bulk":           map[string]any{"supported": false, "maxOperations": 0, "maxPayloadSize": 0},
		"filter":         map[string]any{"supported": true, "maxResults": maxResults},
		"changePassword": map[string]any{"supported": false},
		"sort":           map[string]any{"supported": false},
		"etag":           map[string]any{"supported": false},
		"authenticationSchemes": []map[string]any{{
			"type":        "httpbasic",
			"name":        "API Key",
			"description": "Static bearer key authentication",
		}},
	}, http.StatusOK)
}

// validateRequest is the dry-run validation body. Mode selects the
// operation; update and patch additionally take the existing resource.
type validateRequest struct {
	Mode       string                    `json:"mode"`
	Data       map[string]any            `json:"data,omitempty"`
	Existing   map[string]any            `json:"existing,omitempty"`
	Operations []validate.PatchOperation `json:"operations,omitempty"`
}

func (a *App) validateResource(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	resourceType := chi.URLParam(r, "resourceType")
	var body validateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, resourceType, tid)
		return
	}
	s, err := a.catalog.SchemaFor(cfg, resourceType)
	if err != nil {
		a.writeErr(w, err, resourceType, tid)
		return
	}
	rules := cfg.ValidationRules

	var result map[string]any
	switch body.Mode {
	case "", "create":
		result, err = a.validator.Create(s, rules, body.Data)
	case "update":
		result, err = a.validator.Update(s, rules, body.Data, body.Existing)
	case "patch":
		result, err = a.validator.Patch(s, rules, body.Operations, body.Existing)
	default:
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.writeErr(w, err, resourceType, tid)
		return
	}
	writeJSON(w, map[string]any{"valid": true, "resource": result}, http.StatusOK)
}

func (a *App) getConfig(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	writeJSON(w, cfg.Raw(), http.StatusOK)
}

func (a *App) patchConfig(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := a.store.Update(r.Context(), tid, partial); err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	configUpdates.Inc()
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

// searchConfig evaluates a JMESPath expression against the tenant's raw
// configuration document, e.g. ?expr=user_attributes.required_attributes
func (a *App) searchConfig(w http.ResponseWriter, r *http.Request) {
	tid := middleware.TenantFrom(r.Context())
	expr := r.URL.Query().Get("expr")
	if expr == "" {
		http.Error(w, "missing expr", http.StatusBadRequest)
		return
	}
	cfg, err := a.store.Get(r.Context(), tid)
	if err != nil {
		a.writeErr(w, err, "", tid)
		return
	}
	result, err := jmes.Search(expr, cfg.Raw())
	if err != nil {
		http.Error(w, "invalid expression", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"result": result}, http.StatusOK)
}

func listResponse[T any](total int, resources []T) map[string]any {
	return map[string]any{
		"schemas":      []string{"urn:ietf:params:scim:api:messages:2.0:ListResponse"},
		"totalResults": total,
		"Resources":    resources,
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) writeErr(w http.ResponseWriter, err error, resourceType, tenantID string) {
	if se, ok := scimerr.As(err); ok {
		se = se.WithContext(resourceType, tenantID)
		validationFailures.WithLabelValues(orUnknown(se.ResourceType), string(se.Kind)).Inc()
		writeJSON(w, se, scimerr.HTTPStatus(se))
		return
	}
	a.log.Errorw("request failed", "err", err, "tenant", tenantID)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

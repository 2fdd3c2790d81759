package scimapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scimgate/internal/schema"
	"scimgate/internal/tenantcfg"
	"scimgate/internal/validate"
	"scimgate/pkg/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	defaults := tenantcfg.Defaults{
		EntitlementDefinitions: []tenantcfg.EntitlementDefinition{
			{Name: "Licenses", Type: "license_based", CanonicalValues: []string{"Office365", "Salesforce"}, MultiValued: true},
		},
		RateLimitCreate:   10,
		RateLimitRead:     100,
		MaxResultsPerPage: 250,
		DefaultPageSize:   50,
	}
	store := tenantcfg.NewCachedStore(tenantcfg.NewMemoryStore(), defaults, 0, log)
	app := New(log, store, schema.NewCatalog(log), validate.New(log))

	r := chi.NewRouter()
	r.Use(middleware.WithTenant(""))
	app.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, tenant string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestListSchemas(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v2/Schemas", "acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["totalResults"])
	resources := body["Resources"].([]any)
	first := resources[0].(map[string]any)
	assert.Equal(t, schema.URIUser, first["id"])
}

func TestGetSchemaByURI(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v2/Schemas/"+schema.URIGroup, "acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Group", body["name"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v2/Schemas/urn:nope", "acme", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResourceTypesReflectConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/admin/config", "acme", map[string]any{
		"enabled_resource_types": []string{"Group"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v2/ResourceTypes", "acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["totalResults"])
	only := body["Resources"].([]any)[0].(map[string]any)
	assert.Equal(t, "Group", only["id"])

	// Other tenants keep the default set.
	_, other := doJSON(t, http.MethodGet, srv.URL+"/v2/ResourceTypes", "globex", nil)
	assert.Equal(t, float64(3), other["totalResults"])
}

func TestServiceProviderConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v2/ServiceProviderConfig", "acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	filter := body["filter"].(map[string]any)
	assert.Equal(t, float64(250), filter["maxResults"])
	patch := body["patch"].(map[string]any)
	assert.Equal(t, true, patch["supported"])
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("create valid", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/v2/validate/User", "acme", map[string]any{
			"data": map[string]any{"userName": "ada", "active": true},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["valid"])
		resource := body["resource"].(map[string]any)
		assert.Equal(t, "ada", resource["userName"])
	})

	t.Run("create missing required", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/v2/validate/User", "acme", map[string]any{
			"data": map[string]any{"displayName": "Ada"},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["error"])
		assert.Equal(t, "required_field_missing", body["type"])
		assert.Equal(t, "userName", body["field"])
		assert.Equal(t, "User", body["resourceType"])
		assert.Equal(t, "acme", body["tenantId"])
	})

	t.Run("update rejects readOnly", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/v2/validate/User", "acme", map[string]any{
			"mode":     "update",
			"data":     map[string]any{"id": "u-2"},
			"existing": map[string]any{"id": "u-1", "userName": "ada"},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "readonly_field_modification", body["type"])
	})

	t.Run("patch applies operations", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/v2/validate/User", "acme", map[string]any{
			"mode": "patch",
			"operations": []map[string]any{
				{"op": "replace", "path": "active", "value": false},
			},
			"existing": map[string]any{"userName": "ada", "active": true},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resource := body["resource"].(map[string]any)
		assert.Equal(t, false, resource["active"])
	})

	t.Run("unsupported resource type", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/v2/validate/Device", "acme", map[string]any{
			"data": map[string]any{},
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "unsupported_resource_type", body["type"])
	})
}

func TestAdminConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/admin/config", "acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "acme", body["server_id"])

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/admin/config", "acme", map[string]any{
		"validation_rules": map[string]any{"strict_mode": false},
		"billing_plan":     "enterprise",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/admin/config", "acme", nil)
	rules := body["validation_rules"].(map[string]any)
	assert.Equal(t, false, rules["strict_mode"])
	assert.Equal(t, true, rules["validate_required_fields"], "merge must not clobber sibling keys")
	assert.Equal(t, "enterprise", body["billing_plan"], "unknown keys survive")
}

func TestAdminConfigSearch(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/admin/config/search?expr=user_attributes.required_attributes", "acme", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"userName"}, body["result"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/admin/config/search", "acme", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTenantRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v2/Schemas", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

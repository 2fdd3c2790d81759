package scimapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the discovery, validation and admin endpoints.
func (a *App) RegisterRoutes(r chi.Router) {
	r.Route("/v2", func(vr chi.Router) {
		vr.Get("/Schemas", a.listSchemas)
		vr.Get("/Schemas/{uri}", a.getSchemaByURI)
		vr.Get("/ResourceTypes", a.listResourceTypes)
		vr.Get("/ServiceProviderConfig", a.serviceProviderConfig)
		vr.Post("/validate/{resourceType}", a.validateResource)
	})
	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/config", a.getConfig)
		ar.Patch("/config", a.patchConfig)
		ar.Get("/config/search", a.searchConfig)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

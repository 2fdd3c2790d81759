// Package scimapi exposes the schema engine over HTTP: schema and resource
// type discovery, dry-run payload validation, and tenant configuration
// administration. The CRUD endpoints for resources themselves live in a
// separate service and call the same engine.
package scimapi

import (
	"go.uber.org/zap"

	"scimgate/internal/schema"
	"scimgate/internal/tenantcfg"
	"scimgate/internal/validate"
)

// App is the scim-api application container: shared deps only, request
// scoped state stays in the context.
type App struct {
	log       *zap.SugaredLogger
	store     *tenantcfg.CachedStore
	catalog   *schema.Catalog
	validator *validate.Validator
}

func New(log *zap.SugaredLogger, store *tenantcfg.CachedStore, catalog *schema.Catalog, validator *validate.Validator) *App {
	return &App{log: log, store: store, catalog: catalog, validator: validator}
}

// cmd/scim-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scimgate/internal/schema"
	"scimgate/internal/scimapi"
	"scimgate/internal/tenantcfg"
	"scimgate/internal/validate"
	"scimgate/pkg/config"
	"scimgate/pkg/db"
	"scimgate/pkg/logger"
	"scimgate/pkg/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	defaults, err := tenantcfg.NewDefaults(cfg.EntitlementRegistryPath,
		cfg.RateLimitCreate, cfg.RateLimitRead, cfg.MaxResultsPerPage, cfg.DefaultPageSize)
	if err != nil {
		log.Fatalw("defaults", "err", err)
	}

	var backend tenantcfg.Store
	if pool := db.MustConnect(cfg, log); pool != nil {
		if err := tenantcfg.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		backend = tenantcfg.NewPostgresStore(pool, log)
	} else if cli := db.MustRedis(cfg, log); cli != nil {
		backend = tenantcfg.NewRedisStore(cli, log)
	} else {
		backend = tenantcfg.NewMemoryStore()
	}
	store := tenantcfg.NewCachedStore(backend, defaults, cfg.ConfigTTL, log)

	catalog := schema.NewCatalog(log)
	validator := validate.New(log)
	app := scimapi.New(log, store, catalog, validator)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing())
	r.Use(middleware.APIKey(cfg.APIKeys))
	r.Use(middleware.WithTenant(os.Getenv("SCIM_DEFAULT_TENANT")))

	app.RegisterRoutes(r)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("scim-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("scim-service stopped")
}

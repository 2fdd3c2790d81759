package scimapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	schemaRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scimgate_schema_requests_total",
		Help: "Schema discovery requests served, by resource type.",
	}, []string{"resource_type"})

	validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scimgate_validation_failures_total",
		Help: "Payload validation rejections, by resource type and error kind.",
	}, []string{"resource_type", "kind"})

	configUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scimgate_config_updates_total",
		Help: "Tenant configuration update operations applied.",
	})
)

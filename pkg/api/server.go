// Package api exposes a single-block flash record store over HTTP.
//
// Endpoints live under /api/v1 behind an X-API-Key check; prometheus
// metrics are served unauthenticated at /metrics for scraping.
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route, middleware and metric for the server.
// Split from StartServer so tests can drive the router directly.
func NewRouter(server *Server, metrics *Metrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Write-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Device geometry
		r.Get("/geometry", metrics.InstrumentHandler("GET", "/api/v1/geometry", server.handleGeometry))

		// Record operations, one block per offset
		r.Put("/records/{offset}", metrics.InstrumentHandler("PUT", "/api/v1/records/{offset}", server.handleWriteRecord))
		r.Get("/records/{offset}", metrics.InstrumentHandler("GET", "/api/v1/records/{offset}", server.handleReadRecord))
		r.Delete("/records/{offset}", metrics.InstrumentHandler("DELETE", "/api/v1/records/{offset}", server.handleEraseRecord))
		r.Get("/records/{offset}/info", metrics.InstrumentHandler("GET", "/api/v1/records/{offset}/info", server.handleRecordInfo))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured
func StartServer(recordStore IRecordStore, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(recordStore, config, metrics)
	r := NewRouter(server, metrics)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting Muninn REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))

	return nil
}

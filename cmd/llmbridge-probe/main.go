// Command llmbridge-probe is a minimal demo server: it builds a Client from
// config.yaml and exposes it over an OpenAI-compatible HTTP surface, so the
// façade can be exercised with curl/any OpenAI SDK without writing Go.
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sibylline/llmbridge"
	"github.com/sibylline/llmbridge/internal/config"
	"github.com/sibylline/llmbridge/internal/server"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	backend, ok := cfg.Backends[cfg.Provider]
	if !ok {
		log.Fatalf("no backend configured for provider %q", cfg.Provider)
	}

	builder := llmbridge.NewBuilder(cfg.Provider).
		WithAPIKey(backend.APIKey).
		WithModel(cfg.Model)
	if backend.BaseURL != "" {
		builder = builder.WithBaseURL(backend.BaseURL)
	}
	if backend.Timeout > 0 {
		builder = builder.WithTimeout(backend.Timeout)
	}
	for k, v := range backend.Headers {
		builder = builder.WithHeader(k, v)
	}

	var client server.Client
	if cfg.Cache.Enabled {
		caching, err := builder.BuildCaching(cfg.Cache.Capacity, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("failed to build caching client: %v", err)
		}
		client = caching
	} else {
		c, err := builder.Build()
		if err != nil {
			log.Fatalf("failed to build client: %v", err)
		}
		client = c
	}

	srv := server.New(cfg, server.NewHandler(client))

	const port = 8080
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // streaming responses can run long
	}

	log.Printf("llmbridge-probe listening on :%d, backend=%s model=%s", port, cfg.Provider, cfg.Model)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

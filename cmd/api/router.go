package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"medialib/internal/catalog"
	"medialib/internal/config"
	"medialib/internal/httpx"
	"medialib/internal/ingest"
	"medialib/internal/web"
)

type routerDeps struct {
	Catalog        *catalog.Service
	Templates      *web.Templates
	Ingest         *ingest.Service
	InternalSecret string
	Ready          func(ctx context.Context) error
	HTTP           config.HTTP
	RateLimiter    *httpx.RateLimitMiddleware
	Log            *zap.Logger
}

func newRouter(d routerDeps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	web.NewHandler(d.Catalog, d.Templates, d.Log).Register(router)

	api := http.NewServeMux()
	catalog.NewHTTPHandler(d.Catalog).Register(api)
	ingest.NewHTTPHandler(d.Ingest, d.InternalSecret).Register(api)
	limited := httpx.Chain(api, httpx.CORSMiddleware(d.HTTP.CORSAllowedOrigins), d.RateLimiter.Middleware)
	router.Handle("/api/", limited)
	router.Handle("/internal/", limited)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.Log),
		httpx.RecoveryMiddleware(d.Log),
		httpx.SecurityHeadersMiddleware(d.HTTP.EnableHSTS),
		httpx.RequestSizeLimitMiddleware(d.HTTP.MaxBodyBytes),
	)
}

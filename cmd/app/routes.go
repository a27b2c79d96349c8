package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ratesvc/internal/api"
	"ratesvc/internal/api/middleware"
	"ratesvc/internal/auth"
	"ratesvc/internal/service"
)

func (app *App) initHTTP(rateService service.ExchangeRateService) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(middleware.MetricsMiddleware(app.metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.db, app.rdbCache, app.rdbAsynq))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", api.HandleLogin(app.issuer))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(app.issuer))

			r.Get("/currency/latest", api.HandleLatestRates(rateService))
			r.Get("/currency/historical", api.HandleHistoricalRates(rateService))
			r.Post("/currency/convert", api.HandleConvert(rateService))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(app.issuer))
		r.Use(middleware.RequireRole(auth.RoleAdmin))

		r.Get("/ops/fetches", api.HandleListFetches(app.fetchRepo))

		if app.cfg.Server.ServeAsynqmon {
			mon := asynqmon.New(asynqmon.Options{
				RootPath:     "/ops/asynqmon",
				RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
			})
			r.Mount(mon.RootPath(), mon)
		}
	})

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

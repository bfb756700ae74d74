package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/myceliumfarm/mycelium/internal/handler"
	"github.com/myceliumfarm/mycelium/internal/middleware"
)

type handlers struct {
	health     *handler.HealthHandler
	customers  *handler.CustomerHandler
	ledger     *handler.LedgerHandler
	products   *handler.ProductHandler
	production *handler.ProductionHandler
	sales      *handler.SalesHandler
	settings   *handler.SettingsHandler
	backup     *handler.BackupHandler
}

func newRouter(h handlers, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	}))

	r.Get("/health/live", h.health.Liveness)
	r.Get("/health/ready", h.health.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", h.customers.Create)
			r.Get("/", h.customers.List)
			r.Get("/debtors", h.ledger.Debtors)
			r.Get("/{id}", h.customers.Get)
			r.Put("/{id}", h.customers.Update)
			r.Delete("/{id}", h.customers.Delete)
			r.Get("/{id}/ledger", h.ledger.Statement)
			r.Get("/{id}/ledger/export", h.ledger.ExportStatement)
			r.Get("/{id}/sales", h.sales.CustomerHistory)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/", h.ledger.Create)
			r.Put("/{id}", h.ledger.Update)
			r.Delete("/{id}", h.ledger.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.products.Create)
			r.Get("/", h.products.List)
			r.Get("/{id}", h.products.Get)
			r.Put("/{id}", h.products.Update)
			r.Delete("/{id}", h.products.Delete)
			r.Post("/{id}/stock", h.products.AdjustStock)
		})
		r.Get("/inventory-logs", h.products.InventoryLogs)

		r.Route("/production", func(r chi.Router) {
			r.Route("/spaces", func(r chi.Router) {
				r.Get("/", h.production.ListSpaces)
				r.Post("/", h.production.SaveSpace)
				r.Delete("/{id}", h.production.DeleteSpace)
			})
			r.Route("/batches", func(r chi.Router) {
				r.Get("/", h.production.ListBatches)
				r.Post("/", h.production.SaveBatch)
				r.Delete("/{id}", h.production.DeleteBatch)
			})
			r.Route("/logs", func(r chi.Router) {
				r.Get("/", h.production.ListFarmingLogs)
				r.Post("/", h.production.SaveFarmingLog)
				r.Delete("/{id}", h.production.DeleteFarmingLog)
			})
			r.Route("/harvests", func(r chi.Router) {
				r.Get("/", h.production.ListHarvests)
				r.Post("/", h.production.CreateHarvest)
				r.Delete("/{id}", h.production.DeleteHarvest)
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", h.sales.Create)
			r.Get("/daily", h.sales.Daily)
			r.Get("/search", h.sales.Search)
			r.Get("/tax-report", h.sales.TaxReport)
		})

		r.Route("/settings/message-templates", func(r chi.Router) {
			r.Get("/", h.settings.GetMessageTemplates)
			r.Put("/", h.settings.SaveMessageTemplates)
			r.Post("/reset", h.settings.ResetMessageTemplates)
		})

		r.Route("/backup", func(r chi.Router) {
			r.Post("/run", h.backup.Run)
			r.Get("/status", h.backup.Status)
		})
	})

	return r
}

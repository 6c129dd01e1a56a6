package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MetaQop/tag-referalochka/handlers"
	"github.com/MetaQop/tag-referalochka/store"
)

func StatusRoutes(app *fiber.App, ledger *store.Ledger) {
	h := handlers.NewStatusHandler(ledger)

	app.Get("/health", h.Health)
	app.Get("/stats", h.Stats)
}

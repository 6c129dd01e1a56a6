package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MetaQop/tag-referalochka/store"
)

type StatusHandler struct {
	ledger *store.Ledger
}

func NewStatusHandler(ledger *store.Ledger) *StatusHandler {
	return &StatusHandler{ledger: ledger}
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func (h *StatusHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.ledger.Stats(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"stats":  stats,
	})
}

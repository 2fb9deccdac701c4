package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soulscribe/soulscribe/internal/entries"
)

// RegisterEntryRoutes wires journal entry CRUD. Reads go on the plain
// protected group; writes on the idempotency-wrapped group.
func RegisterEntryRoutes(protected, mutating fiber.Router, h *entries.Handler) {
	protected.Get("/entries", h.List)
	protected.Get("/entries/:entryId", h.Get)
	mutating.Post("/entries", h.Create)
	mutating.Put("/entries/:entryId", h.Update)
	mutating.Delete("/entries/:entryId", h.Delete)
}

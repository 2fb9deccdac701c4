package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soulscribe/soulscribe/internal/secretlock"
)

// RegisterSecretLockRoutes wires the secret lock endpoints. These are never
// wrapped by the idempotency middleware: every verification submit is an
// independently rate-limited attempt.
func RegisterSecretLockRoutes(r fiber.Router, h *secretlock.Handler) {
	r.Post("/secret-lock/verify-pin", h.VerifyPIN)
	r.Post("/secret-lock/verify-security-answer", h.VerifyAnswer)
	r.Post("/secret-lock/reset", h.Reset)
	r.Post("/secret-lock/pin", h.SetPIN)
	r.Put("/secret-lock", h.Enable)
	r.Delete("/secret-lock", h.Disable)
	r.Get("/secret-lock/question", h.Question)
}

package secretlock

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the secret lock HTTP endpoints. Field names follow the
// client's existing wire contract (camelCase).
type Handler struct {
	svc *Service
}

// NewHandler builds the secret lock HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type verifyPINRequest struct {
	PIN string `json:"pin"`
}

// VerifyPIN validates a submitted PIN and issues an unlock token.
func (h *Handler) VerifyPIN(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req verifyPINRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	unlock, err := h.svc.VerifyPIN(c.UserContext(), uid, req.PIN)
	if err != nil {
		var locked *LockedError
		if errors.As(err, &locked) {
			return c.Status(http.StatusLocked).JSON(fiber.Map{
				"error":       "Too many failed attempts",
				"locked":      true,
				"lockedUntil": locked.Until.UnixMilli(),
			})
		}
		var invalid *InvalidPINError
		if errors.As(err, &invalid) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error":             "Invalid PIN",
				"attemptsRemaining": invalid.AttemptsRemaining,
			})
		}
		return h.failure(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":     true,
		"accessToken": unlock.Token,
		"expiresAt":   unlock.ExpiresAt.UnixMilli(),
	})
}

type verifyAnswerRequest struct {
	Answer          string `json:"answer"`
	DeleteOnFailure bool   `json:"deleteOnFailure"`
}

// VerifyAnswer validates the security answer, optionally destroying private
// entries on mismatch. A mismatch is a 200 with success=false; the deleted
// flag tells the client whether the wipe ran.
func (h *Handler) VerifyAnswer(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req verifyAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.RecoverWithAnswer(c.UserContext(), uid, req.Answer, req.DeleteOnFailure)
	if err != nil {
		return h.failure(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": result.Success,
		"deleted": result.Deleted,
	})
}

type resetRequest struct {
	Confirmation string `json:"confirmation"`
}

// Reset runs the explicit destructive reset gated on the literal
// confirmation phrase.
func (h *Handler) Reset(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.ResetWithConfirmation(c.UserContext(), uid, req.Confirmation)
	if err != nil {
		return h.failure(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": result.Success,
		"deleted": result.Deleted,
	})
}

type enableRequest struct {
	PIN              string `json:"pin"`
	SecurityQuestion string `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
}

// Enable configures and arms the secret lock.
func (h *Handler) Enable(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req enableRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.Enable(c.UserContext(), uid, req.PIN, req.SecurityQuestion, req.SecurityAnswer); err != nil {
		return h.failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

type setPINRequest struct {
	PIN string `json:"pin"`
}

// SetPIN replaces the PIN after a successful recovery match.
func (h *Handler) SetPIN(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req setPINRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetPIN(c.UserContext(), uid, req.PIN); err != nil {
		return h.failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// Disable turns the lock off, keeping all entries.
func (h *Handler) Disable(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	if err := h.svc.Disable(c.UserContext(), uid); err != nil {
		return h.failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// Question returns the stored security question.
func (h *Handler) Question(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	question, err := h.svc.Question(c.UserContext(), uid)
	if err != nil {
		return h.failure(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"securityQuestion": question})
}

// failure maps service errors onto the response taxonomy. Store failures
// surface as a generic 500 without leaking stored-hash state.
func (h *Handler) failure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrAnswerRequired), errors.Is(err, ErrConfirmationMismatch):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNotConfigured):
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "secret lock operation failed"})
	}
}

package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/soulscribe/soulscribe/internal/identity"
	"github.com/soulscribe/soulscribe/internal/profile"
)

// RegisterIdentityRoutes wires account signup and provisions a profile row
// alongside the new account.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, profiles profile.Repository, logger *slog.Logger) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Username string `json:"username"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Register(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password, Username: req.Username})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if profiles != nil {
			_ = profiles.Upsert(c.UserContext(), profile.Profile{
				UserID:               user.ID,
				Username:             user.Username,
				Theme:                "light",
				FontSize:             "medium",
				LanguagePreference:   "en",
				NotificationsEnabled: true,
			})
		}
		if logger != nil {
			logger.Info("identity.register completed",
				slog.String("user_id", user.ID),
				slog.String("email", user.Email),
				slog.Int("status", http.StatusCreated),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id":  user.ID,
			"email":    user.Email,
			"username": user.Username,
		})
	})
}

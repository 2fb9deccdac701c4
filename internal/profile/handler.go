package profile

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes profile preference endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds a profile HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type profilePayload struct {
	Username             string `json:"username"`
	Theme                string `json:"theme"`
	ThemeVariant         string `json:"theme_variant"`
	FontPreference       string `json:"font_preference"`
	FontSize             string `json:"font_size"`
	LanguagePreference   string `json:"language_preference"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Get returns the caller's profile; a missing row yields defaults.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	p, err := h.repo.Get(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			p = Profile{UserID: uid, Theme: "light", FontSize: "medium", LanguagePreference: "en", NotificationsEnabled: true}
		} else {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(profilePayload{
		Username:             p.Username,
		Theme:                p.Theme,
		ThemeVariant:         p.ThemeVariant,
		FontPreference:       p.FontPreference,
		FontSize:             p.FontSize,
		LanguagePreference:   p.LanguagePreference,
		NotificationsEnabled: p.NotificationsEnabled,
	})
}

// Update replaces the caller's preference set.
func (h *Handler) Update(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	var req profilePayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p := Profile{
		UserID:               uid,
		Username:             req.Username,
		Theme:                req.Theme,
		ThemeVariant:         req.ThemeVariant,
		FontPreference:       req.FontPreference,
		FontSize:             req.FontSize,
		LanguagePreference:   req.LanguagePreference,
		NotificationsEnabled: req.NotificationsEnabled,
	}
	if err := h.repo.Upsert(c.UserContext(), p); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "updated"})
}

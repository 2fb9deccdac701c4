package entries

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes journal entry HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an entries HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type entryRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Mood         string   `json:"mood"`
	EmotionTags  []string `json:"emotion_tags"`
	MediaURLs    []string `json:"media_urls"`
	VoiceNoteURL string   `json:"voice_note_url"`
	IsPrivate    bool     `json:"is_private"`
	IsFavorite   bool     `json:"is_favorite"`
}

type entryResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Mood         string   `json:"mood"`
	EmotionTags  []string `json:"emotion_tags"`
	MediaURLs    []string `json:"media_urls"`
	VoiceNoteURL string   `json:"voice_note_url"`
	IsPrivate    bool     `json:"is_private"`
	IsFavorite   bool     `json:"is_favorite"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toResponse(e Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		Title:        e.Title,
		Content:      e.Content,
		Mood:         e.Mood,
		EmotionTags:  e.EmotionTags,
		MediaURLs:    e.MediaURLs,
		VoiceNoteURL: e.VoiceNoteURL,
		IsPrivate:    e.IsPrivate,
		IsFavorite:   e.IsFavorite,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func ownerID(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return uid, nil
}

// Create stores a new entry for the authenticated owner.
func (h *Handler) Create(c *fiber.Ctx) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Create(c.UserContext(), CreateInput{
		UserID:       uid,
		Title:        req.Title,
		Content:      req.Content,
		Mood:         req.Mood,
		EmotionTags:  req.EmotionTags,
		MediaURLs:    req.MediaURLs,
		VoiceNoteURL: req.VoiceNoteURL,
		IsPrivate:    req.IsPrivate,
		IsFavorite:   req.IsFavorite,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(entry))
}

// List returns the owner's entries. Private entries are included only when
// the client asks for them; the client gates that on its unlock session.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}
	filter := ListFilter{
		IncludePrivate: c.QueryBool("include_private"),
		FavoritesOnly:  c.QueryBool("favorites"),
	}
	list, err := h.service.List(c.UserContext(), uid, filter)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]entryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entries": out})
}

// Get returns a single entry.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}
	entry, err := h.service.Get(c.UserContext(), uid, c.Params("entryId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(entry))
}

// Update rewrites an entry.
func (h *Handler) Update(c *fiber.Ctx) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entry, err := h.service.Update(c.UserContext(), uid, c.Params("entryId"), UpdateInput{
		Title:        req.Title,
		Content:      req.Content,
		Mood:         req.Mood,
		EmotionTags:  req.EmotionTags,
		MediaURLs:    req.MediaURLs,
		VoiceNoteURL: req.VoiceNoteURL,
		IsPrivate:    req.IsPrivate,
		IsFavorite:   req.IsFavorite,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(entry))
}

// Delete removes an entry.
func (h *Handler) Delete(c *fiber.Ctx) error {
	uid, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), uid, c.Params("entryId")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

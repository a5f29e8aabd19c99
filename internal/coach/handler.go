package coach

import (
	"github.com/gofiber/fiber/v2"
)

// Handler exposes coach endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a coach handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Chat answers the message given in the form body or query string.
func (h *Handler) Chat(c *fiber.Ctx) error {
	message := c.FormValue("message")
	if message == "" {
		message = c.Query("message")
	}
	reply, err := h.service.Chat(c.UserContext(), c.Params("user_id"), message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// History lists stored conversations.
func (h *Handler) History(c *fiber.Ctx) error {
	items, err := h.service.History(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, len(items))
	for i, item := range items {
		out[i] = fiber.Map{
			"id":           item.ID,
			"user_message": item.UserMessage,
			"ai_response":  item.AIResponse,
			"created_at":   item.CreatedAt,
		}
	}
	return c.JSON(out)
}

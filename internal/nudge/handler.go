package nudge

import (
	"github.com/gofiber/fiber/v2"
)

// Handler exposes nudge endpoints.
type Handler struct {
	engine *Engine
}

// NewHandler builds a nudge handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func nudgeJSON(n Nudge) fiber.Map {
	return fiber.Map{
		"id":           n.ID,
		"nudge_type":   n.Type,
		"trigger":      n.Trigger,
		"category":     n.Category,
		"severity":     n.Severity,
		"message":      n.Message,
		"delivered_at": n.DeliveredAt,
	}
}

// Run evaluates the user now.
func (h *Handler) Run(c *fiber.Ctx) error {
	out, err := h.engine.Run(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	switch out.Status {
	case StatusNoNudge:
		return c.JSON(fiber.Map{"status": out.Status, "reason": out.Reason})
	case StatusRateLimited:
		return c.JSON(fiber.Map{"status": out.Status})
	default:
		return c.JSON(fiber.Map{"status": out.Status, "nudge": nudgeJSON(*out.Nudge)})
	}
}

// List returns stored nudges.
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.engine.List(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, len(items))
	for i, n := range items {
		out[i] = nudgeJSON(n)
	}
	return c.JSON(out)
}

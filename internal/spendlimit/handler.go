package spendlimit

import (
	"github.com/gofiber/fiber/v2"
)

// Handler exposes spend limit endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a spend limit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func limitJSON(l Limit) fiber.Map {
	return fiber.Map{
		"category":        l.Category,
		"limit":           l.Limit.InexactFloat64(),
		"alert_threshold": l.AlertThreshold.InexactFloat64(),
	}
}

// Generate recomputes and stores the user's limits.
func (h *Handler) Generate(c *fiber.Ctx) error {
	limits, err := h.service.Generate(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, len(limits))
	for i, l := range limits {
		out[i] = limitJSON(l)
	}
	return c.JSON(fiber.Map{"message": "Spend limits generated successfully", "limits": out})
}

// CurrentSpending returns this month's spend per category.
func (h *Handler) CurrentSpending(c *fiber.Ctx) error {
	spending, err := h.service.CurrentSpending(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	byCategory := make(map[string]float64, len(spending.ByCategory))
	for cat, amount := range spending.ByCategory {
		byCategory[cat] = amount.InexactFloat64()
	}
	return c.JSON(fiber.Map{"current_spend": byCategory, "total": spending.Total.InexactFloat64()})
}

// Alerts checks this month's spend against the stored limits.
func (h *Handler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.service.Alerts(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, len(alerts))
	for i, a := range alerts {
		out[i] = fiber.Map{
			"category": a.Category,
			"level":    a.Level,
			"message":  a.Message,
			"spent":    a.Spent.InexactFloat64(),
			"limit":    a.Limit.InexactFloat64(),
		}
	}
	return c.JSON(fiber.Map{"alerts": out})
}

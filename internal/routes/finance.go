package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/auth"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/coach"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/insights"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/middleware"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/nudge"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/savings"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/spendlimit"
)

func userSelf() fiber.Handler {
	return middleware.RequireSelf(auth.RoleUser, "user_id")
}

// RegisterSpendRoutes wires spend limit endpoints.
func RegisterSpendRoutes(r fiber.Router, h *spendlimit.Handler) {
	group := r.Group("/spend")
	group.Post("/generate/:user_id", userSelf(), h.Generate)
	group.Get("/current-spending/:user_id", userSelf(), h.CurrentSpending)
	group.Get("/alerts/:user_id", userSelf(), h.Alerts)
}

// RegisterSavingsRoutes wires savings, investment and insight endpoints. The
// user id travels in the form body and is checked by the handlers.
func RegisterSavingsRoutes(r fiber.Router, h *savings.Handler, ih *insights.Handler) {
	r.Post("/savings/estimate", h.Estimate)
	r.Post("/investments/", h.Investments)
	r.Post("/insights/spending-form", ih.SpendingForm)
}

// RegisterCoachRoutes wires the AI coach and nudge endpoints.
func RegisterCoachRoutes(r fiber.Router, ch *coach.Handler, nh *nudge.Handler) {
	r.Post("/coach/chat/:user_id", userSelf(), ch.Chat)
	r.Get("/coach/history/:user_id", userSelf(), ch.History)
	r.Post("/nudges/run/:user_id", userSelf(), nh.Run)
	r.Get("/nudges/:user_id", userSelf(), nh.List)
}

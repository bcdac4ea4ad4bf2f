package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	"github.com/jhoicas/Vouchers-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lifecycle *vouchers.LifecycleUseCase
	Stats     *vouchers.StatsUseCase
	PDF       *vouchers.PDFUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	h := NewVoucherHandler(deps.Lifecycle, deps.Stats, deps.PDF)
	approvers := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant)

	vg := api.Group("/vouchers")
	vg.Post("/", h.Submit)
	vg.Post("/drafts", h.SubmitDraft)
	vg.Get("/", h.List)
	vg.Get("/stats", h.Stats)
	vg.Get("/:id", h.GetByID)
	vg.Get("/:id/pdf", h.PDF)
	vg.Post("/:id/submit", h.SendForApproval)
	vg.Post("/:id/approve", approvers, h.Approve)
	vg.Post("/:id/reject", approvers, h.Reject)
	vg.Post("/:id/pay", approvers, h.Pay)
	vg.Post("/:id/cancel", h.Cancel)
}

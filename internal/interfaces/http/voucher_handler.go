package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Vouchers-api/internal/application/dto"
	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
)

// HeaderIdempotencyKey cabecera opcional de POST /api/vouchers.
const HeaderIdempotencyKey = "Idempotency-Key"

// VoucherHandler maneja las peticiones HTTP de comprobantes de egreso (protegido).
type VoucherHandler struct {
	lifecycle *vouchers.LifecycleUseCase
	stats     *vouchers.StatsUseCase
	pdf       *vouchers.PDFUseCase
}

// NewVoucherHandler construye el handler.
func NewVoucherHandler(lifecycle *vouchers.LifecycleUseCase, stats *vouchers.StatsUseCase, pdf *vouchers.PDFUseCase) *VoucherHandler {
	return &VoucherHandler{lifecycle: lifecycle, stats: stats, pdf: pdf}
}

// Submit godoc
// @Summary      Registrar comprobante de egreso
// @Description  Crea el comprobante en estado pending. Impuesto y total se calculan y quedan fijos.
//               Con Idempotency-Key, los reintentos del mismo usuario devuelven el comprobante ya creado (200).
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                    false  "clave de reintento"
// @Param        body             body    dto.SubmitVoucherRequest  true   "datos del egreso"
// @Success      201  {object}  dto.VoucherResponse
// @Success      200  {object}  dto.VoucherResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/vouchers [post]
func (h *VoucherHandler) Submit(c *fiber.Ctx) error {
	in, err := h.parseSubmit(c)
	if err != nil || in == nil {
		return err
	}
	v, replayed, err := h.lifecycle.SubmitIdempotent(c.UserContext(), c.Get(HeaderIdempotencyKey), actor(c), *in)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.NewVoucherResponse(v))
}

// SubmitDraft godoc
// @Summary      Guardar comprobante en borrador
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitVoucherRequest  true  "datos del egreso"
// @Success      201   {object}  dto.VoucherResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/vouchers/drafts [post]
func (h *VoucherHandler) SubmitDraft(c *fiber.Ctx) error {
	in, err := h.parseSubmit(c)
	if err != nil || in == nil {
		return err
	}
	v, err := h.lifecycle.SubmitDraft(c.UserContext(), actor(c), *in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewVoucherResponse(v))
}

// SendForApproval godoc
// @Summary      Enviar borrador a aprobación
// @Tags         vouchers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del comprobante"
// @Success      200  {object}  dto.VoucherResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/submit [post]
func (h *VoucherHandler) SendForApproval(c *fiber.Ctx) error {
	v, err := h.lifecycle.SendForApproval(c.UserContext(), c.Params("id"), actor(c))
	return h.respond(c, v, err)
}

// Approve godoc
// @Summary      Aprobar comprobante pendiente
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del comprobante"
// @Param        body  body  dto.ApproveRequest  false  "notas"
// @Success      200   {object}  dto.VoucherResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/approve [post]
func (h *VoucherHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return invalidBody(c)
	}
	v, err := h.lifecycle.Approve(c.UserContext(), c.Params("id"), actor(c), in.Notes)
	return h.respond(c, v, err)
}

// Reject godoc
// @Summary      Rechazar comprobante pendiente
// @Description  El motivo es obligatorio.
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del comprobante"
// @Param        body  body  dto.RejectRequest  true  "motivo"
// @Success      200   {object}  dto.VoucherResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/reject [post]
func (h *VoucherHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return invalidBody(c)
	}
	v, err := h.lifecycle.Reject(c.UserContext(), c.Params("id"), actor(c), in.Reason)
	return h.respond(c, v, err)
}

// Pay godoc
// @Summary      Marcar comprobante aprobado como pagado
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string          true   "ID del comprobante"
// @Param        body  body  dto.PayRequest  false  "referencia del pago"
// @Success      200   {object}  dto.VoucherResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/pay [post]
func (h *VoucherHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	v, err := h.lifecycle.MarkPaid(c.UserContext(), c.Params("id"), actor(c), in.Reference, in.Notes)
	return h.respond(c, v, err)
}

// Cancel godoc
// @Summary      Anular comprobante
// @Description  Permitido desde draft, pending o approved.
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID del comprobante"
// @Param        body  body  dto.CancelRequest  false  "motivo"
// @Success      200   {object}  dto.VoucherResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/cancel [post]
func (h *VoucherHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return invalidBody(c)
	}
	v, err := h.lifecycle.Cancel(c.UserContext(), c.Params("id"), actor(c), in.Reason)
	return h.respond(c, v, err)
}

// GetByID godoc
// @Summary      Obtener comprobante
// @Tags         vouchers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del comprobante"
// @Success      200  {object}  dto.VoucherResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id} [get]
func (h *VoucherHandler) GetByID(c *fiber.Ctx) error {
	v, err := h.lifecycle.Get(c.UserContext(), c.Params("id"))
	return h.respond(c, v, err)
}

// List godoc
// @Summary      Listar comprobantes
// @Description  Orden: más recientes primero. to es inclusivo.
// @Tags         vouchers
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "draft|pending|approved|paid|rejected|cancelled"
// @Param        category  query  string  false  "categoría"
// @Param        from      query  string  false  "desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "hasta (YYYY-MM-DD)"
// @Param        limit     query  int     false  "default 50, max 200"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {object}  dto.VoucherListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/vouchers [get]
func (h *VoucherHandler) List(c *fiber.Ctx) error {
	q, ok, err := parseListQuery(c)
	if !ok {
		return err
	}
	q.DefaultPage()
	list, err := h.lifecycle.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.VoucherResponse, 0, len(list))
	for _, v := range list {
		items = append(items, dto.NewVoucherResponse(v))
	}
	return c.JSON(dto.VoucherListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Count: len(items)},
	})
}

// Stats godoc
// @Summary      Estadísticas de comprobantes
// @Description  Se calculan sobre todos los comprobantes que cumplen los filtros; limit/offset se ignoran.
// @Tags         vouchers
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "estado"
// @Param        category  query  string  false  "categoría"
// @Param        from      query  string  false  "desde (YYYY-MM-DD)"
// @Param        to        query  string  false  "hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.VoucherStatsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/vouchers/stats [get]
func (h *VoucherHandler) Stats(c *fiber.Ctx) error {
	q, ok, err := parseListQuery(c)
	if !ok {
		return err
	}
	s, err := h.stats.Stats(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s)
}

// PDF godoc
// @Summary      Descargar comprobante en PDF
// @Tags         vouchers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del comprobante"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/pdf [get]
func (h *VoucherHandler) PDF(c *fiber.Ctx) error {
	b, filename, err := h.pdf.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(b)
}

func (h *VoucherHandler) respond(c *fiber.Ctx, v *entity.Voucher, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewVoucherResponse(v))
}

// parseSubmit devuelve (nil, nil) si ya se respondió con 400.
func (h *VoucherHandler) parseSubmit(c *fiber.Ctx) (*dto.SubmitVoucherRequest, error) {
	var in dto.SubmitVoucherRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, invalidBody(c)
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(c, err)
	}
	return &in, nil
}

// parseListQuery ok=false cuando ya se respondió con error.
func parseListQuery(c *fiber.Ctx) (dto.ListVouchersQuery, bool, error) {
	var q dto.ListVouchersQuery
	if err := c.QueryParser(&q); err != nil {
		return q, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(q); err != nil {
		return q, false, validationError(c, err)
	}
	return q, true, nil
}

// parseOptionalBody acepta cuerpo vacío en acciones cuyos campos son opcionales.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

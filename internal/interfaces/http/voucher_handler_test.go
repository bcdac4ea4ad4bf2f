package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Vouchers-api/internal/application/dto"
	"github.com/jhoicas/Vouchers-api/internal/application/vouchers"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/cache"
	"github.com/jhoicas/Vouchers-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Vouchers-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Vouchers-api/pkg/jwt"
	"github.com/jhoicas/Vouchers-api/pkg/logger"
)

const submitBody = `{
	"title": "Compra de toallas",
	"category": "supplies",
	"amount": "1000",
	"payment_method": "cash",
	"beneficiary_name": "Textiles del Golfo",
	"beneficiary_type": "supplier"
}`

type stubPDF struct{}

func (stubPDF) GenerateVoucherPDF(v *entity.Voucher) ([]byte, error) {
	return []byte("%PDF-1.7 " + v.VoucherNumber), nil
}

// brokenPDF simula una falla del motor de render.
type brokenPDF struct{}

func (brokenPDF) GenerateVoucherPDF(*entity.Voucher) ([]byte, error) {
	return nil, errors.New("fuente helvetica no disponible")
}

// downRepo simula un almacén caído.
type downRepo struct{}

var errDown = errors.New("dial tcp: connection refused")

func (downRepo) Create(context.Context, *entity.Voucher) error { return errDown }
func (downRepo) GetByID(context.Context, string) (*entity.Voucher, error) {
	return nil, errDown
}
func (downRepo) List(context.Context, repository.VoucherFilter) ([]*entity.Voucher, error) {
	return nil, errDown
}
func (downRepo) UpdateStatus(context.Context, repository.StatusUpdate) error { return errDown }

func newTestApp(repo repository.VoucherRepository) *fiber.App {
	return newTestAppWithPDF(repo, stubPDF{})
}

func newTestAppWithPDF(repo repository.VoucherRepository, gen vouchers.PDFGenerator) *fiber.App {
	lifecycle := vouchers.NewLifecycleUseCase(repo, cache.NewInMemoryIdempotencyStore(), vouchers.LifecycleConfig{
		MaxAttempts:          3,
		StoreTimeout:         time.Second,
		DefaultTaxPercentage: decimal.NewFromInt(15),
		DefaultCurrency:      "SAR",
		IdempotencyTTL:       time.Hour,
	}, logger.Nop())

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(apphttp.Recover(logger.Nop()))
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		Lifecycle: lifecycle,
		Stats:     vouchers.NewStatsUseCase(repo, time.Second),
		PDF:       vouchers.NewPDFUseCase(repo, gen, time.Second),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func submit(t *testing.T, app *fiber.App) dto.VoucherResponse {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester, submitBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.VoucherResponse](t, resp)
}

func TestVoucherHandler_SubmitCalculaTotales(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())

	v := submit(t, app)
	assert.Equal(t, "pending", v.Status)
	assert.Equal(t, "Pendiente", v.StatusLabel)
	assert.True(t, v.TaxAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, v.TotalAmount.Equal(decimal.NewFromInt(1150)))
	assert.Equal(t, "1.150,00 SAR", v.TotalAmountFormatted)
	assert.Regexp(t, `^VCH-\d{6}-\d{6}$`, v.VoucherNumber)
	assert.Equal(t, testUserID, v.CreatedBy.ID)
	assert.Equal(t, testUserName, v.CreatedBy.Name)
}

func TestVoucherHandler_SinToken_Retorna401(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	resp := call(t, app, http.MethodPost, "/api/vouchers", "", submitBody)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVoucherHandler_CuerpoInvalido(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())

	resp := call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester, `{"amount":`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body.Code)

	resp = call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester,
		`{"amount":"10","payment_method":"cash","beneficiary_name":"X","beneficiary_type":"supplier"}`)
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "required", body.Details["Category"])
}

func TestVoucherHandler_MontoCero_Retorna400(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	resp := call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester,
		strings.Replace(submitBody, `"1000"`, `"0"`, 1))
	body := decode[dto.ErrorResponse](t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "amount", body.Details["field"])
}

func TestVoucherHandler_FlujoAprobacionYPago(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	v := submit(t, app)

	resp := call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/approve", pkgjwt.RoleRequester, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "requester no aprueba")

	resp = call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/approve", pkgjwt.RoleAccountant, `{"notes":"ok"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[dto.VoucherResponse](t, resp)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.Approval)
	assert.Equal(t, "ok", approved.Approval.Notes)

	resp = call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/approve", pkgjwt.RoleAdmin, "")
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errBody.Code)
	assert.Equal(t, "approve", errBody.Details["action"])
	assert.Equal(t, "approved", errBody.Details["status"])

	resp = call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/pay", pkgjwt.RoleAdmin, `{"reference":"TRX-77"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[dto.VoucherResponse](t, resp)
	assert.Equal(t, "paid", paid.Status)
	require.NotNil(t, paid.Closing)
	assert.Equal(t, "TRX-77", paid.Closing.Reference)
	require.NotNil(t, paid.Approval, "el pago conserva la aprobación")

	resp = call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/cancel", pkgjwt.RoleAdmin, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVoucherHandler_RechazoSinMotivo_Retorna400(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	v := submit(t, app)

	resp := call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/reject", pkgjwt.RoleAdmin, `{"reason":"  "}`)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body.Code)

	resp = call(t, app, http.MethodPost, "/api/vouchers/"+v.ID+"/reject", pkgjwt.RoleAdmin, `{"reason":"sin factura"}`)
	rejected := decode[dto.VoucherResponse](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "sin factura", rejected.Closing.Reason)
}

func TestVoucherHandler_BorradorYEnvio(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())

	resp := call(t, app, http.MethodPost, "/api/vouchers/drafts", pkgjwt.RoleRequester, submitBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decode[dto.VoucherResponse](t, resp)
	assert.Equal(t, "draft", draft.Status)

	resp = call(t, app, http.MethodPost, "/api/vouchers/"+draft.ID+"/submit", pkgjwt.RoleRequester, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pending := decode[dto.VoucherResponse](t, resp)
	assert.Equal(t, "pending", pending.Status)
}

func TestVoucherHandler_NoEncontrado(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	resp := call(t, app, http.MethodGet, "/api/vouchers/no-existe", pkgjwt.RoleRequester, "")
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestVoucherHandler_IdempotencyKey(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())

	resp := call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester, submitBody, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[dto.VoucherResponse](t, resp)

	resp = call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester, submitBody, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replay := decode[dto.VoucherResponse](t, resp)
	assert.Equal(t, first.ID, replay.ID)

	resp = call(t, app, http.MethodGet, "/api/vouchers", pkgjwt.RoleRequester, "")
	list := decode[dto.VoucherListResponse](t, resp)
	assert.Equal(t, 1, list.Page.Count)
}

func TestVoucherHandler_ListYStats(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	a := submit(t, app)
	submit(t, app)
	resp := call(t, app, http.MethodPost, "/api/vouchers/"+a.ID+"/approve", pkgjwt.RoleAdmin, "")
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/vouchers?status=approved", pkgjwt.RoleRequester, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.VoucherListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].ID)
	assert.Equal(t, 50, list.Page.Limit)

	resp = call(t, app, http.MethodGet, "/api/vouchers?limit=1&offset=1", pkgjwt.RoleRequester, "")
	list = decode[dto.VoucherListResponse](t, resp)
	assert.Len(t, list.Items, 1)

	resp = call(t, app, http.MethodGet, "/api/vouchers?status=archivado", pkgjwt.RoleRequester, "")
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errBody.Code)

	resp = call(t, app, http.MethodGet, "/api/vouchers/stats", pkgjwt.RoleRequester, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[dto.VoucherStatsResponse](t, resp)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.CountByStatus["approved"])
	assert.Equal(t, 1, stats.CountByStatus["pending"])
	assert.True(t, stats.AvgVoucherAmount.Equal(decimal.NewFromInt(1150)))
}

func TestVoucherHandler_PDF(t *testing.T) {
	app := newTestApp(memory.NewVoucherRepository())
	v := submit(t, app)

	resp := call(t, app, http.MethodGet, "/api/vouchers/"+v.ID+"/pdf", pkgjwt.RoleRequester, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), v.VoucherNumber+".pdf")

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "%PDF"))
}

func TestVoucherHandler_PDFFallaDeRenderEs500(t *testing.T) {
	app := newTestAppWithPDF(memory.NewVoucherRepository(), brokenPDF{})
	v := submit(t, app)

	resp := call(t, app, http.MethodGet, "/api/vouchers/"+v.ID+"/pdf", pkgjwt.RoleRequester, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", decode[dto.ErrorResponse](t, resp).Code)
}

func TestVoucherHandler_AlmacenCaido_Retorna503(t *testing.T) {
	app := newTestApp(downRepo{})

	resp := call(t, app, http.MethodPost, "/api/vouchers", pkgjwt.RoleRequester, submitBody)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "STORE_UNAVAILABLE", body.Code)

	resp = call(t, app, http.MethodGet, "/api/vouchers/x", pkgjwt.RoleRequester, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRecover_PanicRetorna500(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(apphttp.Recover(logger.Nop()))
	app.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", body.Code)
}

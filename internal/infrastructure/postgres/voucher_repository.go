package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/domain/voucher"
)

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

// VoucherRepo implementación del puerto VoucherRepository sobre PostgreSQL (usable con pool o tx).
type VoucherRepo struct {
	q Querier
}

// NewVoucherRepository construye el adaptador de persistencia para comprobantes. Pasar pool o tx (Querier).
func NewVoucherRepository(q Querier) *VoucherRepo {
	return &VoucherRepo{q: q}
}

const voucherColumns = `
	id, voucher_number, title, description, category, amount, tax_percentage, tax_amount, total_amount,
	currency, payment_method, beneficiary_name, beneficiary_type, beneficiary_phone, voucher_date, status,
	created_by, created_by_name, requested_by, requested_by_name,
	approved_by, approved_by_name, approved_at, approval_notes,
	rejected_by, rejected_by_name, rejected_at, rejection_reason,
	paid_by, paid_by_name, paid_at, payment_reference, payment_notes,
	cancelled_by, cancelled_by_name, cancelled_at, cancellation_reason,
	notes, version, created_at, updated_at`

// Create persiste el comprobante. El número sale de la secuencia en la misma sentencia.
func (r *VoucherRepo) Create(ctx context.Context, v *entity.Voucher) error {
	if err := voucher.Validate(v); err != nil {
		return err
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	id := uuid.New().String()
	query := `
		INSERT INTO expense_vouchers (
			id, voucher_number, title, description, category, amount, tax_percentage, tax_amount, total_amount,
			currency, payment_method, beneficiary_name, beneficiary_type, beneficiary_phone, voucher_date, status,
			created_by, created_by_name, requested_by, requested_by_name, notes, version, created_at, updated_at)
		VALUES (
			$1, 'VCH-' || to_char($21::timestamptz AT TIME ZONE 'UTC', 'YYYYMM') || '-' || lpad(nextval('expense_voucher_number_seq')::text, 6, '0'),
			$2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, 1, $21, $21)
		RETURNING voucher_number, created_at`
	err := r.q.QueryRow(ctx, query,
		id, v.Title, v.Description, v.Category, v.Amount, v.TaxPercentage, v.TaxAmount, v.TotalAmount,
		v.Currency, v.PaymentMethod, v.BeneficiaryName, v.BeneficiaryType, v.BeneficiaryPhone, v.VoucherDate, v.Status,
		v.CreatedBy, v.CreatedByName, v.RequestedBy, v.RequestedByName, v.Notes, v.CreatedAt.UTC(),
	).Scan(&v.VoucherNumber, &v.CreatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("voucher", err.Error())
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("insert voucher: %w", domain.ErrConflict)
		}
		return domain.Unavailable("insert voucher", err)
	}
	v.ID = id
	v.Version = 1
	v.UpdatedAt = v.CreatedAt
	return nil
}

// GetByID obtiene un comprobante por ID.
func (r *VoucherRepo) GetByID(ctx context.Context, id string) (*entity.Voucher, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + voucherColumns + ` FROM expense_vouchers WHERE id = $1`
	v, err := scanVoucher(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("get voucher", err)
	}
	return v, nil
}

// List arma el WHERE dinámico con los filtros presentes.
func (r *VoucherRepo) List(ctx context.Context, f repository.VoucherFilter) ([]*entity.Voucher, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.From != nil {
		add("voucher_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("voucher_date <= $%d", *f.To)
	}

	query := `SELECT ` + voucherColumns + ` FROM expense_vouchers`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, voucher_number DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Unavailable("list vouchers", err)
	}
	defer rows.Close()

	list := make([]*entity.Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, domain.Unavailable("scan voucher", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list vouchers", err)
	}
	return list, nil
}

// UpdateStatus escritura condicional en una sola sentencia. Con 0 filas distingue
// entre registro inexistente y conflicto.
func (r *VoucherRepo) UpdateStatus(ctx context.Context, u repository.StatusUpdate) error {
	c := entity.FlattenClosing(u.Closing)
	query := `
		UPDATE expense_vouchers SET
			status = $4,
			approved_by = $5, approved_by_name = $6, approved_at = $7, approval_notes = $8,
			rejected_by = $9, rejected_by_name = $10, rejected_at = $11, rejection_reason = $12,
			paid_by = $13, paid_by_name = $14, paid_at = $15, payment_reference = $16, payment_notes = $17,
			cancelled_by = $18, cancelled_by_name = $19, cancelled_at = $20, cancellation_reason = $21,
			version = version + 1,
			updated_at = $22
		WHERE id = $1 AND status = $2 AND version = $3`
	tag, err := r.q.Exec(ctx, query,
		u.ID, u.From, u.ExpectedVersion, u.To,
		c.ApprovedBy, c.ApprovedByName, c.ApprovedAt, c.ApprovalNotes,
		c.RejectedBy, c.RejectedByName, c.RejectedAt, c.RejectionReason,
		c.PaidBy, c.PaidByName, c.PaidAt, c.PaymentReference, c.PaymentNotes,
		c.CancelledBy, c.CancelledByName, c.CancelledAt, c.CancellationReason,
		u.UpdatedAt.UTC(),
	)
	if err != nil {
		return domain.Unavailable("update voucher status", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM expense_vouchers WHERE id = $1)`, u.ID).Scan(&exists); err != nil {
		return domain.Unavailable("check voucher", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func scanVoucher(row pgx.Row) (*entity.Voucher, error) {
	var (
		v entity.Voucher
		c entity.ClosingRecord
	)
	err := row.Scan(
		&v.ID, &v.VoucherNumber, &v.Title, &v.Description, &v.Category, &v.Amount, &v.TaxPercentage,
		&v.TaxAmount, &v.TotalAmount, &v.Currency, &v.PaymentMethod, &v.BeneficiaryName, &v.BeneficiaryType,
		&v.BeneficiaryPhone, &v.VoucherDate, &v.Status,
		&v.CreatedBy, &v.CreatedByName, &v.RequestedBy, &v.RequestedByName,
		&c.ApprovedBy, &c.ApprovedByName, &c.ApprovedAt, &c.ApprovalNotes,
		&c.RejectedBy, &c.RejectedByName, &c.RejectedAt, &c.RejectionReason,
		&c.PaidBy, &c.PaidByName, &c.PaidAt, &c.PaymentReference, &c.PaymentNotes,
		&c.CancelledBy, &c.CancelledByName, &c.CancelledAt, &c.CancellationReason,
		&v.Notes, &v.Version, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Currency = strings.TrimSpace(v.Currency)
	v.Closing = c.Event(v.Status)
	return &v, nil
}

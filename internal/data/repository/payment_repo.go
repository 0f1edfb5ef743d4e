package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PendingPaymentConstraint is the partial unique index allowing one pending payment per booking.
const PendingPaymentConstraint = "payments_one_pending_per_booking"

// ErrDuplicatePending is returned by Create when the booking already has a pending payment.
var ErrDuplicatePending = errors.New("booking already has a payment pending verification")

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error)
	HasPending(ctx context.Context, bookingID uuid.UUID) (bool, error)
	List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, int64, error)
}

// PaymentFilter narrows List. Zero fields do not filter.
type PaymentFilter struct {
	Status  entity.PaymentStatus
	Flagged bool
	Page
}

type paymentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPaymentRepository(db database.Querier, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_id, amount, method, payer_name, payer_contact, receipt_ref, status, kind,
	review_flag, verified_by, verified_at, notes, resolved_by, resolved_at, resolution_notes, created_at, updated_at`

func scanPayment(row scanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Amount,
		&p.Method,
		&p.PayerName,
		&p.PayerContact,
		&p.ReceiptRef,
		&p.Status,
		&p.Kind,
		&p.ReviewFlag,
		&p.VerifiedBy,
		&p.VerifiedAt,
		&p.Notes,
		&p.ResolvedBy,
		&p.ResolvedAt,
		&p.ResolutionNotes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Method,
		payment.PayerName,
		payment.PayerContact,
		payment.ReceiptRef,
		payment.Status,
		payment.Kind,
		payment.ReviewFlag,
		payment.VerifiedBy,
		payment.VerifiedAt,
		payment.Notes,
		payment.ResolvedBy,
		payment.ResolvedAt,
		payment.ResolutionNotes,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if database.UniqueViolation(err, PendingPaymentConstraint) {
		r.log.Warn("Duplicate pending payment rejected by index",
			zap.String("booking_id", payment.BookingID.String()),
		)
		return ErrDuplicatePending
	}
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *paymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

func (r *paymentRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Payment, error) {
	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id, err)
	}
	return payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, kind = $3, review_flag = $4, verified_by = $5, verified_at = $6, notes = $7,
		    resolved_by = $8, resolved_at = $9, resolution_notes = $10, updated_at = $11
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.Status,
		payment.Kind,
		payment.ReviewFlag,
		payment.VerifiedBy,
		payment.VerifiedAt,
		payment.Notes,
		payment.ResolvedBy,
		payment.ResolvedAt,
		payment.ResolutionNotes,
		payment.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update payment",
			zap.Error(err),
			zap.String("payment_id", payment.ID.String()),
		)
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}
	return nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to list payments by booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("list payments of booking %s: %w", bookingID, err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) HasPending(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, bookingID, entity.PaymentStatusPending).Scan(&exists); err != nil {
		r.log.Error("Failed to check pending payment", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return false, fmt.Errorf("check pending payment of booking %s: %w", bookingID, err)
	}
	return exists, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Flagged {
		where = append(where, "review_flag <> ''")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+clause, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count payments", zap.Error(err))
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	// Oldest first: this backs the admin work queues.
	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY created_at LIMIT $%d OFFSET $%d`,
		paymentColumns, clause, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.Size(), filter.Offset)...)
	if err != nil {
		r.log.Error("Failed to list payments", zap.Error(err))
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, total, rows.Err()
}

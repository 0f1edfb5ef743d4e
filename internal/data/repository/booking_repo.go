package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"
	"entertainer-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByReference(ctx context.Context, reference string) (*entity.Booking, error)
	Update(ctx context.Context, booking *entity.Booking) error
	List(ctx context.Context, filter BookingFilter) ([]*entity.Booking, int64, error)

	// Business queries
	FindDueToStart(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	NextReference(ctx context.Context, at time.Time) (string, error)
}

// BookingFilter narrows List. Zero fields do not filter.
type BookingFilter struct {
	ClientID           uuid.UUID
	PerformerID        uuid.UUID
	Statuses           []entity.BookingStatus
	CancellationReview bool
	Page
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, reference, client_id, performer_id, service_id, event_date, duration_hours,
	venue_address, guest_count, special_requirements, base_amount, referral_percent, referral_amount,
	deposit_percent, deposit_amount, total_amount, status, payment_status, cancellation_review,
	cancellation_requested_by, cancellation_requested_at, status_reason, version, created_at, updated_at`

func scanBooking(row scanner) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.ClientID,
		&b.PerformerID,
		&b.ServiceID,
		&b.EventDate,
		&b.DurationHours,
		&b.VenueAddress,
		&b.GuestCount,
		&b.SpecialRequirements,
		&b.BaseAmount,
		&b.ReferralPercent,
		&b.ReferralAmount,
		&b.DepositPercent,
		&b.DepositAmount,
		&b.TotalAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.CancellationReview,
		&b.CancellationRequestedBy,
		&b.CancellationRequestedAt,
		&b.StatusReason,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.ClientID,
		booking.PerformerID,
		booking.ServiceID,
		booking.EventDate,
		booking.DurationHours,
		booking.VenueAddress,
		booking.GuestCount,
		booking.SpecialRequirements,
		booking.BaseAmount,
		booking.ReferralPercent,
		booking.ReferralAmount,
		booking.DepositPercent,
		booking.DepositAmount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.CancellationReview,
		booking.CancellationRequestedBy,
		booking.CancellationRequestedAt,
		booking.StatusReason,
		booking.Version,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
			zap.String("client_id", booking.ClientID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference = $1`, reference)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, arg any) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking",
			zap.Error(err),
			zap.Any("key", arg),
		)
		return nil, fmt.Errorf("find booking %v: %w", arg, err)
	}
	return booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET event_date = $2, duration_hours = $3, venue_address = $4, guest_count = $5,
		    special_requirements = $6, base_amount = $7, referral_percent = $8, referral_amount = $9,
		    deposit_percent = $10, deposit_amount = $11, total_amount = $12, status = $13,
		    payment_status = $14, cancellation_review = $15, cancellation_requested_by = $16,
		    cancellation_requested_at = $17, status_reason = $18, version = $19, updated_at = $20
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.EventDate,
		booking.DurationHours,
		booking.VenueAddress,
		booking.GuestCount,
		booking.SpecialRequirements,
		booking.BaseAmount,
		booking.ReferralPercent,
		booking.ReferralAmount,
		booking.DepositPercent,
		booking.DepositAmount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.CancellationReview,
		booking.CancellationRequestedBy,
		booking.CancellationRequestedAt,
		booking.StatusReason,
		booking.Version,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("update booking %s: %w", booking.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update booking %s: no rows affected", booking.ID)
	}

	return nil
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]*entity.Booking, int64, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.ClientID != uuid.Nil {
		add("client_id = $%d", filter.ClientID)
	}
	if filter.PerformerID != uuid.Nil {
		add("performer_id = $%d", filter.PerformerID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", statuses)
	}
	if filter.CancellationReview {
		where = append(where, "cancellation_review")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+clause, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, clause, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.Size(), filter.Offset)...)
	if err != nil {
		r.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.Int("limit", filter.Size()),
			zap.Int("offset", filter.Offset),
		)
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, total, rows.Err()
}

func (r *bookingRepository) FindDueToStart(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM bookings
		WHERE status = $1 AND event_date <= $2
		ORDER BY event_date
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, entity.BookingStatusConfirmed, now, limit)
	if err != nil {
		r.log.Error("Failed to find bookings due to start", zap.Error(err))
		return nil, fmt.Errorf("find bookings due to start: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *bookingRepository) NextReference(ctx context.Context, at time.Time) (string, error) {
	day := utils.ReferenceDay(at)
	query := `
		INSERT INTO booking_reference_counters (day, last)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last = booking_reference_counters.last + 1
		RETURNING last
	`

	var seq int64
	if err := r.db.QueryRow(ctx, query, day).Scan(&seq); err != nil {
		r.log.Error("Failed to allocate booking reference", zap.Error(err), zap.Time("day", day))
		return "", fmt.Errorf("allocate booking reference: %w", err)
	}
	return utils.FormatBookingReference(day, seq), nil
}

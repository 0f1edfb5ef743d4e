package repository

import (
	"context"
	"errors"
	"fmt"

	"entertainer-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Store is the storage backend behind a Repository.
type Store interface {
	// WithTx runs fn with repositories bound to a single transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx *Repository) error) error
	Ping(ctx context.Context) error
}

type Repository struct {
	User      UserRepository
	Performer PerformerRepository
	Service   ServiceRepository
	Settings  SettingsRepository
	Booking   BookingRepository
	Payment   PaymentRepository
	Vetting   VettingRepository
	Audit     AuditRepository

	Store Store
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.Store.WithTx(ctx, fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.Store.Ping(ctx)
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepositorySet(db, log)
	repo.Store = &pgxStore{db: db, log: log.With(zap.String("repository", "tx"))}
	return repo
}

func newRepositorySet(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(q, log),
		Performer: NewPerformerRepository(q, log),
		Service:   NewServiceRepository(q, log),
		Settings:  NewSettingsRepository(q, log),
		Booking:   NewBookingRepository(q, log),
		Payment:   NewPaymentRepository(q, log),
		Vetting:   NewVettingRepository(q, log),
		Audit:     NewAuditRepository(q, log),
	}
}

type pgxStore struct {
	db  database.PgxIface
	log *zap.Logger
}

func (s *pgxStore) WithTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	repo := newRepositorySet(tx, s.log)
	repo.Store = &boundStore{repo: repo, parent: s}

	if err = fn(repo); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *pgxStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// boundStore joins the transaction that is already open instead of starting a new one.
type boundStore struct {
	repo   *Repository
	parent Store
}

func (s *boundStore) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return fn(s.repo)
}

func (s *boundStore) Ping(ctx context.Context) error {
	return s.parent.Ping(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// Size is the effective page size: 20 unless 1..100 was asked for.
func (p Page) Size() int {
	if p.Limit <= 0 || p.Limit > 100 {
		return 20
	}
	return p.Limit
}

// Package memory is an in-process storage backend with the same transaction
// semantics as the Postgres one: transactions are serialised and roll back on error.
package memory

import (
	"context"
	"slices"
	"sync"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type state struct {
	users      map[uuid.UUID]entity.User
	performers map[uuid.UUID]entity.Performer
	services   map[uuid.UUID]entity.PerformerService
	settings   *entity.PlatformSettings
	bookings   map[uuid.UUID]entity.Booking
	counters   map[string]int64
	payments   map[uuid.UUID]entity.Payment
	apps       map[uuid.UUID]entity.VettingApplication
	audit      []entity.AuditLog
}

func newState() *state {
	return &state{
		users:      make(map[uuid.UUID]entity.User),
		performers: make(map[uuid.UUID]entity.Performer),
		services:   make(map[uuid.UUID]entity.PerformerService),
		bookings:   make(map[uuid.UUID]entity.Booking),
		counters:   make(map[string]int64),
		payments:   make(map[uuid.UUID]entity.Payment),
		apps:       make(map[uuid.UUID]entity.VettingApplication),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:      cloneMap(s.users),
		performers: cloneMap(s.performers),
		services:   cloneMap(s.services),
		bookings:   cloneMap(s.bookings),
		counters:   cloneMap(s.counters),
		payments:   cloneMap(s.payments),
		apps:       make(map[uuid.UUID]entity.VettingApplication, len(s.apps)),
		audit:      slices.Clone(s.audit),
	}
	for id, a := range s.apps {
		a.PortfolioLinks = slices.Clone(a.PortfolioLinks)
		c.apps[id] = a
	}
	if s.settings != nil {
		cp := *s.settings
		c.settings = &cp
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Store holds all rows in memory.
type Store struct {
	mu   sync.Mutex
	data *state
	log  *zap.Logger

	auditHook func(*entity.AuditLog) error
}

func New(log *zap.Logger) *Store {
	return &Store{
		data: newState(),
		log:  log.With(zap.String("repository", "memory")),
	}
}

// Repository returns repositories that each take the store lock per call.
func (s *Store) Repository() *repository.Repository {
	return s.repositorySet(false)
}

func (s *Store) repositorySet(inTx bool) *repository.Repository {
	b := base{store: s, inTx: inTx}
	repo := &repository.Repository{
		User:      &userRepo{b},
		Performer: &performerRepo{b},
		Service:   &serviceRepo{b},
		Settings:  &settingsRepo{b},
		Booking:   &bookingRepo{b},
		Payment:   &paymentRepo{b},
		Vetting:   &vettingRepo{b},
		Audit:     &auditRepo{b},
	}
	if inTx {
		repo.Store = &boundStore{repo: repo}
	} else {
		repo.Store = s
	}
	return repo
}

// WithTx holds the store lock for the whole of fn and restores the prior
// state if fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repositorySet(true)); err != nil {
		s.data = snapshot
		s.log.Debug("Transaction rolled back", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// FailAudit makes every audit append return err until called with nil.
func (s *Store) FailAudit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.auditHook = nil
		return
	}
	s.auditHook = func(*entity.AuditLog) error { return err }
}

func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

func (s *Store) PutPerformer(p entity.Performer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.performers[p.ID] = p
}

func (s *Store) PutService(svc entity.PerformerService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.services[svc.ID] = svc
}

func (s *Store) PutBooking(b entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.bookings[b.ID] = b
}

type boundStore struct {
	repo *repository.Repository
}

func (b *boundStore) WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	return fn(b.repo)
}

func (b *boundStore) Ping(ctx context.Context) error { return ctx.Err() }

type base struct {
	store *Store
	inTx  bool
}

// with runs fn against the live state, locking unless the caller already holds the transaction.
func (b base) with(fn func(d *state) error) error {
	if !b.inTx {
		b.store.mu.Lock()
		defer b.store.mu.Unlock()
	}
	return fn(b.store.data)
}

package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/pkg/utils"

	"github.com/google/uuid"
)

type userRepo struct{ base }

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var out *entity.User
	err := r.with(func(d *state) error {
		if u, ok := d.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

type performerRepo struct{ base }

func (r *performerRepo) Create(ctx context.Context, p *entity.Performer) error {
	return r.with(func(d *state) error {
		for _, existing := range d.performers {
			if existing.UserID == p.UserID {
				return errUnique("performers_user_id_key")
			}
		}
		d.performers[p.ID] = *p
		return nil
	})
}

func (r *performerRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Performer, error) {
	var out *entity.Performer
	err := r.with(func(d *state) error {
		if p, ok := d.performers[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *performerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Performer, error) {
	var out *entity.Performer
	err := r.with(func(d *state) error {
		for _, p := range d.performers {
			if p.UserID == userID {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

type serviceRepo struct{ base }

func (r *serviceRepo) Create(ctx context.Context, svc *entity.PerformerService) error {
	return r.with(func(d *state) error {
		d.services[svc.ID] = *svc
		return nil
	})
}

func (r *serviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PerformerService, error) {
	var out *entity.PerformerService
	err := r.with(func(d *state) error {
		if s, ok := d.services[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *serviceRepo) ListByPerformer(ctx context.Context, performerID uuid.UUID, activeOnly bool) ([]*entity.PerformerService, error) {
	var out []*entity.PerformerService
	err := r.with(func(d *state) error {
		for _, s := range d.services {
			if s.PerformerID != performerID || (activeOnly && !s.Active) {
				continue
			}
			s := s
			out = append(out, &s)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.PerformerService) int { return strings.Compare(a.Name, b.Name) })
	return out, err
}

type settingsRepo struct{ base }

func (r *settingsRepo) Get(ctx context.Context) (*entity.PlatformSettings, error) {
	var out *entity.PlatformSettings
	err := r.with(func(d *state) error {
		if d.settings != nil {
			cp := *d.settings
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *settingsRepo) Save(ctx context.Context, s *entity.PlatformSettings) error {
	return r.with(func(d *state) error {
		cp := *s
		d.settings = &cp
		return nil
	})
}

type bookingRepo struct{ base }

func (r *bookingRepo) Create(ctx context.Context, b *entity.Booking) error {
	return r.with(func(d *state) error {
		for _, existing := range d.bookings {
			if existing.Reference == b.Reference {
				return errUnique("bookings_reference_key")
			}
		}
		d.bookings[b.ID] = *b
		return nil
	})
}

func (r *bookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var out *entity.Booking
	err := r.with(func(d *state) error {
		if b, ok := d.bookings[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

// FindByIDForUpdate needs no row lock: transactions already run one at a time.
func (r *bookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *bookingRepo) FindByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	var out *entity.Booking
	err := r.with(func(d *state) error {
		for _, b := range d.bookings {
			if b.Reference == reference {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *bookingRepo) Update(ctx context.Context, b *entity.Booking) error {
	return r.with(func(d *state) error {
		if _, ok := d.bookings[b.ID]; !ok {
			return errNotFound("booking", b.ID)
		}
		d.bookings[b.ID] = *b
		return nil
	})
}

func (r *bookingRepo) List(ctx context.Context, f repository.BookingFilter) ([]*entity.Booking, int64, error) {
	var all []*entity.Booking
	err := r.with(func(d *state) error {
		for _, b := range d.bookings {
			if f.ClientID != uuid.Nil && b.ClientID != f.ClientID {
				continue
			}
			if f.PerformerID != uuid.Nil && b.PerformerID != f.PerformerID {
				continue
			}
			if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
				continue
			}
			if f.CancellationReview && !b.CancellationReview {
				continue
			}
			b := b
			all = append(all, &b)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	slices.SortFunc(all, func(a, b *entity.Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return paginate(all, f.Page), int64(len(all)), nil
}

func (r *bookingRepo) FindDueToStart(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var due []entity.Booking
	err := r.with(func(d *state) error {
		for _, b := range d.bookings {
			if b.Status == entity.BookingStatusConfirmed && !b.EventDate.After(now) {
				due = append(due, b)
			}
		}
		return nil
	})
	slices.SortFunc(due, func(a, b entity.Booking) int { return a.EventDate.Compare(b.EventDate) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	ids := make([]uuid.UUID, len(due))
	for i, b := range due {
		ids[i] = b.ID
	}
	return ids, err
}

func (r *bookingRepo) NextReference(ctx context.Context, at time.Time) (string, error) {
	day := utils.ReferenceDay(at)
	key := day.Format(time.DateOnly)

	var seq int64
	err := r.with(func(d *state) error {
		d.counters[key]++
		seq = d.counters[key]
		return nil
	})
	return utils.FormatBookingReference(day, seq), err
}

type paymentRepo struct{ base }

func (r *paymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	return r.with(func(d *state) error {
		if p.Status == entity.PaymentStatusPending {
			for _, existing := range d.payments {
				if existing.BookingID == p.BookingID && existing.Status == entity.PaymentStatusPending {
					return repository.ErrDuplicatePending
				}
			}
		}
		d.payments[p.ID] = *p
		return nil
	})
}

func (r *paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var out *entity.Payment
	err := r.with(func(d *state) error {
		if p, ok := d.payments[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *paymentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *paymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	return r.with(func(d *state) error {
		if _, ok := d.payments[p.ID]; !ok {
			return errNotFound("payment", p.ID)
		}
		d.payments[p.ID] = *p
		return nil
	})
}

func (r *paymentRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	var out []*entity.Payment
	err := r.with(func(d *state) error {
		for _, p := range d.payments {
			if p.BookingID == bookingID {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sortPayments(out)
	return out, err
}

func (r *paymentRepo) HasPending(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var found bool
	err := r.with(func(d *state) error {
		for _, p := range d.payments {
			if p.BookingID == bookingID && p.Status == entity.PaymentStatusPending {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *paymentRepo) List(ctx context.Context, f repository.PaymentFilter) ([]*entity.Payment, int64, error) {
	var all []*entity.Payment
	err := r.with(func(d *state) error {
		for _, p := range d.payments {
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.Flagged && p.ReviewFlag == entity.ReviewFlagNone {
				continue
			}
			p := p
			all = append(all, &p)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortPayments(all)
	return paginate(all, f.Page), int64(len(all)), nil
}

func sortPayments(ps []*entity.Payment) {
	slices.SortFunc(ps, func(a, b *entity.Payment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

type vettingRepo struct{ base }

func (r *vettingRepo) Create(ctx context.Context, a *entity.VettingApplication) error {
	return r.with(func(d *state) error {
		if a.Status == entity.VettingStatusPending {
			for _, existing := range d.apps {
				if existing.ApplicantID == a.ApplicantID && existing.Status == entity.VettingStatusPending {
					return errUnique("vetting_one_pending_per_applicant")
				}
			}
		}
		cp := *a
		cp.PortfolioLinks = slices.Clone(a.PortfolioLinks)
		d.apps[a.ID] = cp
		return nil
	})
}

func (r *vettingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.VettingApplication, error) {
	var out *entity.VettingApplication
	err := r.with(func(d *state) error {
		if a, ok := d.apps[id]; ok {
			a.PortfolioLinks = slices.Clone(a.PortfolioLinks)
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *vettingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.VettingApplication, error) {
	return r.FindByID(ctx, id)
}

func (r *vettingRepo) Update(ctx context.Context, a *entity.VettingApplication) error {
	return r.with(func(d *state) error {
		if _, ok := d.apps[a.ID]; !ok {
			return errNotFound("vetting application", a.ID)
		}
		cp := *a
		cp.PortfolioLinks = slices.Clone(a.PortfolioLinks)
		d.apps[a.ID] = cp
		return nil
	})
}

func (r *vettingRepo) HasPending(ctx context.Context, applicantID uuid.UUID) (bool, error) {
	var found bool
	err := r.with(func(d *state) error {
		for _, a := range d.apps {
			if a.ApplicantID == applicantID && a.Status == entity.VettingStatusPending {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *vettingRepo) List(ctx context.Context, status entity.VettingStatus, page repository.Page) ([]*entity.VettingApplication, int64, error) {
	var all []*entity.VettingApplication
	err := r.with(func(d *state) error {
		for _, a := range d.apps {
			if status != "" && a.Status != status {
				continue
			}
			a := a
			a.PortfolioLinks = slices.Clone(a.PortfolioLinks)
			all = append(all, &a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b *entity.VettingApplication) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return paginate(all, page), int64(len(all)), nil
}

type auditRepo struct{ base }

func (r *auditRepo) Append(ctx context.Context, e *entity.AuditLog) error {
	return r.with(func(d *state) error {
		if hook := r.store.auditHook; hook != nil {
			if err := hook(e); err != nil {
				return err
			}
		}
		d.audit = append(d.audit, *e)
		return nil
	})
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	err := r.with(func(d *state) error {
		for _, e := range d.audit {
			if e.EntityID == entityID {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

func paginate[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return nil
	}
	end := min(p.Offset+p.Size(), len(items))
	return items[p.Offset:end]
}

// Package access decides which principal may perform which operation.
package access

import (
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"

	"github.com/google/uuid"
)

// RoleSystem is used by background jobs such as the start sweep.
const RoleSystem entity.Role = "system"

type Principal struct {
	UserID uuid.UUID
	Role   entity.Role
}

// System is the principal background jobs act as.
var System = Principal{Role: RoleSystem}

func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

// Ownership names the users tied to the resource being accessed. Zero values mean "not applicable".
type Ownership struct {
	ClientID        uuid.UUID
	PerformerUserID uuid.UUID
}

type Operation string

const (
	OpViewBooking       Operation = "booking:view"
	OpListAllBookings   Operation = "booking:list_all"
	OpCreateBooking     Operation = "booking:create"
	OpEditBooking       Operation = "booking:edit"
	OpRequestQuote      Operation = "booking:request_quote"
	OpQuoteBooking      Operation = "booking:quote"
	OpRejectBooking     Operation = "booking:reject"
	OpConfirmBooking    Operation = "booking:confirm"
	OpStartBooking      Operation = "booking:start"
	OpCompleteBooking   Operation = "booking:complete"
	OpCancelBooking     Operation = "booking:cancel"
	OpSubmitPayment     Operation = "payment:submit"
	OpViewPayments      Operation = "payment:view"
	OpVerifyPayment     Operation = "payment:verify"
	OpSubmitApplication Operation = "vetting:submit"
	OpReviewApplication Operation = "vetting:review"
	OpManageService     Operation = "catalog:manage"
	OpManageSettings    Operation = "settings:manage"
	OpViewAudit         Operation = "audit:view"
)

type rule struct {
	roles        map[entity.Role]bool
	client       bool // client must own the resource
	performer    bool // performer must own the resource
	anyClient    bool
	anyPerformer bool
}

func roles(rs ...entity.Role) map[entity.Role]bool {
	m := make(map[entity.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

var adminOnly = rule{roles: roles(entity.RoleAdmin)}

var policy = map[Operation]rule{
	OpViewBooking:       {roles: roles(entity.RoleAdmin), client: true, performer: true},
	OpListAllBookings:   adminOnly,
	OpCreateBooking:     {anyClient: true},
	OpEditBooking:       {roles: roles(entity.RoleAdmin), client: true},
	OpRequestQuote:      {roles: roles(entity.RoleAdmin), client: true},
	OpQuoteBooking:      adminOnly,
	OpRejectBooking:     adminOnly,
	OpConfirmBooking:    {roles: roles(entity.RoleAdmin, RoleSystem)},
	OpStartBooking:      {roles: roles(entity.RoleAdmin, RoleSystem)},
	OpCompleteBooking:   adminOnly,
	OpCancelBooking:     {roles: roles(entity.RoleAdmin), client: true},
	OpSubmitPayment:     {roles: roles(entity.RoleAdmin), client: true},
	OpViewPayments:      {roles: roles(entity.RoleAdmin), client: true},
	OpVerifyPayment:     adminOnly,
	OpSubmitApplication: {anyClient: true, anyPerformer: true},
	OpReviewApplication: adminOnly,
	OpManageService:     {roles: roles(entity.RoleAdmin), performer: true},
	OpManageSettings:    adminOnly,
	OpViewAudit:         adminOnly,
}

// Can reports whether p may perform op on a resource with the given ownership.
func Can(p Principal, op Operation, own Ownership) bool {
	r, ok := policy[op]
	if !ok {
		return false
	}
	if r.roles[p.Role] {
		return true
	}
	if p.UserID == uuid.Nil {
		return false
	}

	switch p.Role {
	case entity.RoleClient:
		return r.anyClient || (r.client && own.ClientID == p.UserID)
	case entity.RolePerformer:
		return r.anyPerformer || (r.performer && own.PerformerUserID == p.UserID)
	}
	return false
}

// Check is Can returning a Forbidden error.
func Check(p Principal, op Operation, own Ownership) error {
	if Can(p, op, own) {
		return nil
	}
	return domain.NewForbidden("not allowed to " + string(op))
}

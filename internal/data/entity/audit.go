package entity

import (
	"github.com/google/uuid"
)

type AuditEntity string

const (
	AuditEntityBooking     AuditEntity = "booking"
	AuditEntityPayment     AuditEntity = "payment"
	AuditEntityApplication AuditEntity = "vetting_application"
	AuditEntitySettings    AuditEntity = "platform_settings"
)

// AuditLog is append-only.
type AuditLog struct {
	BaseSimple
	EntityType AuditEntity    `db:"entity_type"`
	EntityID   uuid.UUID      `db:"entity_id"`
	ActorID    *uuid.UUID     `db:"actor_id"`
	Action     string         `db:"action"`
	FromState  string         `db:"from_state"`
	ToState    string         `db:"to_state"`
	Reason     string         `db:"reason"`
	Metadata   map[string]any `db:"metadata"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type VettingStatus string

const (
	VettingStatusPending  VettingStatus = "pending"
	VettingStatusApproved VettingStatus = "approved"
	VettingStatusRejected VettingStatus = "rejected"
)

type VettingApplication struct {
	BaseNoDelete
	ApplicantID    uuid.UUID     `db:"applicant_id"`
	StageName      string        `db:"stage_name"`
	Bio            string        `db:"bio"`
	Category       string        `db:"category"`
	ContactPhone   string        `db:"contact_phone"`
	PortfolioLinks []string      `db:"portfolio_links"`
	Status         VettingStatus `db:"status"`
	ReviewerID     *uuid.UUID    `db:"reviewer_id"`
	ReviewNotes    string        `db:"review_notes"`
	ReviewedAt     *time.Time    `db:"reviewed_at"`
	PerformerID    *uuid.UUID    `db:"performer_id"`
}

package response

import (
	"time"

	"entertainer-booking/internal/data/entity"
)

type ApplicationResponse struct {
	ID             string     `json:"id"`
	ApplicantID    string     `json:"applicant_id"`
	StageName      string     `json:"stage_name"`
	Bio            string     `json:"bio,omitempty"`
	Category       string     `json:"category"`
	ContactPhone   string     `json:"contact_phone,omitempty"`
	PortfolioLinks []string   `json:"portfolio_links"`
	Status         string     `json:"status"`
	ReviewNotes    string     `json:"review_notes,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	PerformerID    string     `json:"performer_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewApplicationResponse(a *entity.VettingApplication) *ApplicationResponse {
	r := &ApplicationResponse{
		ID:             a.ID.String(),
		ApplicantID:    a.ApplicantID.String(),
		StageName:      a.StageName,
		Bio:            a.Bio,
		Category:       a.Category,
		ContactPhone:   a.ContactPhone,
		PortfolioLinks: a.PortfolioLinks,
		Status:         string(a.Status),
		ReviewNotes:    a.ReviewNotes,
		ReviewedAt:     a.ReviewedAt,
		CreatedAt:      a.CreatedAt,
	}
	if r.PortfolioLinks == nil {
		r.PortfolioLinks = []string{}
	}
	if a.PerformerID != nil {
		r.PerformerID = a.PerformerID.String()
	}
	return r
}

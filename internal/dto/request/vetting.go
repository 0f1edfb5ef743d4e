package request

type VettingApplicationRequest struct {
	StageName      string   `json:"stage_name" validate:"required,min=2,max=200"`
	Bio            string   `json:"bio" validate:"max=5000"`
	Category       string   `json:"category" validate:"required,max=100"`
	ContactPhone   string   `json:"contact_phone" validate:"omitempty,max=30"`
	PortfolioLinks []string `json:"portfolio_links" validate:"max=10,dive,url"`
}

type ReviewApplicationRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

package domain

import (
	"time"
)

// PlanKind distinguishes the two write paths of the assistant.
type PlanKind string

const (
	// PlanKindAccount is a request to open a new account.
	PlanKindAccount PlanKind = "account"
	// PlanKindPayment is a scheduled payment against an account.
	PlanKindPayment PlanKind = "payment"
)

// Plan is a record written by the assistant on behalf of a verified user.
// At most one plan exists per kind, user, user name and account type.
type Plan struct {
	ID          string    `json:"id"`
	Kind        PlanKind  `json:"kind"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	AccountType string    `json:"account_type"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Describe returns a one-line human description of the plan.
func (p *Plan) Describe() string {
	return p.AccountType + " Account for " + p.UserName +
		" opened " + p.StartDate + " with next payment scheduled for " + p.EndDate
}

// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/bankdialog/internal/domain"
)

// Repository defines the keyed lookups and inserts the assistant performs.
// None of the lookups support ranges or aggregation.
type Repository interface {
	// ListAccounts returns every account held under a user name.
	ListAccounts(ctx context.Context, userName string) ([]*domain.Account, error)

	// ListPlans returns plans of a kind written for a user and user name.
	// An empty accountType matches every account type.
	ListPlans(ctx context.Context, kind domain.PlanKind, userID, userName, accountType string) ([]*domain.Plan, error)

	// FindProfilesByPhone returns profiles indexed under a phone number.
	FindProfilesByPhone(ctx context.Context, phone string) ([]*domain.Profile, error)

	// InsertPlan writes a new plan. It fails with ErrDuplicate when a plan with
	// the same kind, user, user name and account type already exists.
	InsertPlan(ctx context.Context, plan *domain.Plan) error

	// UpsertAccount creates or replaces an account record.
	UpsertAccount(ctx context.Context, account *domain.Account) error

	// UpsertProfile creates or replaces a profile record.
	UpsertProfile(ctx context.Context, profile *domain.Profile) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

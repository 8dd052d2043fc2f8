package dialog

import (
	"context"
	"strings"
	"sync"

	"github.com/ashureev/bankdialog/internal/domain"
	"github.com/ashureev/bankdialog/internal/store"
)

// fakeStore is an in-memory Store keyed the same way as the SQLite store.
type fakeStore struct {
	mu       sync.Mutex
	accounts []*domain.Account
	plans    []*domain.Plan
	profiles []*domain.Profile

	listErr   error
	plansErr  error
	phoneErr  error
	insertErr error

	inserts     int
	phoneLookup []string
}

func (f *fakeStore) ListAccounts(_ context.Context, userName string) ([]*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Account
	for _, a := range f.accounts {
		if strings.EqualFold(a.UserName, userName) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPlans(_ context.Context, kind domain.PlanKind, userID, userName, accountType string) ([]*domain.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.plansErr != nil {
		return nil, f.plansErr
	}
	var out []*domain.Plan
	for _, p := range f.plans {
		if p.Kind != kind || p.UserID != userID || !strings.EqualFold(p.UserName, userName) {
			continue
		}
		if accountType != "" && !strings.EqualFold(p.AccountType, accountType) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) FindProfilesByPhone(_ context.Context, phone string) ([]*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phoneLookup = append(f.phoneLookup, phone)
	if f.phoneErr != nil {
		return nil, f.phoneErr
	}
	var out []*domain.Profile
	for _, p := range f.profiles {
		if p.Phone == phone {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertPlan(_ context.Context, plan *domain.Plan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, p := range f.plans {
		if p.Kind == plan.Kind && p.UserID == plan.UserID &&
			strings.EqualFold(p.UserName, plan.UserName) && strings.EqualFold(p.AccountType, plan.AccountType) {
			return store.ErrDuplicate
		}
	}
	f.inserts++
	f.plans = append(f.plans, plan)
	return nil
}

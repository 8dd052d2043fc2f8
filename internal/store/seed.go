package store

import (
	"context"
	"fmt"
	"os"

	"github.com/ashureev/bankdialog/internal/domain"
	"gopkg.in/yaml.v3"
)

// Fixtures is the on-disk YAML layout used to seed a development database.
type Fixtures struct {
	Accounts []*domain.Account `yaml:"accounts"`
	Profiles []*domain.Profile `yaml:"profiles"`
}

// LoadFixtures parses a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return &f, nil
}

// Seed upserts every fixture record and returns how many accounts and profiles were written.
func Seed(ctx context.Context, repo Repository, f *Fixtures) (int, int, error) {
	if f == nil {
		return 0, 0, nil
	}
	for _, a := range f.Accounts {
		if a.UserName == "" || a.AccountType == "" {
			return 0, 0, fmt.Errorf("account fixture requires user_name and account_type")
		}
		if err := repo.UpsertAccount(ctx, a); err != nil {
			return 0, 0, fmt.Errorf("seed account %s/%s: %w", a.UserName, a.AccountType, err)
		}
	}
	for _, p := range f.Profiles {
		if p.UserID == "" || p.Phone == "" {
			return 0, 0, fmt.Errorf("profile fixture requires user_id and phone")
		}
		if err := repo.UpsertProfile(ctx, p); err != nil {
			return 0, 0, fmt.Errorf("seed profile %s: %w", p.UserID, err)
		}
	}
	return len(f.Accounts), len(f.Profiles), nil
}

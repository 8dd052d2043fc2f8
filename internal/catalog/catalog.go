// Package catalog holds the bank-specific wording and option lists the assistant offers.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the set of account types, follow-up actions and offer terms.
type Catalog struct {
	BankName     string    `yaml:"bank_name"`
	SupportPhone string    `yaml:"support_phone"`
	AccountTypes []string  `yaml:"account_types"`
	Actions      []string  `yaml:"actions"`
	Refinance    Refinance `yaml:"refinance"`
}

// Refinance describes the refinance offer appended to loan overviews.
type Refinance struct {
	RateDiscount decimal.Decimal `yaml:"rate_discount"`
	TermYears    int             `yaml:"term_years"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the catalog can drive every prompt.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.BankName) == "" {
		return errors.New("catalog: bank_name cannot be empty")
	}
	if len(c.AccountTypes) == 0 {
		return errors.New("catalog: account_types cannot be empty")
	}
	if len(c.Actions) == 0 {
		return errors.New("catalog: actions cannot be empty")
	}
	if c.Refinance.TermYears <= 0 {
		return errors.New("catalog: refinance.term_years must be > 0")
	}
	return nil
}

// IsAccountType reports whether name matches a known account type, ignoring case.
func (c *Catalog) IsAccountType(name string) bool {
	for _, t := range c.AccountTypes {
		if strings.EqualFold(t, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

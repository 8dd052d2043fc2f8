// Package domain contains core domain types for the banking assistant.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Account is an existing account held by a customer, keyed by user name and account type.
type Account struct {
	UserName       string          `json:"user_name" yaml:"user_name"`
	AccountType    string          `json:"account_type" yaml:"account_type"`
	Balance        decimal.Decimal `json:"balance" yaml:"balance"`
	DueDate        string          `json:"due_date" yaml:"due_date"`
	PendingPayment bool            `json:"pending_payment" yaml:"pending_payment"`
	PaymentAmount  decimal.Decimal `json:"payment_amount" yaml:"payment_amount"`

	// Loan-only terms. Zero for deposit accounts.
	LoanAmount   decimal.Decimal `json:"loan_amount,omitempty" yaml:"loan_amount"`
	LoanInterest decimal.Decimal `json:"loan_interest,omitempty" yaml:"loan_interest"`
	LoanYears    int             `json:"loan_years,omitempty" yaml:"loan_years"`
}

// IsLoan reports whether the account is a loan-type account.
func (a *Account) IsLoan() bool {
	return IsLoanType(a.AccountType)
}

// PercentPaid returns how much of the loan principal has been repaid, in percent.
// Returns zero when no principal is recorded.
func (a *Account) PercentPaid() decimal.Decimal {
	if a.LoanAmount.IsZero() {
		return decimal.Zero
	}
	return a.LoanAmount.Sub(a.Balance).Div(a.LoanAmount).Mul(decimal.NewFromInt(100))
}

// IsLoanType reports whether an account type name refers to a loan.
func IsLoanType(accountType string) bool {
	switch strings.ToLower(strings.TrimSpace(accountType)) {
	case "loan", "loans":
		return true
	default:
		return false
	}
}

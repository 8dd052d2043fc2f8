package dialog

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	dateLayout   = "2006-01-02"
	minWeekCount = 1
	maxWeekCount = 52
)

// applyValidationOrder is the priority in which plan slots are checked. The
// first violation wins, and a failed user-name check skips every later check.
var applyValidationOrder = []string{SlotUserName, SlotStartDate, SlotNumOfWeeks}

// ValidationResult is the outcome of validating a turn's slots.
type ValidationResult struct {
	Valid        bool
	ViolatedSlot string
	Message      string
}

func violation(slot, msg string) ValidationResult {
	return ValidationResult{Valid: false, ViolatedSlot: slot, Message: msg}
}

// Validator checks individual slot values against the bank's rules.
type Validator struct {
	accounts AccountLister
	loc      *time.Location
	now      func() time.Time
}

// NewValidator creates a validator evaluating dates in loc.
func NewValidator(accounts AccountLister, loc *time.Location, now func() time.Time) *Validator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{accounts: accounts, loc: loc, now: now}
}

// UserNameExists reports whether at least one account is held under name.
func (v *Validator) UserNameExists(ctx context.Context, name string) (bool, error) {
	accounts, err := v.accounts.ListAccounts(ctx, name)
	if err != nil {
		return false, fmt.Errorf("look up user name: %w", err)
	}
	return len(accounts) > 0, nil
}

// IsValidDate reports whether s is an exact YYYY-MM-DD date that is today or
// later in the validator's local time.
func (v *Validator) IsValidDate(s string) bool {
	date, err := time.ParseInLocation(dateLayout, s, v.loc)
	if err != nil {
		return false
	}
	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	return !date.Before(today)
}

// AddWeeks returns date plus n weeks, using local calendar days.
func (v *Validator) AddWeeks(date string, n int) (string, error) {
	return AddWeeks(date, n, v.loc)
}

// AddWeeks returns date plus n weeks in YYYY-MM-DD form. Calendar arithmetic
// in loc keeps the result on a date boundary across daylight-saving changes.
func AddWeeks(date string, n int, loc *time.Location) (string, error) {
	t, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 7*n).Format(dateLayout), nil
}

// IsValidWeekCount reports whether s is an integer in [1, 52].
func IsValidWeekCount(s string) bool {
	_, ok := parseWeekCount(s)
	return ok
}

func parseWeekCount(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, n >= minWeekCount && n <= maxWeekCount
}

// ValidateApplyInputs checks the plan slots in applyValidationOrder and
// returns the first violation. Only supplied dates and week counts are
// checked. A known user name is recorded in the returned session.
func (v *Validator) ValidateApplyInputs(ctx context.Context, session Session, slots Slots) (ValidationResult, Session, error) {
	checks := map[string]func() (ValidationResult, error){
		SlotUserName: func() (ValidationResult, error) {
			name := slots.Value(SlotUserName)
			ok, err := v.UserNameExists(ctx, name)
			if err != nil {
				return ValidationResult{}, err
			}
			if !ok {
				return violation(SlotUserName, noAccountsMessage(name)), nil
			}
			session = session.With(AttrUserName, name)
			return ValidationResult{Valid: true}, nil
		},
		SlotStartDate: func() (ValidationResult, error) {
			date := slots.Value(SlotStartDate)
			if date == "" || v.IsValidDate(date) {
				return ValidationResult{Valid: true}, nil
			}
			return violation(SlotStartDate, invalidDateMessage(date)), nil
		},
		SlotNumOfWeeks: func() (ValidationResult, error) {
			weeks := slots.Value(SlotNumOfWeeks)
			if weeks == "" || IsValidWeekCount(weeks) {
				return ValidationResult{Valid: true}, nil
			}
			return violation(SlotNumOfWeeks, invalidWeekCountMessage(weeks)), nil
		},
	}

	for _, slot := range applyValidationOrder {
		result, err := checks[slot]()
		if err != nil {
			return ValidationResult{}, session, err
		}
		if !result.Valid {
			return result, session, nil
		}
	}
	return ValidationResult{Valid: true}, session, nil
}

package dialog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ashureev/bankdialog/internal/catalog"
	"github.com/ashureev/bankdialog/internal/channel"
	"github.com/ashureev/bankdialog/internal/domain"
)

var testLoc = time.FixedZone("PDT", -7*60*60)

// fixedNow is 2030-06-15 10:00 local time.
func fixedNow() time.Time {
	return time.Date(2030, time.June, 15, 10, 0, 0, 0, testLoc)
}

func newTestEngine(s *fakeStore) *Engine {
	return NewEngine(s, catalog.Default(), Options{
		StubPin:        "1234",
		StubUserID:     "pendingUser",
		MaxPinAttempts: 3,
		Location:       testLoc,
		Now:            fixedNow,
	})
}

func seededStore() *fakeStore {
	return &fakeStore{
		accounts: []*domain.Account{
			{
				UserName:      "Jdoe",
				AccountType:   "Checking",
				Balance:       decimal.RequireFromString("1250.5"),
				DueDate:       "2030-07-01",
				PaymentAmount: decimal.Zero,
			},
			{
				UserName:     "Jdoe",
				AccountType:  "Loan",
				Balance:      decimal.RequireFromString("7500"),
				DueDate:      "2030-07-10",
				LoanAmount:   decimal.RequireFromString("10000"),
				LoanInterest: decimal.RequireFromString("4.5"),
				LoanYears:    30,
			},
		},
	}
}

func verifiedSession(user string) Session {
	return NewSession(map[string]string{
		AttrIdentityVerified: "true",
		AttrLoggedInUser:     user,
	})
}

func slotsOf(kv ...string) Slots {
	s := EmptySlots(planSlots...)
	for i := 0; i+1 < len(kv); i += 2 {
		s = s.With(kv[i], kv[i+1])
	}
	return s
}

func consoleChannel() channel.Context {
	return channel.Context{Kind: channel.KindConsole, ExternalUserID: "console-user"}
}

func telephoneChannel(phone string) channel.Context {
	return channel.Context{Kind: channel.KindTelephone, Phone: phone}
}

package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ashureev/bankdialog/internal/domain"
)

// reportStatus answers the overview and account-listing intents. The
// overview also offers a refinance on loan accounts.
func (e *Engine) reportStatus(ctx context.Context, intent Intent, turn Turn, includeUpsell bool) Decision {
	session := turn.Session
	slots := turn.Slots.Clone()
	if name := session.Get(AttrUserName); name != "" {
		slots = slots.With(SlotUserName, name)
	}
	userName := slots.Value(SlotUserName)
	if userName == "" {
		return ElicitSlot(session, intent, slots, SlotUserName, PlainText(confirmUserMessage), nil).
			at(StageAwaitingUserName)
	}

	accounts, err := e.store.ListAccounts(ctx, userName)
	if err != nil {
		slog.Error("Failed to list accounts", "intent", intent, "error", err)
		return e.fallback(session)
	}
	if len(accounts) == 0 {
		return ElicitSlot(session.Without(AttrUserName), intent, EmptySlots(SlotUserName), SlotUserName,
			PlainText(noAccountsMessage(userName)), nil).at(StageAwaitingUserName)
	}

	session = session.With(AttrUserName, userName)
	msg := e.describeAccounts(userName, accounts, includeUpsell) + howElseMessage
	return ElicitIntent(session, PlainText(msg), e.actionsCard(), nil).at(StageClosed)
}

func (e *Engine) describeAccounts(userName string, accounts []*domain.Account, includeUpsell bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for choosing %s, %s. ", e.catalog.BankName, userName)
	plural := ""
	if len(accounts) > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "I see you have %d active Account%s with us. ", len(accounts), plural)

	for _, a := range accounts {
		if !a.IsLoan() {
			fmt.Fprintf(&b, "Your current balance for your %s Account is $%s. ", a.AccountType, money(a.Balance))
			if a.PendingPayment {
				fmt.Fprintf(&b, "You have a pending payment for the amount of $%s. ", money(a.PaymentAmount))
			} else {
				b.WriteString("You currently have no pending payments. ")
			}
		} else {
			fmt.Fprintf(&b, "Your %d-year, $%s at %s%% interest Loan is %s%% paid off with a remaining balance of $%s. ",
				a.LoanYears, money(a.LoanAmount), a.LoanInterest.String(), a.PercentPaid().Round(2).String(), money(a.Balance))
		}

		if includeUpsell && a.IsLoan() {
			b.WriteString(e.refinanceOffer(a))
		} else {
			fmt.Fprintf(&b, "Your next payment due date is %s. ", a.DueDate)
		}
	}
	return b.String()
}

func (e *Engine) refinanceOffer(a *domain.Account) string {
	offer := e.catalog.Refinance
	rate := a.LoanInterest.Sub(offer.RateDiscount)
	return fmt.Sprintf("\n\nWe can offer you a refinance for your remaining $%s balance at %s%% interest over %d years - Please contact your %s client representative if you would like to discuss further %s.",
		money(a.Balance), rate.String(), offer.TermYears, e.catalog.BankName, e.catalog.SupportPhone)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

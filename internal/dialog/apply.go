package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ashureev/bankdialog/internal/domain"
	"github.com/ashureev/bankdialog/internal/store"
)

// planFlow holds what differs between the two write intents. Their dialog
// is otherwise identical.
type planFlow struct {
	intent   Intent
	kind     domain.PlanKind
	ackLead  string
	resumeTo func(plan, userName string) string
	askPlan  string // formatted with the bank name
	askUser  string // formatted with the bank name
	existing func(plan, userName string, p *domain.Plan) string
}

var openAccountFlow = planFlow{
	intent:  IntentOpenAccount,
	kind:    domain.PlanKindAccount,
	ackLead: "Thank you for opening an account. ",
	resumeTo: func(plan, userName string) string {
		return fmt.Sprintf("You have asked to apply for a %s Account under %s's account. When would you like the %s Account to begin? ", plan, userName, plan)
	},
	askPlan: "You have asked to apply for an Account with %s. Would you like to open a Checking, Savings, or Loan Account? ",
	askUser: "You have asked to apply for an Account with %s. Can you please tell us your User Name? ",
	existing: func(plan, userName string, p *domain.Plan) string {
		return fmt.Sprintf("You already have a %s Account under %s. Please see the following: %s.\n\n%s", plan, userName, p.Describe(), followupQuestion)
	},
}

var schedulePaymentFlow = planFlow{
	intent:  IntentMakePayment,
	kind:    domain.PlanKindPayment,
	ackLead: "Thank you for scheduling your upcoming payment. ",
	resumeTo: func(plan, userName string) string {
		return fmt.Sprintf("You have asked to schedule a payment for a %s Account under %s's account. When would you like the payment to occur? ", plan, userName)
	},
	askPlan: "You have asked to schedule a payment for an Account with %s. For which Account would you like to schedule the payment? ",
	askUser: "You have asked to schedule a payment with %s. Can you please tell us your User Name? ",
	existing: func(plan, _ string, p *domain.Plan) string {
		return fmt.Sprintf("You already have a payment schedule for your %s Account. Please see the following: %s.\n\n%s", plan, p.Describe(), followupQuestion)
	},
}

func flowFor(intent Intent) (planFlow, bool) {
	switch intent {
	case IntentOpenAccount:
		return openAccountFlow, true
	case IntentMakePayment:
		return schedulePaymentFlow, true
	default:
		return planFlow{}, false
	}
}

// handlePlan runs one turn of an open-account or schedule-payment dialog.
func (e *Engine) handlePlan(ctx context.Context, flow planFlow, turn Turn) Decision {
	session := turn.Session
	slots := turn.Slots.Clone()

	if !IsVerified(session) {
		return e.verifier.BeginVerification(session, flow.intent, slots.Value(SlotPlanName))
	}

	if name := session.Get(AttrUserName); name != "" {
		slots = slots.With(SlotUserName, name)
	}
	if !slots.Filled(SlotUserName) {
		return ElicitSlot(session, flow.intent, slots, SlotUserName, PlainText(confirmUserMessage), nil).
			at(StageAwaitingUserName)
	}

	if turn.Source == SourceFulfillmentCodeHook {
		return e.fulfillPlan(ctx, flow, session, slots)
	}

	result, session, err := e.validator.ValidateApplyInputs(ctx, session, slots)
	if err != nil {
		slog.Error("Failed to validate plan inputs", "intent", flow.intent, "error", err)
		return e.fallback(turn.Session)
	}
	if !result.Valid {
		return ElicitSlot(session, flow.intent, slots.Cleared(result.ViolatedSlot), result.ViolatedSlot, PlainText(result.Message), nil).
			at(StageAwaitingSlotValidation)
	}
	return Delegate(session, slots).at(StageReadyToDelegate)
}

// resumePlan restarts a plan dialog after a successful verification. Slots
// are reset and the pending account type, if any, is carried over.
func (e *Engine) resumePlan(flow planFlow, session Session, greeting string) Decision {
	slots := EmptySlots(planSlots...)
	plan := session.Get(AttrPlanToApply)
	session = session.Without(AttrIntentBeforeVerification, AttrPlanToApply)
	if plan != "" {
		slots = slots.With(SlotPlanName, plan)
	}

	userName := session.Get(AttrUserName)
	if userName == "" {
		return ElicitSlot(session, flow.intent, slots, SlotUserName, PlainText(greeting+fmt.Sprintf(flow.askUser, e.catalog.BankName)), nil).
			at(StageAwaitingUserName)
	}
	slots = slots.With(SlotUserName, userName)

	if plan != "" {
		return ElicitSlot(session, flow.intent, slots, SlotStartDate, PlainText(greeting+flow.resumeTo(plan, userName)), nil).
			at(StageAwaitingSlotValidation)
	}
	card := NewResponseCard(userName, accountTypesSubTitle, e.catalog.AccountTypes)
	return ElicitSlot(session, flow.intent, slots, SlotPlanName, PlainText(greeting+fmt.Sprintf(flow.askPlan, e.catalog.BankName)), card).
		at(StageAwaitingSlotValidation)
}

// fulfillPlan writes the plan unless one already exists for the same user
// and account type. Store failures end the turn with an acknowledgement.
func (e *Engine) fulfillPlan(ctx context.Context, flow planFlow, session Session, slots Slots) Decision {
	userName := cases.Title(language.Und).String(slots.Value(SlotUserName))
	plan := slots.Value(SlotPlanName)
	startDate := slots.Value(SlotStartDate)
	userID := session.Get(AttrLoggedInUser)

	// The runtime should only fulfill validated slots; anything it lets
	// through is sent back for re-entry.
	switch {
	case !e.catalog.IsAccountType(plan):
		return ElicitSlot(session, flow.intent, slots.Cleared(SlotPlanName), SlotPlanName, PlainText(fmt.Sprintf(flow.askPlan, e.catalog.BankName)),
			NewResponseCard(userName, accountTypesSubTitle, e.catalog.AccountTypes)).at(StageAwaitingSlotValidation)
	case !e.validator.IsValidDate(startDate):
		return ElicitSlot(session, flow.intent, slots.Cleared(SlotStartDate), SlotStartDate, PlainText(invalidDateMessage(startDate)), nil).
			at(StageAwaitingSlotValidation)
	}
	weeks, ok := parseWeekCount(slots.Value(SlotNumOfWeeks))
	if !ok {
		return ElicitSlot(session, flow.intent, slots.Cleared(SlotNumOfWeeks), SlotNumOfWeeks,
			PlainText(invalidWeekCountMessage(slots.Value(SlotNumOfWeeks))), nil).at(StageAwaitingSlotValidation)
	}
	endDate, err := e.validator.AddWeeks(startDate, weeks)
	if err != nil {
		return e.acknowledge(flow, session, err)
	}

	existing, err := e.store.ListPlans(ctx, flow.kind, userID, userName, plan)
	if err != nil {
		return e.acknowledge(flow, session, err)
	}
	if len(existing) > 0 {
		return e.alreadyHave(flow, session, plan, userName, existing[0])
	}

	record := &domain.Plan{
		ID:          uuid.NewString(),
		Kind:        flow.kind,
		UserID:      userID,
		UserName:    userName,
		AccountType: plan,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedAt:   e.now().UTC().Truncate(time.Second),
	}
	if err := e.store.InsertPlan(ctx, record); err != nil {
		if !store.IsConflict(err) {
			return e.acknowledge(flow, session, err)
		}
		// Lost a race with a concurrent turn for the same key.
		existing, lerr := e.store.ListPlans(ctx, flow.kind, userID, userName, plan)
		if lerr != nil || len(existing) == 0 {
			return e.acknowledge(flow, session, err)
		}
		return e.alreadyHave(flow, session, plan, userName, existing[0])
	}

	slog.Info("Plan recorded",
		"intent", flow.intent,
		"plan_id", record.ID,
		"account_type", plan,
		"start_date", startDate,
		"end_date", endDate,
	)
	return Close(session, Fulfilled, nil).at(StageClosed)
}

func (e *Engine) alreadyHave(flow planFlow, session Session, plan, userName string, p *domain.Plan) Decision {
	return ElicitIntent(session, PlainText(flow.existing(plan, userName, p)), e.actionsCard(), nil).at(StageClosed)
}

func (e *Engine) acknowledge(flow planFlow, session Session, err error) Decision {
	slog.Error("Failed to record plan", "intent", flow.intent, "error", err)
	return Close(session, Fulfilled, PlainText(flow.ackLead+followupQuestion)).at(StageClosed)
}

package dialog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/bankdialog/internal/domain"
	"github.com/ashureev/bankdialog/internal/store"
)

func planTurn(intent Intent, session Session, source Source, slots Slots) Turn {
	return Turn{
		IntentName: string(intent),
		Slots:      slots,
		Session:    session,
		Source:     source,
		Channel:    consoleChannel(),
	}
}

func TestOpenAccountWithoutUserName(t *testing.T) {
	e := newTestEngine(seededStore())
	d, err := e.Dispatch(context.Background(),
		planTurn(IntentOpenAccount, verifiedSession("pendingUser"), SourceDialogCodeHook, EmptySlots(planSlots...)))
	require.NoError(t, err)
	assert.Equal(t, DecisionElicitSlot, d.Type)
	assert.Equal(t, SlotUserName, d.SlotToElicit)
	assert.Equal(t, string(IntentOpenAccount), d.IntentName)
	assert.Equal(t, StageAwaitingUserName, d.Stage)
}

func TestUnverifiedPaymentRequestsPin(t *testing.T) {
	s := seededStore()
	e := newTestEngine(s)
	d, err := e.Dispatch(context.Background(),
		planTurn(IntentMakePayment, NewSession(nil), SourceDialogCodeHook, slotsOf(SlotPlanName, "Loan")))
	require.NoError(t, err)

	assert.Equal(t, DecisionElicitSlot, d.Type)
	assert.Equal(t, SlotPin, d.SlotToElicit)
	assert.Equal(t, string(IntentVerifyIdentity), d.IntentName)
	assert.Equal(t, string(IntentMakePayment), d.Session.Get(AttrIntentBeforeVerification))
	assert.Equal(t, "Loan", d.Session.Get(AttrPlanToApply))
	assert.Equal(t, StageAwaitingVerification, d.Stage)
	assert.Zero(t, s.inserts)
}

func TestUnverifiedFulfillmentNeverWrites(t *testing.T) {
	s := seededStore()
	e := newTestEngine(s)
	slots := slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Savings", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "2")
	d, err := e.Dispatch(context.Background(), planTurn(IntentOpenAccount, NewSession(nil), SourceFulfillmentCodeHook, slots))
	require.NoError(t, err)
	assert.Equal(t, SlotPin, d.SlotToElicit)
	assert.Zero(t, s.inserts)
}

func TestPlanDialogHook(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid date is cleared and re-elicited", func(t *testing.T) {
		e := newTestEngine(seededStore())
		slots := slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Savings", SlotStartDate, "2020-01-01")
		d, err := e.Dispatch(ctx, planTurn(IntentOpenAccount, verifiedSession("pendingUser"), SourceDialogCodeHook, slots))
		require.NoError(t, err)
		assert.Equal(t, DecisionElicitSlot, d.Type)
		assert.Equal(t, SlotStartDate, d.SlotToElicit)
		assert.Nil(t, d.Slots[SlotStartDate])
		assert.Equal(t, "Savings", d.Slots.Value(SlotPlanName))
		assert.Contains(t, d.Message.Content, "2020-01-01")
	})

	t.Run("unknown user", func(t *testing.T) {
		e := newTestEngine(seededStore())
		slots := slotsOf(SlotUserName, "Nobody")
		d, err := e.Dispatch(ctx, planTurn(IntentMakePayment, verifiedSession("pendingUser"), SourceDialogCodeHook, slots))
		require.NoError(t, err)
		assert.Equal(t, SlotUserName, d.SlotToElicit)
		assert.Nil(t, d.Slots[SlotUserName])
		assert.Equal(t, noAccountsMessage("Nobody"), d.Message.Content)
	})

	t.Run("valid slots delegate", func(t *testing.T) {
		e := newTestEngine(seededStore())
		slots := slotsOf(SlotUserName, "jdoe", SlotPlanName, "Savings", SlotStartDate, "2030-06-15", SlotNumOfWeeks, "4")
		d, err := e.Dispatch(ctx, planTurn(IntentOpenAccount, verifiedSession("pendingUser"), SourceDialogCodeHook, slots))
		require.NoError(t, err)
		assert.Equal(t, DecisionDelegate, d.Type)
		assert.Equal(t, "jdoe", d.Session.Get(AttrUserName))
		assert.Equal(t, "4", d.Slots.Value(SlotNumOfWeeks))
		assert.Equal(t, StageReadyToDelegate, d.Stage)
	})

	t.Run("session user name overrides slot", func(t *testing.T) {
		e := newTestEngine(seededStore())
		session := verifiedSession("pendingUser").With(AttrUserName, "Jdoe")
		d, err := e.Dispatch(ctx, planTurn(IntentOpenAccount, session, SourceDialogCodeHook, slotsOf(SlotUserName, "Nobody")))
		require.NoError(t, err)
		assert.Equal(t, DecisionDelegate, d.Type)
		assert.Equal(t, "Jdoe", d.Slots.Value(SlotUserName))
	})

	t.Run("store failure falls back", func(t *testing.T) {
		e := newTestEngine(&fakeStore{listErr: errors.New("database is locked")})
		d, err := e.Dispatch(ctx, planTurn(IntentOpenAccount, verifiedSession("pendingUser"), SourceDialogCodeHook, slotsOf(SlotUserName, "Jdoe")))
		require.NoError(t, err)
		assert.Equal(t, DecisionElicitIntent, d.Type)
		assert.Equal(t, fallbackMessage, d.Message.Content)
		require.NotNil(t, d.ResponseCard)
		assert.NotContains(t, d.Message.Content, "locked")
	})
}

func TestFulfillOpenAccount(t *testing.T) {
	s := seededStore()
	e := newTestEngine(s)
	slots := slotsOf(SlotUserName, "jane doe", SlotPlanName, "Savings", SlotStartDate, "2030-06-22", SlotNumOfWeeks, "2")

	d, err := e.Dispatch(context.Background(), planTurn(IntentOpenAccount, verifiedSession("+15551234567"), SourceFulfillmentCodeHook, slots))
	require.NoError(t, err)
	assert.Equal(t, DecisionClose, d.Type)
	assert.Equal(t, Fulfilled, d.FulfillmentState)
	assert.Nil(t, d.Message)

	require.Len(t, s.plans, 1)
	p := s.plans[0]
	assert.Equal(t, domain.PlanKindAccount, p.Kind)
	assert.Equal(t, "+15551234567", p.UserID)
	assert.Equal(t, "Jane Doe", p.UserName)
	assert.Equal(t, "Savings", p.AccountType)
	assert.Equal(t, "2030-06-22", p.StartDate)
	assert.Equal(t, "2030-07-06", p.EndDate)
	assert.NotEmpty(t, p.ID)
}

func TestFulfillExistingAccountDoesNotWrite(t *testing.T) {
	s := seededStore()
	s.plans = []*domain.Plan{{
		ID:          "existing",
		Kind:        domain.PlanKindAccount,
		UserID:      "pendingUser",
		UserName:    "Jdoe",
		AccountType: "Checking",
		StartDate:   "2030-01-01",
		EndDate:     "2030-01-15",
	}}
	e := newTestEngine(s)
	slots := slotsOf(SlotUserName, "JDOE", SlotPlanName, "Checking", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "2")

	d, err := e.Dispatch(context.Background(), planTurn(IntentOpenAccount, verifiedSession("pendingUser"), SourceFulfillmentCodeHook, slots))
	require.NoError(t, err)
	assert.Equal(t, DecisionElicitIntent, d.Type)
	assert.Contains(t, d.Message.Content, "You already have a Checking Account under Jdoe.")
	assert.Contains(t, d.Message.Content, s.plans[0].Describe())
	assert.Zero(t, s.inserts)
	assert.Len(t, s.plans, 1)
}

func TestFulfillExistingPaymentSchedule(t *testing.T) {
	s := seededStore()
	s.plans = []*domain.Plan{{
		Kind: domain.PlanKindPayment, UserID: "pendingUser", UserName: "Jdoe", AccountType: "Loan",
		StartDate: "2030-06-20", EndDate: "2030-07-04",
	}}
	e := newTestEngine(s)
	slots := slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Loan", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "1")

	d, err := e.Dispatch(context.Background(), planTurn(IntentMakePayment, verifiedSession("pendingUser"), SourceFulfillmentCodeHook, slots))
	require.NoError(t, err)
	assert.Equal(t, DecisionElicitIntent, d.Type)
	assert.Contains(t, d.Message.Content, "You already have a payment schedule for your Loan Account.")
	assert.Zero(t, s.inserts)
}

// racingStore lets another writer win between the existence check and the insert.
type racingStore struct {
	*fakeStore
}

func (r racingStore) InsertPlan(ctx context.Context, plan *domain.Plan) error {
	if err := r.fakeStore.InsertPlan(ctx, plan); err != nil {
		return err
	}
	return fmt.Errorf("insert plan: %w", store.ErrDuplicate)
}

func TestFulfillConflictReportsExisting(t *testing.T) {
	s := seededStore()
	e := NewEngine(racingStore{s}, nil, Options{Location: testLoc, Now: fixedNow, StubPin: "1234"})
	slots := slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Savings", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "3")

	d, err := e.Dispatch(context.Background(), planTurn(IntentOpenAccount, verifiedSession("pendingUser"), SourceFulfillmentCodeHook, slots))
	require.NoError(t, err)
	assert.Equal(t, DecisionElicitIntent, d.Type)
	assert.Contains(t, d.Message.Content, "You already have a Savings Account under Jdoe.")
}

func TestFulfillStoreFailureAcknowledges(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		store  *fakeStore
		want   string
	}{
		{"lookup", IntentOpenAccount, &fakeStore{plansErr: errors.New("timeout")}, "Thank you for opening an account. "},
		{"insert", IntentOpenAccount, &fakeStore{insertErr: errors.New("disk full")}, "Thank you for opening an account. "},
		{"payment", IntentMakePayment, &fakeStore{insertErr: errors.New("disk full")}, "Thank you for scheduling your upcoming payment. "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.store)
			slots := slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Loan", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "2")
			d, err := e.Dispatch(context.Background(), planTurn(tt.intent, verifiedSession("pendingUser"), SourceFulfillmentCodeHook, slots))
			require.NoError(t, err)
			assert.Equal(t, DecisionClose, d.Type)
			assert.Equal(t, Fulfilled, d.FulfillmentState)
			assert.Equal(t, tt.want+followupQuestion, d.Message.Content)
		})
	}
}

func TestFulfillRejectsUnvalidatedSlots(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		slot string
		in   Slots
	}{
		{"account type", SlotPlanName, slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Brokerage", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "2")},
		{"past date", SlotStartDate, slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Loan", SlotStartDate, "2020-07-01", SlotNumOfWeeks, "2")},
		{"week count", SlotNumOfWeeks, slotsOf(SlotUserName, "Jdoe", SlotPlanName, "Loan", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "60")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededStore()
			e := newTestEngine(s)
			d, err := e.Dispatch(ctx, planTurn(IntentMakePayment, verifiedSession("pendingUser"), SourceFulfillmentCodeHook, tt.in))
			require.NoError(t, err)
			assert.Equal(t, DecisionElicitSlot, d.Type)
			assert.Equal(t, tt.slot, d.SlotToElicit)
			assert.Zero(t, s.inserts)
		})
	}
}

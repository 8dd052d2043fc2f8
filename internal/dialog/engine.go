// Package dialog implements the dialog-control layer of the banking assistant:
// slot validation, identity verification, the per-intent state machine and the
// fulfillment steps that read and write account records.
//
// Every entry point is a pure function of its Turn and the store; session
// attributes are received and returned as immutable snapshots and never
// retained between turns.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/bankdialog/internal/catalog"
	"github.com/ashureev/bankdialog/internal/channel"
	"github.com/ashureev/bankdialog/internal/domain"
)

// AccountLister lists the accounts held under a user name.
type AccountLister interface {
	ListAccounts(ctx context.Context, userName string) ([]*domain.Account, error)
}

// PhoneDirectory resolves profiles by phone number.
type PhoneDirectory interface {
	FindProfilesByPhone(ctx context.Context, phone string) ([]*domain.Profile, error)
}

// Store is the subset of the record store the dialog layer uses.
type Store interface {
	AccountLister
	PhoneDirectory
	ListPlans(ctx context.Context, kind domain.PlanKind, userID, userName, accountType string) ([]*domain.Plan, error)
	InsertPlan(ctx context.Context, plan *domain.Plan) error
}

// Source says why the runtime invoked the dialog layer.
type Source string

const (
	// SourceDialogCodeHook asks for validation and steering before slots are complete.
	SourceDialogCodeHook Source = "DialogCodeHook"
	// SourceFulfillmentCodeHook asks for execution once slots are complete.
	SourceFulfillmentCodeHook Source = "FulfillmentCodeHook"
)

// ParseSource validates an invocation source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceDialogCodeHook, SourceFulfillmentCodeHook:
		return Source(s), nil
	default:
		return "", fmt.Errorf("unknown invocation source %q", s)
	}
}

// Stage is the per-intent dialog state a turn leaves the conversation in.
type Stage string

const (
	StageAwaitingUserName       Stage = "AwaitingUserName"
	StageAwaitingVerification   Stage = "AwaitingVerification"
	StageAwaitingSlotValidation Stage = "AwaitingSlotValidation"
	StageReadyToDelegate        Stage = "ReadyToDelegate"
	StageFulfilling             Stage = "Fulfilling"
	StageClosed                 Stage = "Closed"
)

// Turn is one inbound conversational turn.
type Turn struct {
	IntentName string
	Slots      Slots
	Session    Session
	Source     Source
	Channel    channel.Context
}

// Options configures an Engine.
type Options struct {
	StubPin        string
	StubUserID     string
	MaxPinAttempts int
	Location       *time.Location
	Now            func() time.Time
}

// DefaultOptions returns the options used for the console channel.
func DefaultOptions() Options {
	return Options{
		StubPin:        "1234",
		StubUserID:     "pendingUser",
		MaxPinAttempts: 3,
		Location:       time.Local,
		Now:            time.Now,
	}
}

// Engine routes turns to the controller for their intent.
type Engine struct {
	store     Store
	catalog   *catalog.Catalog
	validator *Validator
	verifier  *Verifier
	now       func() time.Time
}

// NewEngine creates an engine over store and catalog.
func NewEngine(store Store, cat *catalog.Catalog, opts Options) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		store:     store,
		catalog:   cat,
		validator: NewValidator(store, opts.Location, opts.Now),
		verifier:  NewVerifier(store, opts.StubPin, opts.StubUserID, opts.MaxPinAttempts),
		now:       opts.Now,
	}
}

// Dispatch decides the next dialog action for a turn. It fails only for an
// intent it does not handle.
func (e *Engine) Dispatch(ctx context.Context, turn Turn) (Decision, error) {
	intent, err := ParseIntent(turn.IntentName)
	if err != nil {
		return Decision{}, err
	}
	if turn.Slots == nil {
		turn.Slots = Slots{}
	}

	var d Decision
	switch intent {
	case IntentHello:
		d = e.reportStatus(ctx, intent, turn, true)
	case IntentListAccounts:
		d = e.reportStatus(ctx, intent, turn, false)
	case IntentOpenAccount:
		d = e.handlePlan(ctx, openAccountFlow, turn)
	case IntentMakePayment:
		d = e.handlePlan(ctx, schedulePaymentFlow, turn)
	case IntentVerifyIdentity:
		d = e.handleVerifyIdentity(ctx, turn)
	case IntentFinish:
		d = Close(turn.Session, Fulfilled, PlainText(goodbyeMessage)).at(StageClosed)
	default:
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}

	slog.Info("Dialog decision",
		"intent", intent,
		"source", turn.Source,
		"channel", turn.Channel.Kind,
		"decision", d.Type,
		"stage", d.Stage,
		"slot_to_elicit", d.SlotToElicit,
	)
	return d, nil
}

func (e *Engine) actionsCard() *ResponseCard {
	return NewResponseCard(actionsCardTitle, actionsCardTitle, e.catalog.Actions)
}

func (e *Engine) fallback(session Session) Decision {
	return ElicitIntent(session, PlainText(fallbackMessage), e.actionsCard(), nil).at(StageClosed)
}

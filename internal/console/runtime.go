package console

import (
	"context"
	"fmt"

	"github.com/ashureev/bankdialog/internal/dialog"
)

// Dispatcher decides the next dialog action for a turn.
type Dispatcher interface {
	Dispatch(ctx context.Context, turn dialog.Turn) (dialog.Decision, error)
}

// requiredSlots lists, in prompting order, the slots an intent needs before
// it is fulfilled.
var requiredSlots = map[dialog.Intent][]string{
	dialog.IntentOpenAccount: {dialog.SlotUserName, dialog.SlotPlanName, dialog.SlotStartDate, dialog.SlotNumOfWeeks},
	dialog.IntentMakePayment: {dialog.SlotUserName, dialog.SlotPlanName, dialog.SlotStartDate, dialog.SlotNumOfWeeks},
}

var slotPrompts = map[string]string{
	dialog.SlotUserName:   "What is the User Name on your profile?",
	dialog.SlotPlanName:   "Which account would you like? Checking, Savings, or Loan.",
	dialog.SlotStartDate:  "What date should it start? (YYYY-MM-DD)",
	dialog.SlotNumOfWeeks: "How many weeks until the next payment? (1-52)",
}

// Runtime runs a turn through the dialog code hook and, when the hook
// delegates, either prompts for the next unfilled slot or invokes the
// fulfillment code hook.
type Runtime struct {
	engine Dispatcher
}

// NewRuntime creates a runtime over engine.
func NewRuntime(engine Dispatcher) *Runtime {
	return &Runtime{engine: engine}
}

// Turn runs one user turn.
func (rt *Runtime) Turn(ctx context.Context, turn dialog.Turn) (dialog.Decision, error) {
	turn.Source = dialog.SourceDialogCodeHook
	d, err := rt.engine.Dispatch(ctx, turn)
	if err != nil {
		return dialog.Decision{}, err
	}
	if d.Type != dialog.DecisionDelegate {
		return d, nil
	}

	intent, err := dialog.ParseIntent(turn.IntentName)
	if err != nil {
		return dialog.Decision{}, err
	}
	slots := d.Slots
	if slots == nil {
		slots = dialog.Slots{}
	}
	for _, name := range requiredSlots[intent] {
		if !slots.Filled(name) {
			return dialog.ElicitSlot(d.Session, intent, slots, name, dialog.PlainText(promptFor(name)), nil), nil
		}
	}

	turn.Source = dialog.SourceFulfillmentCodeHook
	turn.Session = d.Session
	turn.Slots = slots
	return rt.engine.Dispatch(ctx, turn)
}

func promptFor(slot string) string {
	if p, ok := slotPrompts[slot]; ok {
		return p
	}
	return fmt.Sprintf("Please provide %s.", slot)
}

package dialog

import (
	"errors"
	"fmt"
)

// ErrUnknownIntent is returned by Dispatch for an intent it does not handle.
var ErrUnknownIntent = errors.New("intent not supported")

// Intent names a conversational goal the assistant handles.
type Intent string

const (
	IntentHello          Intent = "Hello"
	IntentListAccounts   Intent = "ProvideAccountDetails"
	IntentOpenAccount    Intent = "OpenAccount"
	IntentMakePayment    Intent = "MakePayment"
	IntentVerifyIdentity Intent = "VerifyIdentity"
	IntentFinish         Intent = "Finish"
)

// Intents lists every handled intent.
var Intents = []Intent{
	IntentHello,
	IntentListAccounts,
	IntentOpenAccount,
	IntentMakePayment,
	IntentVerifyIdentity,
	IntentFinish,
}

// ParseIntent maps an intent name to a handled Intent.
func ParseIntent(name string) (Intent, error) {
	for _, i := range Intents {
		if string(i) == name {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, name)
}

package main

import (
	"strings"

	"github.com/ashureev/bankdialog/internal/dialog"
)

// intentKeywords maps phrases to intents for the console client. The first
// intent with a matching keyword wins.
var intentKeywords = []struct {
	intent   dialog.Intent
	keywords []string
}{
	{dialog.IntentFinish, []string{"bye", "goodbye", "finish", "quit", "done"}},
	{dialog.IntentMakePayment, []string{"payment", "pay"}},
	{dialog.IntentOpenAccount, []string{"open", "new account", "apply"}},
	{dialog.IntentListAccounts, []string{"balance", "status", "due date", "accounts", "refinance"}},
	{dialog.IntentVerifyIdentity, []string{"verify", "pin"}},
	{dialog.IntentHello, []string{"hello", "hi", "hey", "help"}},
}

// matchIntent picks the intent a free-text line most likely asks for.
func matchIntent(text string) (dialog.Intent, bool) {
	words := strings.Fields(strings.ToLower(text))
	line := " " + strings.Join(words, " ") + " "
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(line, " "+kw+" ") {
				return entry.intent, true
			}
		}
	}
	return "", false
}

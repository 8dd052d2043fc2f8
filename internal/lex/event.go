// Package lex maps the conversational runtime's fulfillment events and
// responses onto dialog turns and decisions.
package lex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/bankdialog/internal/channel"
	"github.com/ashureev/bankdialog/internal/dialog"
)

// MessageVersion is the event format this package understands.
const MessageVersion = "1.0"

// ErrBotMismatch is returned when an event names a bot other than the expected one.
var ErrBotMismatch = errors.New("event from unexpected bot")

// Event is one fulfillment or dialog code hook invocation.
type Event struct {
	MessageVersion    string            `json:"messageVersion"`
	InvocationSource  string            `json:"invocationSource"`
	UserID            string            `json:"userId"`
	InputTranscript   string            `json:"inputTranscript,omitempty"`
	OutputDialogMode  string            `json:"outputDialogMode,omitempty"`
	Bot               Bot               `json:"bot"`
	CurrentIntent     CurrentIntent     `json:"currentIntent"`
	SessionAttributes dialog.Session    `json:"sessionAttributes"`
	RequestAttributes map[string]string `json:"requestAttributes,omitempty"`
}

// Bot identifies the bot that produced the event.
type Bot struct {
	Name    string `json:"name"`
	Alias   string `json:"alias,omitempty"`
	Version string `json:"version,omitempty"`
}

// CurrentIntent is the intent recognized for the turn.
type CurrentIntent struct {
	Name               string       `json:"name"`
	Slots              dialog.Slots `json:"slots"`
	ConfirmationStatus string       `json:"confirmationStatus,omitempty"`
}

// CheckBot rejects events from bots other than expected. An empty expected
// name accepts every bot.
func (e *Event) CheckBot(expected string) error {
	if expected == "" || strings.EqualFold(e.Bot.Name, expected) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBotMismatch, e.Bot.Name)
}

// ToTurn converts the event into a dialog turn, deriving the channel from the
// session and request attributes.
func (e *Event) ToTurn() (dialog.Turn, error) {
	source, err := dialog.ParseSource(e.InvocationSource)
	if err != nil {
		return dialog.Turn{}, err
	}
	if strings.TrimSpace(e.CurrentIntent.Name) == "" {
		return dialog.Turn{}, errors.New("currentIntent.name is required")
	}
	slots := e.CurrentIntent.Slots
	if slots == nil {
		slots = dialog.Slots{}
	}
	return dialog.Turn{
		IntentName: e.CurrentIntent.Name,
		Slots:      slots,
		Session:    e.SessionAttributes,
		Source:     source,
		Channel:    channel.Derive(e.SessionAttributes.Map(), e.RequestAttributes, e.UserID),
	}, nil
}

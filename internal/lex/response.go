package lex

import "github.com/ashureev/bankdialog/internal/dialog"

const (
	genericCardContentType = "application/vnd.amazonaws.card.generic"
	genericCardVersion     = 1
)

// Response is the reply to an Event.
type Response struct {
	SessionAttributes dialog.Session `json:"sessionAttributes"`
	DialogAction      DialogAction   `json:"dialogAction"`
}

// DialogAction tells the runtime what to do next.
type DialogAction struct {
	Type             dialog.DecisionType     `json:"type"`
	FulfillmentState dialog.FulfillmentState `json:"fulfillmentState,omitempty"`
	IntentName       string                  `json:"intentName,omitempty"`
	Slots            dialog.Slots            `json:"slots,omitempty"`
	SlotToElicit     string                  `json:"slotToElicit,omitempty"`
	Message          *dialog.Message         `json:"message,omitempty"`
	ResponseCard     *ResponseCard           `json:"responseCard,omitempty"`
}

// ResponseCard is the generic card attachment.
type ResponseCard struct {
	Version            int                 `json:"version"`
	ContentType        string              `json:"contentType"`
	GenericAttachments []GenericAttachment `json:"genericAttachments"`
}

// GenericAttachment is one card of a ResponseCard.
type GenericAttachment struct {
	Title    string          `json:"title"`
	SubTitle string          `json:"subTitle"`
	Buttons  []dialog.Button `json:"buttons"`
}

// FromDecision builds the response for a decision. Fields that do not apply
// to the decision type are left out.
func FromDecision(d dialog.Decision) Response {
	action := DialogAction{Type: d.Type, Message: d.Message}
	switch d.Type {
	case dialog.DecisionElicitIntent:
		action.Slots = d.Slots
		action.ResponseCard = toCard(d.ResponseCard)
	case dialog.DecisionElicitSlot:
		action.IntentName = d.IntentName
		action.Slots = d.Slots
		action.SlotToElicit = d.SlotToElicit
		action.ResponseCard = toCard(d.ResponseCard)
	case dialog.DecisionConfirmIntent:
		action.IntentName = d.IntentName
		action.Slots = d.Slots
	case dialog.DecisionClose:
		action.FulfillmentState = d.FulfillmentState
	case dialog.DecisionDelegate:
		action.Message = nil
		action.Slots = d.Slots
		if action.Slots == nil {
			action.Slots = dialog.Slots{}
		}
	}
	return Response{SessionAttributes: d.Session, DialogAction: action}
}

func toCard(c *dialog.ResponseCard) *ResponseCard {
	if c == nil {
		return nil
	}
	buttons := c.Buttons
	if buttons == nil {
		buttons = []dialog.Button{}
	}
	return &ResponseCard{
		Version:     genericCardVersion,
		ContentType: genericCardContentType,
		GenericAttachments: []GenericAttachment{{
			Title:    c.Title,
			SubTitle: c.SubTitle,
			Buttons:  buttons,
		}},
	}
}

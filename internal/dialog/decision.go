package dialog

// DecisionType names the dialog action the runtime should take next.
type DecisionType string

const (
	DecisionElicitIntent  DecisionType = "ElicitIntent"
	DecisionElicitSlot    DecisionType = "ElicitSlot"
	DecisionConfirmIntent DecisionType = "ConfirmIntent"
	DecisionClose         DecisionType = "Close"
	DecisionDelegate      DecisionType = "Delegate"
)

// FulfillmentState is the outcome carried by a Close decision.
type FulfillmentState string

const (
	Fulfilled FulfillmentState = "Fulfilled"
	Failed    FulfillmentState = "Failed"
)

// MaxCardButtons is the most options a response card displays.
const MaxCardButtons = 5

// Message is a user-facing message.
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// PlainText wraps content in a plain-text message.
func PlainText(content string) *Message {
	return &Message{ContentType: "PlainText", Content: content}
}

// Button is one suggested reply on a response card.
type Button struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// ResponseCard is a titled set of suggested-reply buttons.
type ResponseCard struct {
	Title    string   `json:"title"`
	SubTitle string   `json:"subTitle"`
	Buttons  []Button `json:"buttons"`
}

// NewResponseCard builds a card from options, keeping their order and
// displaying at most MaxCardButtons of them.
func NewResponseCard(title, subTitle string, options []string) *ResponseCard {
	n := min(len(options), MaxCardButtons)
	buttons := make([]Button, 0, n)
	for _, o := range options[:n] {
		buttons = append(buttons, Button{Text: o, Value: o})
	}
	return &ResponseCard{Title: title, SubTitle: subTitle, Buttons: buttons}
}

// Decision is the controller's answer to one turn. Type selects which of the
// remaining fields are meaningful:
//
//	ElicitIntent:  Message, ResponseCard, Slots
//	ElicitSlot:    IntentName, Slots, SlotToElicit, Message, ResponseCard
//	ConfirmIntent: IntentName, Slots, Message
//	Close:         FulfillmentState, Message
//	Delegate:      Slots
//
// Session is always set.
type Decision struct {
	Type             DecisionType
	Session          Session
	IntentName       string
	Slots            Slots
	SlotToElicit     string
	Message          *Message
	ResponseCard     *ResponseCard
	FulfillmentState FulfillmentState

	// Stage is the per-intent dialog state the turn ended in. It is not sent
	// to the runtime.
	Stage Stage
}

// ElicitIntent asks the user what they want to do next.
func ElicitIntent(session Session, msg *Message, card *ResponseCard, slots Slots) Decision {
	return Decision{Type: DecisionElicitIntent, Session: session, Message: msg, ResponseCard: card, Slots: slots}
}

// ElicitSlot asks the user for the value of one slot.
func ElicitSlot(session Session, intent Intent, slots Slots, slot string, msg *Message, card *ResponseCard) Decision {
	return Decision{
		Type:         DecisionElicitSlot,
		Session:      session,
		IntentName:   string(intent),
		Slots:        slots,
		SlotToElicit: slot,
		Message:      msg,
		ResponseCard: card,
	}
}

// ConfirmIntent asks the user to confirm the intent with its current slots.
func ConfirmIntent(session Session, intent Intent, slots Slots, msg *Message) Decision {
	return Decision{Type: DecisionConfirmIntent, Session: session, IntentName: string(intent), Slots: slots, Message: msg}
}

// Close ends the conversation with a fulfillment outcome.
func Close(session Session, state FulfillmentState, msg *Message) Decision {
	return Decision{Type: DecisionClose, Session: session, FulfillmentState: state, Message: msg}
}

// Delegate hands slot filling back to the runtime.
func Delegate(session Session, slots Slots) Decision {
	return Decision{Type: DecisionDelegate, Session: session, Slots: slots}
}

// at records the stage the decision leaves the intent in.
func (d Decision) at(stage Stage) Decision {
	d.Stage = stage
	return d
}

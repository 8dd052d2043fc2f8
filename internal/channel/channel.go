// Package channel derives the end-user channel a turn arrived on and the
// identity hints that channel supplies.
package channel

import (
	"regexp"
	"strings"
)

// Attribute names set by the channel integrations.
const (
	SourceAttr           = "Source"
	IncomingNumberAttr   = "IncomingNumber"
	ChannelTypeAttr      = "x-amz-lex:channel-type"
	ChannelUserIDAttr    = "x-amz-lex:user-id"
	TelephoneSourceValue = "AmazonConnect"
	SMSChannelValue      = "Twilio-SMS"
	MessengerChannelVal  = "Facebook"
)

// Kind identifies the channel family.
type Kind string

const (
	KindTelephone Kind = "telephone"
	KindSMS       Kind = "sms"
	KindMessenger Kind = "messenger"
	KindConsole   Kind = "console"
)

// Context carries the identity hints of one channel.
type Context struct {
	Kind           Kind   `json:"kind"`
	Phone          string `json:"phone,omitempty"`
	ExternalUserID string `json:"external_user_id,omitempty"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{4,15}$`)

// HasPhone reports whether the channel supplied a usable phone number.
func (c Context) HasPhone() bool {
	return c.Phone != "" && phonePattern.MatchString(c.Phone)
}

// Derive inspects the turn's session and request attributes. A voice call
// carries its caller number in the session, an SMS conversation is keyed by
// the sender's number, and a messenger conversation by its page-scoped id.
// Anything else is treated as the console. A voice or SMS turn keeps its
// kind even when the number is withheld or unparsable; Phone is empty then.
func Derive(sessionAttrs, requestAttrs map[string]string, userID string) Context {
	if sessionAttrs[SourceAttr] == TelephoneSourceValue {
		return Context{Kind: KindTelephone, Phone: normalizePhone(sessionAttrs[IncomingNumberAttr])}
	}

	switch requestAttrs[ChannelTypeAttr] {
	case SMSChannelValue:
		phone := normalizePhone(userID)
		if phone != "" && !strings.HasPrefix(phone, "+") {
			phone = "+" + phone
		}
		return Context{Kind: KindSMS, Phone: phone}
	case MessengerChannelVal:
		return Context{Kind: KindMessenger, ExternalUserID: strings.TrimSpace(requestAttrs[ChannelUserIDAttr])}
	}

	return Context{Kind: KindConsole, ExternalUserID: strings.TrimSpace(userID)}
}

// RequiresPhone reports whether identity on this channel must be proven
// against the phone number.
func (c Context) RequiresPhone() bool {
	return c.Kind == KindTelephone || c.Kind == KindSMS
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

func normalizePhone(raw string) string {
	phone := phoneSeparators.Replace(strings.TrimSpace(raw))
	if !phonePattern.MatchString(phone) {
		return ""
	}
	return phone
}

// MaskPhone hides all but the last four digits of a phone number for logging.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

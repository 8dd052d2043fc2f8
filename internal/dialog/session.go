package dialog

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// Session attribute keys carried across turns.
const (
	AttrIdentityVerified         = "identityVerified"
	AttrLoggedInUser             = "loggedInUser"
	AttrPinAttempt               = "pinAttempt"
	AttrIntentBeforeVerification = "intentBeforeVerification"
	AttrPlanToApply              = "planToApply"
	AttrUserName                 = "userName"
	AttrConversationID           = "conversationId"
)

// Session is an immutable snapshot of the caller-managed session attributes.
// Every mutation returns a new Session; the receiver is never modified, so a
// snapshot handed in by the caller can be compared with the one handed back.
type Session struct {
	attrs map[string]string
}

// NewSession copies attrs into a new snapshot.
func NewSession(attrs map[string]string) Session {
	s := Session{attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		s.attrs[k] = v
	}
	return s
}

// Get returns the value stored under key, or "" when absent.
func (s Session) Get(key string) string {
	return s.attrs[key]
}

// Has reports whether key is present.
func (s Session) Has(key string) bool {
	_, ok := s.attrs[key]
	return ok
}

// With returns a copy of the session with key set to value.
func (s Session) With(key, value string) Session {
	next := NewSession(s.attrs)
	next.attrs[key] = value
	return next
}

// Without returns a copy of the session with keys removed.
func (s Session) Without(keys ...string) Session {
	next := NewSession(s.attrs)
	for _, k := range keys {
		delete(next.attrs, k)
	}
	return next
}

// Map returns a copy of the attributes.
func (s Session) Map() map[string]string {
	return NewSession(s.attrs).attrs
}

// Len returns the number of attributes.
func (s Session) Len() int {
	return len(s.attrs)
}

// MarshalJSON encodes the attributes as a flat JSON object.
func (s Session) MarshalJSON() ([]byte, error) {
	if s.attrs == nil {
		return []byte("{}"), nil
	}
	return sonic.ConfigStd.Marshal(s.attrs)
}

// UnmarshalJSON accepts string, boolean and numeric attribute values and
// stores them in their string form.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return err
	}
	attrs := make(map[string]string, len(raw))
	for k, v := range raw {
		switch tv := v.(type) {
		case nil:
			continue
		case string:
			attrs[k] = tv
		case bool:
			attrs[k] = strconv.FormatBool(tv)
		case float64:
			attrs[k] = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			return fmt.Errorf("session attribute %q: unsupported value type %T", k, v)
		}
	}
	s.attrs = attrs
	return nil
}

package dialog

import "strings"

// Slot names used by the banking intents.
const (
	SlotUserName   = "userName"
	SlotPlanName   = "planName"
	SlotStartDate  = "startDate"
	SlotNumOfWeeks = "numOfWeeks"
	SlotPin        = "pin"
)

// planSlots is the slot set of the open-account and schedule-payment intents.
var planSlots = []string{SlotNumOfWeeks, SlotStartDate, SlotUserName, SlotPlanName}

// Slots maps slot names to values; a nil value means "not yet supplied".
type Slots map[string]*string

// EmptySlots returns a slot map with every name present and unset.
func EmptySlots(names ...string) Slots {
	s := make(Slots, len(names))
	for _, n := range names {
		s[n] = nil
	}
	return s
}

// Value returns the trimmed value of a slot, or "" when unset.
func (s Slots) Value(name string) string {
	if v := s[name]; v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// Filled reports whether the slot holds a non-blank value.
func (s Slots) Filled(name string) bool {
	return s.Value(name) != ""
}

// Clone returns a deep copy.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		if v == nil {
			out[k] = nil
			continue
		}
		val := *v
		out[k] = &val
	}
	return out
}

// With returns a copy with name set to value.
func (s Slots) With(name, value string) Slots {
	out := s.Clone()
	out[name] = &value
	return out
}

// Cleared returns a copy with name present and unset.
func (s Slots) Cleared(name string) Slots {
	out := s.Clone()
	out[name] = nil
	return out
}

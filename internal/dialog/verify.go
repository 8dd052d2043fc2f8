package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ashureev/bankdialog/internal/channel"
)

const pinLength = 4

// PinResult is the outcome of checking a supplied PIN.
type PinResult struct {
	Verified bool
	Identity string
}

// Verifier decides whether a user is authenticated and checks PINs against
// the identity hints supplied by the channel.
type Verifier struct {
	directory   PhoneDirectory
	stubPin     string
	stubUserID  string
	maxAttempts int
}

// NewVerifier creates a verifier. stubPin is accepted on channels that carry
// no phone number.
func NewVerifier(directory PhoneDirectory, stubPin, stubUserID string, maxAttempts int) *Verifier {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Verifier{
		directory:   directory,
		stubPin:     NormalizePin(stubPin),
		stubUserID:  stubUserID,
		maxAttempts: maxAttempts,
	}
}

// IsVerified reports whether the session belongs to an authenticated user.
func IsVerified(session Session) bool {
	v, err := strconv.ParseBool(session.Get(AttrIdentityVerified))
	return err == nil && v
}

// NormalizePin left-pads a PIN with zeros to four digits. Longer PINs are
// returned unchanged.
func NormalizePin(pin string) string {
	pin = strings.TrimSpace(pin)
	if len(pin) >= pinLength {
		return pin
	}
	return strings.Repeat("0", pinLength-len(pin)) + pin
}

// BeginVerification records the intent to resume after verification, plus
// any account type already supplied, and asks for the PIN.
func (v *Verifier) BeginVerification(session Session, intent Intent, pendingPlan string) Decision {
	session = session.With(AttrIntentBeforeVerification, string(intent))
	if pendingPlan != "" {
		session = session.With(AttrPlanToApply, pendingPlan)
	} else {
		session = session.Without(AttrPlanToApply)
	}
	return ElicitSlot(session, IntentVerifyIdentity, EmptySlots(SlotPin), SlotPin, PlainText(verifyPrompt), nil).
		at(StageAwaitingVerification)
}

// CheckPin compares pin with the PIN expected for the channel. The only error
// is a failed phone-index lookup. Voice and SMS turns without a usable number
// never verify; the stub PIN is reserved for channels without a phone.
func (v *Verifier) CheckPin(ctx context.Context, pin string, ch channel.Context) (PinResult, error) {
	pin = NormalizePin(pin)

	if ch.RequiresPhone() && !ch.HasPhone() {
		slog.Warn("PIN check without caller number", "channel", ch.Kind)
		return PinResult{}, nil
	}

	if ch.Kind == channel.KindTelephone {
		// The phone index is consulted for its error only; a match is decided
		// by the phone number itself.
		profiles, err := v.directory.FindProfilesByPhone(ctx, ch.Phone)
		if err != nil {
			return PinResult{}, fmt.Errorf("resolve phone identity: %w", err)
		}
		slog.Debug("Phone index lookup", "phone", channel.MaskPhone(ch.Phone), "profiles", len(profiles))
	}

	if ch.HasPhone() {
		if pin != lastDigits(ch.Phone, pinLength) {
			return PinResult{}, nil
		}
		return PinResult{Verified: true, Identity: ch.Phone}, nil
	}

	if pin != v.stubPin {
		return PinResult{}, nil
	}
	if ch.Kind == channel.KindMessenger && ch.ExternalUserID != "" {
		return PinResult{Verified: true, Identity: ch.ExternalUserID}, nil
	}
	return PinResult{Verified: true, Identity: v.stubUserID}, nil
}

// recordMismatch counts a failed PIN attempt. It reports whether the session
// has exhausted its attempts; the counter is removed in that case.
func (v *Verifier) recordMismatch(session Session) (Session, bool) {
	attempts, _ := strconv.Atoi(session.Get(AttrPinAttempt))
	attempts++

	session = session.With(AttrIdentityVerified, "false").Without(AttrLoggedInUser)
	if attempts >= v.maxAttempts {
		return session.Without(AttrPinAttempt, AttrIntentBeforeVerification, AttrPlanToApply), true
	}
	return session.With(AttrPinAttempt, strconv.Itoa(attempts)), false
}

// markVerified records a successful verification.
func markVerified(session Session, identity string) Session {
	return session.
		With(AttrIdentityVerified, "true").
		With(AttrLoggedInUser, identity).
		Without(AttrPinAttempt)
}

func lastDigits(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// handleVerifyIdentity checks the supplied PIN and, on success, resumes the
// intent that asked for verification.
func (e *Engine) handleVerifyIdentity(ctx context.Context, turn Turn) Decision {
	session := turn.Session
	pin := turn.Slots.Value(SlotPin)
	if pin == "" {
		return ElicitSlot(session, IntentVerifyIdentity, turn.Slots, SlotPin, PlainText(pinPrompt), nil).
			at(StageAwaitingVerification)
	}

	result, err := e.verifier.CheckPin(ctx, pin, turn.Channel)
	if err != nil {
		slog.Error("Identity verification failed", "channel", turn.Channel.Kind, "error", err)
		return Close(session, Failed, PlainText(err.Error())).at(StageClosed)
	}

	if !result.Verified {
		session, locked := e.verifier.recordMismatch(session)
		if locked {
			slog.Warn("PIN attempts exhausted", "channel", turn.Channel.Kind)
			return Close(session, Failed, PlainText(lockedOutMessage)).at(StageClosed)
		}
		return ElicitSlot(session, IntentVerifyIdentity, turn.Slots.Cleared(SlotPin), SlotPin, PlainText(pinMismatchMessage), nil).
			at(StageAwaitingVerification)
	}

	session = markVerified(session, result.Identity)
	greeting := verifiedGreeting()

	if resumed, err := ParseIntent(session.Get(AttrIntentBeforeVerification)); err == nil {
		if flow, ok := flowFor(resumed); ok {
			return e.resumePlan(flow, session, greeting)
		}
	}
	session = session.Without(AttrIntentBeforeVerification, AttrPlanToApply)
	return ElicitIntent(session, PlainText(greeting), e.actionsCard(), nil).at(StageClosed)
}

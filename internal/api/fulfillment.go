package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ashureev/bankdialog/internal/dialog"
	"github.com/ashureev/bankdialog/internal/lex"
	"github.com/ashureev/bankdialog/internal/transcript"
)

// Dispatcher decides the next dialog action for a turn.
type Dispatcher interface {
	Dispatch(ctx context.Context, turn dialog.Turn) (dialog.Decision, error)
}

// FulfillmentHandler serves the runtime's code hook invocations.
type FulfillmentHandler struct {
	engine     Dispatcher
	transcript transcript.Logger
	botName    string
}

// NewFulfillmentHandler creates the webhook handler. An empty botName
// accepts events from any bot.
func NewFulfillmentHandler(engine Dispatcher, log transcript.Logger, botName string) *FulfillmentHandler {
	if log == nil {
		log = transcript.Nop{}
	}
	return &FulfillmentHandler{engine: engine, transcript: log, botName: botName}
}

// RegisterRoutes registers the webhook route.
func (h *FulfillmentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/fulfillment", h.Fulfill)
}

// Fulfill decodes one event, dispatches it and writes the dialog action.
func (h *FulfillmentHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	requestID := chiMiddleware.GetReqID(r.Context())

	event, err := lex.DecodeEvent(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	if err := event.CheckBot(h.botName); err != nil {
		slog.Warn("Rejected event", "request_id", requestID, "error", err)
		Error(w, http.StatusForbidden, "unexpected bot")
		return
	}

	turn, err := event.ToTurn()
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// The runtime has no conversation id of its own; one is minted on the
	// first turn and round-tripped as a session attribute.
	sessionID := turn.Session.Get(dialog.AttrConversationID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	h.transcript.Log(transcript.Entry{
		UserID:    event.UserID,
		SessionID: sessionID,
		Channel:   string(turn.Channel.Kind),
		Direction: transcript.Inbound,
		Intent:    turn.IntentName,
		Source:    string(turn.Source),
		Payload:   event.InputTranscript,
	})

	decision, err := h.engine.Dispatch(r.Context(), turn)
	if err != nil {
		if errors.Is(err, dialog.ErrUnknownIntent) {
			slog.Warn("Unsupported intent", "request_id", requestID, "intent", turn.IntentName)
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Dispatch failed", "request_id", requestID, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	decision.Session = decision.Session.With(dialog.AttrConversationID, sessionID)
	resp := lex.FromDecision(decision)
	h.transcript.Log(transcript.Entry{
		UserID:    event.UserID,
		SessionID: sessionID,
		Channel:   string(turn.Channel.Kind),
		Direction: transcript.Outbound,
		Intent:    turn.IntentName,
		Decision:  string(decision.Type),
		Payload:   resp.DialogAction,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := lex.EncodeResponse(w, resp); err != nil {
		slog.Error("Failed to write response", "request_id", requestID, "error", err)
	}
}

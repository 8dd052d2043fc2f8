package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ashureev/bankdialog/internal/channel"
	"github.com/ashureev/bankdialog/internal/dialog"
	"github.com/ashureev/bankdialog/internal/lex"
	"github.com/ashureev/bankdialog/internal/transcript"
)

// Message types exchanged with the console client.
const (
	TypeTurn     = "turn"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeReset    = "reset"
	TypeSession  = "session"
	TypeDecision = "decision"
	TypeError    = "error"
)

// ClientMessage is sent by the console client.
type ClientMessage struct {
	Type   string       `json:"type"`
	Intent string       `json:"intent,omitempty"`
	Slots  dialog.Slots `json:"slots,omitempty"`
	Text   string       `json:"text,omitempty"`
}

// ServerMessage is sent to the console client.
type ServerMessage struct {
	Type      string        `json:"type"`
	UserID    string        `json:"user_id,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	Response  *lex.Response `json:"response,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Handler serves /ws/console.
type Handler struct {
	runtime        *Runtime
	sm             *SessionManager
	transcript     transcript.Logger
	allowedOrigins []string
	isDev          bool
}

// NewHandler creates the console websocket handler.
func NewHandler(engine Dispatcher, sm *SessionManager, log transcript.Logger, allowedOrigins []string, isDev bool) *Handler {
	if log == nil {
		log = transcript.Nop{}
	}
	return &Handler{
		runtime:        NewRuntime(engine),
		sm:             sm,
		transcript:     log,
		allowedOrigins: allowedOrigins,
		isDev:          isDev,
	}
}

// ServeHTTP implements http.Handler for the websocket upgrade. The user and
// session ids come from the "user" and "session" query parameters and are
// generated when absent.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = "console-" + uuid.NewString()[:8]
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	slog.Info("Console connection request", "user_id", userID, "session_id", sessionID, "ip", r.RemoteAddr)

	patterns := h.allowedOrigins
	if h.isDev || len(patterns) == 0 {
		patterns = []string{"*"}
	}
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.sm.Register(userID, sessionID, ws)
	defer h.sm.Unregister(userID, sessionID, ws)

	ctx := r.Context()
	if err := h.writeJSON(ctx, ws, ServerMessage{Type: TypeSession, UserID: userID, SessionID: sessionID}); err != nil {
		slog.Debug("Failed to send session greeting", "error", err)
		return
	}

	h.readLoop(ctx, ws, userID, sessionID)
	slog.Info("Console session ended", "user_id", userID, "session_id", sessionID)
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, userID, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg ClientMessage
		if err := sonic.ConfigStd.Unmarshal(data, &msg); err != nil {
			h.reply(ctx, ws, ServerMessage{Type: TypeError, Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case TypeTurn:
			h.reply(ctx, ws, h.handleTurn(ctx, userID, sessionID, msg))
		case TypePing:
			h.reply(ctx, ws, ServerMessage{Type: TypePong})
		case TypeReset:
			h.sm.Reset(userID, sessionID)
			h.reply(ctx, ws, ServerMessage{Type: TypeReset})
		default:
			h.reply(ctx, ws, ServerMessage{Type: TypeError, Error: "unknown message type: " + msg.Type})
		}
	}
}

func (h *Handler) handleTurn(ctx context.Context, userID, sessionID string, msg ClientMessage) ServerMessage {
	slots := msg.Slots
	if slots == nil {
		slots = dialog.Slots{}
	}
	turn := dialog.Turn{
		IntentName: msg.Intent,
		Slots:      slots,
		Session:    h.sm.Session(userID, sessionID),
		Channel:    channel.Context{Kind: channel.KindConsole, ExternalUserID: userID},
	}

	h.transcript.Log(transcript.Entry{
		UserID:    userID,
		SessionID: sessionID,
		Channel:   string(channel.KindConsole),
		Direction: transcript.Inbound,
		Intent:    msg.Intent,
		Payload:   msg.Text,
	})

	d, err := h.runtime.Turn(ctx, turn)
	if err != nil {
		if errors.Is(err, dialog.ErrUnknownIntent) {
			return ServerMessage{Type: TypeError, Error: err.Error()}
		}
		slog.Error("Console turn failed", "user_id", userID, "error", err)
		return ServerMessage{Type: TypeError, Error: "internal error"}
	}
	h.sm.SetSession(userID, sessionID, d.Session)

	resp := lex.FromDecision(d)
	h.transcript.Log(transcript.Entry{
		UserID:    userID,
		SessionID: sessionID,
		Channel:   string(channel.KindConsole),
		Direction: transcript.Outbound,
		Intent:    msg.Intent,
		Decision:  string(d.Type),
		Payload:   resp.DialogAction,
	})
	return ServerMessage{Type: TypeDecision, Response: &resp}
}

func (h *Handler) reply(ctx context.Context, ws *websocket.Conn, msg ServerMessage) {
	if err := h.writeJSON(ctx, ws, msg); err != nil {
		slog.Debug("Failed to write console message", "type", msg.Type, "error", err)
	}
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

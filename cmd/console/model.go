package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/websocket"

	"github.com/ashureev/bankdialog/internal/console"
	"github.com/ashureev/bankdialog/internal/dialog"
	"github.com/ashureev/bankdialog/internal/lex"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
)

// serverMsg wraps a message read from the websocket.
type serverMsg console.ServerMessage

// connErrMsg reports a failed websocket read or write.
type connErrMsg struct{ err error }

// model is the chat screen. It tracks the intent and slots of the dialog in
// progress so that a plain answer fills the slot the server asked for.
type model struct {
	ctx  context.Context
	conn *websocket.Conn

	input    textinput.Model
	viewport viewport.Model
	lines    []string

	intent      string
	slots       dialog.Slots
	pendingSlot string
	buttons     []dialog.Button

	width  int
	height int
	err    error
}

func newModel(ctx context.Context, conn *websocket.Conn) model {
	ti := textinput.New()
	ti.Placeholder = "Say hello, ask for your balance, open an account… (/reset, /quit)"
	ti.Focus()
	ti.CharLimit = 256

	return model{
		ctx:      ctx,
		conn:     conn,
		input:    ti,
		viewport: viewport.New(80, 20),
		slots:    dialog.Slots{},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForMessage())
}

// waitForMessage reads the next server message.
func (m model) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		_, data, err := m.conn.Read(m.ctx)
		if err != nil {
			return connErrMsg{err}
		}
		var msg console.ServerMessage
		if err := sonic.ConfigStd.Unmarshal(data, &msg); err != nil {
			return connErrMsg{fmt.Errorf("decode server message: %w", err)}
		}
		return serverMsg(msg)
	}
}

func (m model) send(msg console.ClientMessage) tea.Cmd {
	return func() tea.Msg {
		data, err := sonic.ConfigStd.Marshal(msg)
		if err != nil {
			return connErrMsg{err}
		}
		if err := m.conn.Write(m.ctx, websocket.MessageText, data); err != nil {
			return connErrMsg{err}
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(5, msg.Height-6)
		m.input.Width = max(20, msg.Width-4)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if text == "" {
				return m, nil
			}
			return m.submit(text)
		}

	case serverMsg:
		m.handleServer(console.ServerMessage(msg))
		return m, m.waitForMessage()

	case connErrMsg:
		m.err = msg.err
		m.appendLine(errorStyle.Render("connection lost: " + msg.err.Error()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit turns a line of user input into a client message.
func (m model) submit(text string) (tea.Model, tea.Cmd) {
	switch text {
	case "/quit":
		return m, tea.Quit
	case "/reset":
		m.intent, m.pendingSlot, m.slots, m.buttons = "", "", dialog.Slots{}, nil
		return m, m.send(console.ClientMessage{Type: console.TypeReset})
	}

	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(m.buttons) {
		text = m.buttons[n-1].Value
	}
	m.appendLine(userStyle.Render("you › ") + text)

	if m.pendingSlot != "" && m.intent != "" {
		slots := m.slots.With(m.pendingSlot, text)
		return m, m.send(console.ClientMessage{Type: console.TypeTurn, Intent: m.intent, Slots: slots, Text: text})
	}

	intent, ok := matchIntent(text)
	if !ok {
		m.appendLine(metaStyle.Render("Sorry, I did not catch that. Try 'hello', 'balance', 'open an account' or 'schedule a payment'."))
		return m, nil
	}
	m.intent = string(intent)
	m.slots = dialog.Slots{}
	return m, m.send(console.ClientMessage{Type: console.TypeTurn, Intent: m.intent, Slots: m.slots, Text: text})
}

func (m *model) handleServer(msg console.ServerMessage) {
	switch msg.Type {
	case console.TypeSession:
		m.appendLine(metaStyle.Render(fmt.Sprintf("connected as %s (session %s)", msg.UserID, msg.SessionID)))
	case console.TypeReset:
		m.appendLine(metaStyle.Render("session reset"))
	case console.TypeError:
		m.appendLine(errorStyle.Render("error: " + msg.Error))
	case console.TypeDecision:
		if msg.Response != nil {
			m.applyAction(msg.Response.DialogAction)
		}
	}
}

func (m *model) applyAction(action lex.DialogAction) {
	switch {
	case action.Message != nil:
		m.appendLine(botStyle.Render("bank › " + action.Message.Content))
	case action.Type == dialog.DecisionClose:
		m.appendLine(botStyle.Render(fmt.Sprintf("bank › (%s)", action.FulfillmentState)))
	}

	m.buttons = nil
	if action.ResponseCard != nil && len(action.ResponseCard.GenericAttachments) > 0 {
		m.buttons = action.ResponseCard.GenericAttachments[0].Buttons
		for i, b := range m.buttons {
			m.appendLine(buttonStyle.Render(fmt.Sprintf("  [%d] %s", i+1, b.Text)))
		}
	}

	switch action.Type {
	case dialog.DecisionElicitSlot:
		m.intent = action.IntentName
		m.pendingSlot = action.SlotToElicit
		m.slots = action.Slots
		if m.slots == nil {
			m.slots = dialog.Slots{}
		}
	default:
		m.pendingSlot = ""
		m.slots = dialog.Slots{}
	}
}

func (m *model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *model) refresh() {
	width := max(20, m.viewport.Width)
	m.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(strings.Join(m.lines, "\n")))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	header := titleStyle.Render("Banking Assistant Console")
	status := metaStyle.Render("enter to send · 1-5 picks a suggestion · esc to quit")
	if m.pendingSlot != "" {
		status = metaStyle.Render(fmt.Sprintf("answering %s for %s", m.pendingSlot, m.intent))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), m.input.View(), status)
}

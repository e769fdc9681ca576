package cli

import (
	"context"
	"strings"

	"github.com/alexanderramin/eventwise/internal/app"
	"github.com/alexanderramin/eventwise/internal/cli/formatter"
	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// turnDoneMsg carries the result of one Converse call.
type turnDoneMsg struct {
	res *app.ConverseResult
	err error
}

// planSavedMsg reports a written plan document.
type planSavedMsg struct {
	path string
	size int
	err  error
}

// chatModel is the bubbletea Model for the interactive planning chat.
type chatModel struct {
	// bubbletea components
	input   textinput.Model
	spinner spinner.Model
	width   int

	// chat state
	ctx       context.Context
	app       *App
	sessionID string
	planDir   string
	stage     domain.Stage
	busy      bool
	busyLabel string

	// history
	history    []string
	historyIdx int

	// lifecycle
	quitting bool
}

func newChatModel(ctx context.Context, a *App, sessionID, planDir string) chatModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.Placeholder = "Describe your event…"
	ti.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = formatter.StylePurple

	if ctx == nil {
		ctx = context.Background()
	}
	return chatModel{
		input:     ti,
		spinner:   sp,
		ctx:       ctx,
		app:       a,
		sessionID: sessionID,
		planDir:   planDir,
		stage:     domain.StageGreeting,
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.Println(formatter.FormatChatWelcome(m.sessionID)),
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(m.promptPrefix())-1, 10)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.updatePrompt(msg)

	case turnDoneMsg:
		return m.handleTurn(msg)

	case planSavedMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Println(planError(msg.err))
		}
		return m, tea.Println(formatter.FormatPlanSaved(msg.path, msg.size))

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}

	var b strings.Builder
	if m.busy {
		b.WriteString(m.spinner.View() + " " + formatter.Dim(m.busyLabel) + "\n")
	} else {
		b.WriteString(formatter.StageBadge(m.stage) + "\n")
	}
	b.WriteString(m.promptPrefix() + m.input.View())
	return b.String()
}

func (m chatModel) promptPrefix() string {
	return formatter.StyleBlue.Render("you") + " " + formatter.Dim("❯") + " "
}

// ── prompt ───────────────────────────────────────────────────────────────────

func (m chatModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		m.addHistory(text)

		switch text {
		case chatCmdQuit, chatCmdExit:
			m.quitting = true
			return m, tea.Quit
		case chatCmdPlan:
			m.busy, m.busyLabel = true, "saving plan"
			return m, tea.Batch(m.spinner.Tick, m.savePlanCmd())
		}

		m.busy, m.busyLabel = true, "thinking"
		return m, tea.Batch(
			tea.Println(formatter.FormatUserMessage(text)),
			m.spinner.Tick,
			m.converseCmd(text),
		)

	case tea.KeyUp:
		m.historyUp()
		return m, nil

	case tea.KeyDown:
		m.historyDown()
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m chatModel) handleTurn(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m, tea.Println(formatter.StyleRed.Render("error: " + msg.err.Error()))
	}
	m.stage = msg.res.Stage()

	cmds := []tea.Cmd{tea.Println(formatConverse(msg.res))}
	if msg.res.Turn.ExportConfirmed {
		m.busy, m.busyLabel = true, "saving plan"
		cmds = append(cmds, m.spinner.Tick, m.savePlanCmd())
	}
	return m, tea.Batch(cmds...)
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m chatModel) converseCmd(text string) tea.Cmd {
	ctx, a, id := m.ctx, m.app, m.sessionID
	return func() tea.Msg {
		res, err := a.Conversation.Converse(ctx, id, text)
		return turnDoneMsg{res: res, err: err}
	}
}

func (m chatModel) savePlanCmd() tea.Cmd {
	ctx, a, id, dir := m.ctx, m.app, m.sessionID, m.planDir
	return func() tea.Msg {
		path, size, err := savePlan(ctx, a, id, dir)
		return planSavedMsg{path: path, size: size, err: err}
	}
}

// ── history ──────────────────────────────────────────────────────────────────

func (m *chatModel) addHistory(line string) {
	m.history = append(m.history, line)
	m.historyIdx = len(m.history)
}

func (m *chatModel) historyUp() {
	if m.historyIdx > 0 {
		m.historyIdx--
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
}

func (m *chatModel) historyDown() {
	if m.historyIdx < len(m.history)-1 {
		m.historyIdx++
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	} else {
		m.historyIdx = len(m.history)
		m.input.SetValue("")
	}
}

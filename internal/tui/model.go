// Package tui is the terminal front end of the portfolio chat widget.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"portfolio-backend/internal/widget"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	roleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F25D94"))
	botStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4"))
)

type (
	typeMsg  struct{}
	replyMsg widget.Message
)

// Model drives the widget from key events.
type Model struct {
	widget     *widget.Widget
	renderer   widget.Renderer
	style      string
	title      string
	typewriter *Typewriter
	role       string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	pending int
	width   int
}

// New builds the model and restores the persisted panel visibility. style is
// a glamour style name; empty picks one from the terminal.
func New(w *widget.Widget, title, style string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about skills, projects, experience... (Enter to send)"
	ti.CharLimit = 2000
	ti.Width = 72

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		widget:     w,
		style:      style,
		title:      title,
		typewriter: NewTypewriter(),
		input:      ti,
		viewport:   viewport.New(76, 16),
		spinner:    sp,
		width:      80,
	}
	m.setRenderer(76)
	w.OnFocus(func() error {
		m.input.Focus()
		return nil
	})
	w.Restore()
	m.refresh()
	return m
}

func (m *Model) setRenderer(width int) {
	r, err := widget.NewRenderer(width, m.style)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return typeMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+o":
			m.widget.Show()
			return m, textinput.Blink
		case "esc":
			m.widget.Hide()
			m.input.Blur()
			return m, nil
		case "enter":
			if !m.widget.Visible() {
				return m, nil
			}
			return m, m.submit()
		}
		if !m.widget.Visible() {
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-9, 3)
		m.input.Width = max(msg.Width-8, 10)
		m.setRenderer(max(msg.Width-8, 10))
		m.refresh()

	case typeMsg:
		text, delay := m.typewriter.Step()
		m.role = text
		return m, tea.Tick(delay, func(time.Time) tea.Msg { return typeMsg{} })

	case replyMsg:
		m.widget.Append(widget.Message(msg))
		m.pending--
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() tea.Cmd {
	text, ok := m.widget.Begin(m.input.Value())
	if !ok {
		return nil
	}
	m.input.Reset()
	m.pending++
	m.refresh()
	if m.pending > 1 {
		// The spinner is already ticking for an earlier request.
		return m.exchange(text)
	}
	return tea.Batch(m.spinner.Tick, m.exchange(text))
}

// exchange runs the request off the event loop. Replies are appended in
// completion order.
func (m *Model) exchange(text string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg(m.widget.Exchange(context.Background(), text))
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m *Model) renderLog() string {
	var b strings.Builder
	for _, msg := range m.widget.Messages() {
		label := botStyle.Render("assistant")
		if msg.Role == widget.RoleUser {
			label = userStyle.Render("you")
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(widget.Render(m.renderer, msg))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(roleStyle.Render(m.role + "▌"))
	b.WriteString("\n\n")

	if !m.widget.Visible() {
		b.WriteString(hintStyle.Render("ctrl+o chat • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(panelStyle.Width(max(m.width-2, 10)).Render(m.viewport.View()))
	b.WriteString("\n")
	if m.pending > 0 {
		b.WriteString(m.spinner.View() + " thinking...\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter send • esc close • ctrl+c quit"))
	return b.String()
}

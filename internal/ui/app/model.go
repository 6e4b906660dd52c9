package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "pokerlog/internal/modules/session/dto"
	apperrors "pokerlog/internal/platform/errors"
	"pokerlog/internal/ui/components"
	"pokerlog/internal/ui/theme"
)

// SessionPort is what the HUD needs from the session module.
type SessionPort interface {
	GetActive(ctx context.Context) (sessiondto.SessionOutput, error)
	Stack(ctx context.Context, raw string) (sessiondto.SessionOutput, error)
	Note(ctx context.Context, text string, stackBefore int64) (sessiondto.SessionOutput, error)
	Field(ctx context.Context, fieldSize, remaining int) (sessiondto.SessionOutput, error)
	Bounty(ctx context.Context, count int) (sessiondto.SessionOutput, error)
	AddOn(ctx context.Context, amount int64) (sessiondto.SessionOutput, error)
	Rebuy(ctx context.Context) (sessiondto.SessionOutput, error)
	NextLevel(ctx context.Context) (sessiondto.SessionOutput, error)
	Pause(ctx context.Context) (sessiondto.SessionOutput, error)
	Resume(ctx context.Context) (sessiondto.SessionOutput, error)
}

const refreshEvery = 5 * time.Second

type tickMsg time.Time

type sessionMsg struct {
	action string
	out    sessiondto.SessionOutput
	err    error
}

type keyMap struct {
	Help    key.Binding
	Palette key.Binding
	Pause   key.Binding
	Level   key.Binding
	Rebuy   key.Binding
	Bounty  key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Level:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next level")),
		Rebuy:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rebuy")),
		Bounty:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bounty")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Palette, k.Pause, k.Level, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Palette, k.Pause, k.Level},
		{k.Rebuy, k.Bounty},
		{k.Help, k.Quit},
	}
}

// Model is the live session HUD. It polls the active session and forwards
// keys and palette commands to the session port.
type Model struct {
	session  SessionPort
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette

	current   sessiondto.SessionOutput
	hasActive bool
	status    string
	width     int
	height    int
}

func NewModel(session SessionPort) Model {
	return Model{
		session: session,
		keys:    defaultKeys(),
		help:    help.New(),
		palette: components.NewPalette(),
		status:  "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.call("refresh", m.session.GetActive), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) call(action string, fn func(context.Context) (sessiondto.SessionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(context.Background())
		return sessionMsg{action: action, out: out, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width

	case tickMsg:
		return m, tea.Batch(m.call("refresh", m.session.GetActive), tick())

	case sessionMsg:
		m = m.apply(msg)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case !m.hasActive:
			m.status = "no active session"
		case key.Matches(msg, m.keys.Pause):
			if m.current.Status == "paused" {
				return m, m.call("resume", m.session.Resume)
			}
			return m, m.call("pause", m.session.Pause)
		case key.Matches(msg, m.keys.Level):
			return m, m.call("level", m.session.NextLevel)
		case key.Matches(msg, m.keys.Rebuy):
			return m, m.call("rebuy", m.session.Rebuy)
		case key.Matches(msg, m.keys.Bounty):
			return m, m.call("bounty", func(ctx context.Context) (sessiondto.SessionOutput, error) {
				return m.session.Bounty(ctx, 1)
			})
		}
	}
	return m, nil
}

func (m Model) apply(msg sessionMsg) Model {
	if msg.err != nil {
		if errors.Is(msg.err, apperrors.ErrNoActiveSession) {
			m.hasActive = false
			m.current = sessiondto.SessionOutput{}
			if msg.action == "refresh" {
				return m
			}
		}
		m.status = msg.action + ": " + msg.err.Error()
		return m
	}
	m.current = msg.out
	m.hasActive = true
	if msg.action != "refresh" {
		m.status = msg.action + " ok"
	}
	return m
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	inv, ok := components.ParseInvocation(input)
	if !ok {
		return m, nil
	}
	args := inv.Args

	switch inv.Name {
	case "stack", "note":
		if inv.Rest == "" {
			m.status = components.Usage(inv.Name)
			return m, nil
		}
		if inv.Name == "stack" {
			return m, m.call("stack", func(ctx context.Context) (sessiondto.SessionOutput, error) {
				return m.session.Stack(ctx, inv.Rest)
			})
		}
		return m, m.call("note", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.session.Note(ctx, inv.Rest, -1)
		})
	case "field":
		if len(args) != 2 {
			m.status = components.Usage(inv.Name)
			return m, nil
		}
		entrants, err1 := strconv.Atoi(args[0])
		remaining, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			m.status = "field values must be numbers"
			return m, nil
		}
		return m, m.call("field", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.session.Field(ctx, entrants, remaining)
		})
	case "bounty":
		count := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				m.status = "invalid bounty count"
				return m, nil
			}
			count = n
		}
		return m, m.call("bounty", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.session.Bounty(ctx, count)
		})
	case "addon":
		if len(args) != 1 {
			m.status = components.Usage(inv.Name)
			return m, nil
		}
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			m.status = "invalid amount"
			return m, nil
		}
		return m, m.call("addon", func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.session.AddOn(ctx, amount)
		})
	case "level:next":
		return m, m.call("level", m.session.NextLevel)
	case "pause":
		return m, m.call("pause", m.session.Pause)
	case "resume":
		return m, m.call("resume", m.session.Resume)
	default:
		m.status = components.Usage(inv.Name)
		return m, nil
	}
}

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case !m.hasActive:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("no active session: start one with `pokerlog session start <id>`"))
	default:
		content = m.renderSession()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	title := "pokerlog"
	if m.hasActive {
		s := m.current
		title += "  " + theme.Hot.Render(strings.TrimSpace(s.GameLabel+" "+s.Stakes)) + "  " + theme.Muted.Render(s.Location)
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(title) + "\n"
}

func (m Model) renderSession() string {
	s := m.current
	mt := s.Metrics
	var left strings.Builder
	fmt.Fprintf(&left, "%s\n", theme.Title.Render("Stack"))
	fmt.Fprintf(&left, "%d  (%s)\n", mt.LatestStack, s.Status)
	fmt.Fprintf(&left, "elapsed %s\n", mt.Duration.Truncate(time.Minute))
	if s.Kind == "cash" {
		fmt.Fprintf(&left, "in for %d\n", s.BuyInTotal)
		return theme.PaneActive.Render(left.String())
	}

	fmt.Fprintf(&left, "%s   %s\n",
		theme.Zone(mt.BBZone).Render(fmt.Sprintf("%.1f BB", mt.BB)),
		theme.Zone(mt.MZone).Render(fmt.Sprintf("M %.1f", mt.M)))
	if mt.Advice != "" {
		left.WriteString(theme.Zone(mt.MZone).Render(mt.Advice) + "\n")
	}

	var right strings.Builder
	fmt.Fprintf(&right, "%s\n", theme.Title.Render("Level"))
	if lvl := s.CurrentLevel; lvl != nil {
		if lvl.IsBreak {
			fmt.Fprintf(&right, "break %s (%dm)\n", lvl.BreakLabel, lvl.DurationMinutes)
		} else {
			fmt.Fprintf(&right, "L%d  %d/%d ante %d (%dm)\n", lvl.DisplayNumber, lvl.SmallBlind, lvl.BigBlind, lvl.Ante, lvl.DurationMinutes)
		}
	}
	fmt.Fprintf(&right, "orbit %d\n", mt.OrbitCost)
	if s.FieldSize > 0 {
		fmt.Fprintf(&right, "field %d/%d  avg %d\n", s.PlayersRemaining, s.FieldSize, mt.AverageStack)
		fmt.Fprintf(&right, "bubble %d  pool %d\n", mt.BubbleDistance, mt.PrizePool)
	}
	if s.RebuysUsed > 0 || s.BountiesCollected > 0 {
		fmt.Fprintf(&right, "rebuys %d  bounties %d\n", s.RebuysUsed, s.BountiesCollected)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, theme.PaneActive.Render(left.String()), " ", theme.Pane.Render(right.String()))
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  ::command  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

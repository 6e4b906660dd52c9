package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"pokerlog/internal/ui/theme"
)

// Command is one palette entry understood by the HUD.
type Command struct {
	Name  string
	Usage string
}

// Commands lists what the HUD executes, in display order.
var Commands = []Command{
	{Name: "stack", Usage: "<chips|message>"},
	{Name: "note", Usage: "<text>"},
	{Name: "field", Usage: "<entrants> <remaining>"},
	{Name: "bounty", Usage: "[count]"},
	{Name: "addon", Usage: "<amount>"},
	{Name: "level:next"},
	{Name: "pause"},
	{Name: "resume"},
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + c.Usage)
}

// Usage returns "usage: <name> <args>" for a known command name.
func Usage(name string) string {
	for _, c := range Commands {
		if c.Name == name {
			return "usage: " + c.String()
		}
	}
	return "unknown command: " + name
}

// Invocation is a submitted palette line split into the command name, the raw
// remainder, and its whitespace-separated arguments.
type Invocation struct {
	Name string
	Rest string
	Args []string
}

func ParseInvocation(input string) (Invocation, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Invocation{}, false
	}
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), fields[0]))
	return Invocation{Name: name, Rest: rest, Args: fields[1:]}, true
}

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

const maxHints = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is the ":" overlay. Submitted lines are kept so up/down can recall them.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	history []string
	recall  int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "stack 45k, note ..., level:next"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.recall = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if val != "" {
				p.history = append(p.history, val)
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "up":
			if p.recall > 0 {
				p.recall--
				p.input.SetValue(p.history[p.recall])
				p.input.CursorEnd()
			}
			return p, nil
		case "down":
			if p.recall < len(p.history)-1 {
				p.recall++
				p.input.SetValue(p.history[p.recall])
			} else {
				p.recall = len(p.history)
				p.input.SetValue("")
			}
			p.input.CursorEnd()
			return p, nil
		case "tab":
			if hints := matchingCommands(p.input.Value()); len(hints) > 0 {
				p.input.SetValue(hints[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

type commandSource []Command

func (s commandSource) String(i int) string { return s[i].Name }
func (s commandSource) Len() int            { return len(s) }

// matchingCommands ranks commands by fuzzy match on the first word typed so far.
func matchingCommands(typed string) []Command {
	word, _, _ := strings.Cut(strings.TrimSpace(typed), " ")
	if word == "" {
		return Commands
	}
	matches := fuzzy.FindFrom(strings.ToLower(word), commandSource(Commands))
	out := make([]Command, 0, len(matches))
	for _, m := range matches {
		out = append(out, Commands[m.Index])
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	hints := matchingCommands(p.input.Value())
	if len(hints) > maxHints {
		hints = hints[:maxHints]
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(hints) > 0 {
		sb.WriteString("\n")
		for _, h := range hints {
			sb.WriteString(hintStyle.Render("  "+h.String()) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParseInvocation(t *testing.T) {
	t.Parallel()
	inv, ok := ParseInvocation("  Stack  down to 45k ")
	if !ok {
		t.Fatal("expected invocation")
	}
	if inv.Name != "stack" || inv.Rest != "down to 45k" || len(inv.Args) != 3 {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if _, ok := ParseInvocation("   "); ok {
		t.Fatal("blank input should not parse")
	}
}

func TestUsage(t *testing.T) {
	t.Parallel()
	if got := Usage("field"); got != "usage: field <entrants> <remaining>" {
		t.Fatalf("unexpected usage %q", got)
	}
	if got := Usage("shuffle"); got != "unknown command: shuffle" {
		t.Fatalf("unexpected usage %q", got)
	}
}

func TestPaletteSubmitAndRecall(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("stack 10k")
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() {
		t.Fatal("palette should close on enter")
	}
	if msg, ok := cmd().(PaletteSubmitMsg); !ok || msg.Input != "stack 10k" {
		t.Fatalf("unexpected submit msg: %#v", cmd())
	}

	p.Open()
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if p.input.Value() != "stack 10k" {
		t.Fatalf("expected recalled command, got %q", p.input.Value())
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if p.input.Value() != "" {
		t.Fatalf("expected empty input past the newest entry, got %q", p.input.Value())
	}

	p, cmd = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(PaletteCancelMsg); !ok || p.Visible() {
		t.Fatal("esc should cancel and close")
	}
}

func TestPaletteTabCompletes(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p.input.SetValue("bou")
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	if p.input.Value() != "bounty " {
		t.Fatalf("unexpected completion %q", p.input.Value())
	}
	if got := matchingCommands(""); len(got) != len(Commands) {
		t.Fatalf("empty input should list every command, got %d", len(got))
	}
}

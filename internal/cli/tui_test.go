package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/blokdust/pkg/blocks"
)

func browserComposition(t *testing.T, n int) *blocks.Composition {
	t.Helper()
	c := blocks.NewComposition()
	for i := 1; i <= n; i++ {
		kind := blocks.KindGain
		if i == 1 {
			kind = blocks.KindTone
		}
		b := blocks.NewBlock(i, kind, blocks.Point{})
		b.ZIndex = i
		if err := c.Graph.Add(b); err != nil {
			t.Fatal(err)
		}
	}
	if n > 1 {
		if err := c.Graph.Connect(1, 2); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestBlockBrowserNavigation(t *testing.T) {
	m := NewBlockBrowserModel(browserComposition(t, 8))
	m.Height = 3

	got := press(m, "down", "down", "down", "down").(BlockBrowserModel)
	if got.Cursor != 4 || got.Offset != 2 {
		t.Errorf("after 4 downs: cursor %d offset %d, want 4 and 2", got.Cursor, got.Offset)
	}
	got = press(got, "up", "up", "up").(BlockBrowserModel)
	if got.Cursor != 1 || got.Offset != 1 {
		t.Errorf("after 3 ups: cursor %d offset %d, want 1 and 1", got.Cursor, got.Offset)
	}
	got = press(got, "G").(BlockBrowserModel)
	if got.Cursor != 7 || got.Offset != 5 {
		t.Errorf("after G: cursor %d offset %d, want 7 and 5", got.Cursor, got.Offset)
	}
	got = press(got, "down", "g").(BlockBrowserModel)
	if got.Cursor != 0 || got.Offset != 0 {
		t.Errorf("after g: cursor %d offset %d", got.Cursor, got.Offset)
	}
	if _, cmd := got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestBlockBrowserView(t *testing.T) {
	m := NewBlockBrowserModel(browserComposition(t, 2))
	view := m.View()
	for _, want := range []string{"tone #1", "frequency", "chain      2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty := NewBlockBrowserModel(blocks.NewComposition())
	if empty.Selected() != nil || !strings.Contains(empty.View(), "empty") {
		t.Error("empty browser should say so and have no selection")
	}
}

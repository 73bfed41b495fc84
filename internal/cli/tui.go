package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blokdust/pkg/blocks"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// BlockBrowserModel - Interactive block browser
// =============================================================================

// BlockBrowserModel is the bubbletea model for browsing the blocks of a
// composition. The detail pane shows the selected block's parameters and,
// for sources, the effect chain its particles feed.
type BlockBrowserModel struct {
	Blocks []*blocks.Block
	Cursor int
	Height int
	Offset int
}

// NewBlockBrowserModel creates a browser over c. Chains are derived from the
// current connections before browsing.
func NewBlockBrowserModel(c *blocks.Composition) BlockBrowserModel {
	c.Graph.Refresh(nil)
	return BlockBrowserModel{
		Blocks: c.Graph.Sorted(),
		Height: 15,
	}
}

// Selected returns the block under the cursor, or nil for an empty composition.
func (m BlockBrowserModel) Selected() *blocks.Block {
	if len(m.Blocks) == 0 {
		return nil
	}
	return m.Blocks[m.Cursor]
}

func (m BlockBrowserModel) Init() tea.Cmd {
	return nil
}

func (m BlockBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Blocks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Blocks); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m BlockBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Blocks"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Blocks) == 0 {
		b.WriteString(listDimStyle.Render("  composition is empty"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Blocks))
	b.WriteString(blockTable(m.Blocks[m.Offset:end], m.Cursor-m.Offset).Render())
	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(blockDetail(m.Selected())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Blocks))))

	return b.String()
}

// blockDetail describes one block for the detail pane.
func blockDetail(blk *blocks.Block) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d  %s\n", blk.Kind, blk.ID, listDimStyle.Render(blk.Role().String()))
	for _, name := range slices.Sorted(maps.Keys(blk.Params)) {
		fmt.Fprintf(&b, "  %-10s %g\n", name, blk.Params[name])
	}
	if blk.IsSource() {
		b.WriteString("  chain      " + joinIDs(blk.Chain()))
	} else {
		b.WriteString("  inputs     " + joinIDs(blk.Inputs()))
	}
	return b.String()
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "—"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " → ")
}

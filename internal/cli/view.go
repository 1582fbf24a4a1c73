package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/scottvr/phart/pkg/graph"
	"github.com/scottvr/phart/pkg/render"
)

// newViewCmd creates the view command: render a graph file and browse the
// diagram in a scrollable pager. Large diagrams outgrow a terminal screen
// quickly; the pager keeps them navigable without shelling out to less.
func newViewCmd() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Browse a rendered diagram interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), args[0], &flags)
		},
	}

	addLayoutFlags(cmd, &flags, defaultOptions())
	return cmd
}

func runView(ctx context.Context, path string, flags *layoutFlags) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}
	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return fmt.Errorf("read graph: %w", err)
	}
	text, err := render.Render(g, opts)
	if err != nil {
		return err
	}

	model := newPagerModel(path, text)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// PagerModel - Scrollable diagram viewer
// =============================================================================

// PagerModel is the bubbletea model for scrolling through a rendered
// diagram.
type PagerModel struct {
	Title  string
	Lines  []string
	Offset int
	Width  int
	Height int
}

// newPagerModel creates a pager over the rendered text.
func newPagerModel(title, text string) PagerModel {
	return PagerModel{
		Title:  title,
		Lines:  strings.Split(text, "\n"),
		Height: 24,
		Width:  80,
	}
}

func (m PagerModel) Init() tea.Cmd {
	return nil
}

func (m PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Offset = m.clampOffset(m.Offset)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Offset = m.clampOffset(m.Offset - 1)
		case "down", "j":
			m.Offset = m.clampOffset(m.Offset + 1)
		case "pgup", "b":
			m.Offset = m.clampOffset(m.Offset - m.bodyHeight())
		case "pgdown", "f", " ":
			m.Offset = m.clampOffset(m.Offset + m.bodyHeight())
		case "g", "home":
			m.Offset = 0
		case "G", "end":
			m.Offset = m.clampOffset(len(m.Lines))
		}
	}
	return m, nil
}

func (m PagerModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title) + "\n")

	end := m.Offset + m.bodyHeight()
	if end > len(m.Lines) {
		end = len(m.Lines)
	}
	for _, line := range m.Lines[m.Offset:end] {
		b.WriteString(line + "\n")
	}
	for i := end - m.Offset; i < m.bodyHeight(); i++ {
		b.WriteString("\n")
	}

	b.WriteString(StyleDim.Render(fmt.Sprintf("%d-%d/%d · ↑↓ scroll · q quit", m.Offset+1, end, len(m.Lines))))
	return b.String()
}

// bodyHeight is the number of content rows between the title and footer.
func (m PagerModel) bodyHeight() int {
	h := m.Height - 2
	if h < 1 {
		return 1
	}
	return h
}

// clampOffset keeps the scroll position inside the content.
func (m PagerModel) clampOffset(o int) int {
	maxOffset := len(m.Lines) - m.bodyHeight()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if o > maxOffset {
		o = maxOffset
	}
	if o < 0 {
		o = 0
	}
	return o
}

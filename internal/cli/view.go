package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/pipeline"
)

// viewCommand creates the view command, an interactive year browser.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		lf layoutFlags
		sf sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "view [bookings-file]",
		Short: "Browse yearly occupancy in the terminal",
		Long: `Browse yearly occupancy in the terminal.

Keys:
  ←/→ or h/l   previous / next year
  ↑/↓ or k/j   scroll
  t            back to the starting year
  q            quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args, lf, &sf)
		},
	}

	lf.register(cmd)
	sf.register(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, args []string, lf layoutFlags, sf *sourceFlags) error {
	runner, err := c.newRunner(ctx, sf, args)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	base := c.options(lf, sf)
	base.Formats = []string{pipeline.FormatText}
	if base.Year == 0 {
		base.Year = time.Now().Year()
	}
	load := func(ctx context.Context, year int) (*pipeline.Result, error) {
		opts := base.Clone()
		opts.Year = year
		return runner.Execute(ctx, opts)
	}

	// The TUI owns the terminal; keep log lines out of it.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.ErrorLevel)
	defer c.Logger.SetLevel(level)

	_, err = tea.NewProgram(newViewModel(ctx, base.Year, load), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// viewModel - Interactive year browser
// =============================================================================

// Year bounds accepted by the pipeline.
const (
	minViewYear = 1900
	maxViewYear = 9999
)

type yearLoader func(ctx context.Context, year int) (*pipeline.Result, error)

// yearLoadedMsg carries the result of loading one year.
type yearLoadedMsg struct {
	year int
	res  *pipeline.Result
	err  error
}

// viewModel is the bubbletea model of the year browser.
type viewModel struct {
	ctx   context.Context
	load  yearLoader
	start int

	year    int
	loading bool
	err     error
	lines   []string
	stats   pipeline.Stats

	offset int
	height int
}

func newViewModel(ctx context.Context, year int, load yearLoader) viewModel {
	return viewModel{ctx: ctx, load: load, start: year, year: year, loading: true, height: 20}
}

func (m viewModel) fetch(year int) tea.Cmd {
	return func() tea.Msg {
		res, err := m.load(m.ctx, year)
		return yearLoadedMsg{year: year, res: res, err: err}
	}
}

func (m viewModel) Init() tea.Cmd {
	return m.fetch(m.year)
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			return m.gotoYear(m.year - 1)
		case "right", "l":
			return m.gotoYear(m.year + 1)
		case "t":
			return m.gotoYear(m.start)
		case "up", "k":
			m.scroll(-1)
		case "down", "j":
			m.scroll(1)
		case "pgup":
			m.scroll(-m.height)
		case "pgdown", " ":
			m.scroll(m.height)
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 5
		if m.height < 5 {
			m.height = 5
		}
		m.scroll(0)
	case yearLoadedMsg:
		if msg.year != m.year {
			return m, nil // stale
		}
		m.loading = false
		m.err = msg.err
		m.lines = nil
		if msg.err == nil {
			m.lines = strings.Split(strings.TrimRight(string(msg.res.Artifacts[pipeline.FormatText]), "\n"), "\n")
			m.stats = msg.res.Stats
		}
		m.scroll(0)
	}
	return m, nil
}

func (m viewModel) gotoYear(year int) (tea.Model, tea.Cmd) {
	if year < minViewYear || year > maxViewYear || year == m.year {
		return m, nil
	}
	m.year = year
	m.loading = true
	m.offset = 0
	return m, m.fetch(year)
}

func (m *viewModel) scroll(delta int) {
	m.offset += delta
	if limit := len(m.lines) - m.height; m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Occupancy %d", m.year)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ year  ↑/↓ scroll  t reset  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(StyleDim.Render("Loading..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
		b.WriteString("\n")
	default:
		end := m.offset + m.height
		if end > len(m.lines) {
			end = len(m.lines)
		}
		for _, line := range m.lines[m.offset:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d supports · %d bookings · %d rows", m.stats.Supports, m.stats.Bookings, m.stats.Rows)))
		if m.stats.Skipped > 0 {
			b.WriteString(StyleWarning.Render(fmt.Sprintf(" · %d skipped", m.stats.Skipped)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	m "securehls.dev/pkg/securehls/internal/model"
)

// reservedLines is the space taken by the header and footer of the pager.
const reservedLines = 4

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// TUI implements UI using Bubble Tea. Output is buffered during the run and
// shown on Wait, in a scrollable pager when it does not fit the terminal.
type TUI struct {
	output io.Writer

	mu       sync.Mutex
	mode     StartMode
	sections []string
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start resets the buffered output and records the mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = newStartConfig(options...).Mode()
	t.sections = nil

	return nil
}

// Close finalizes the UI.
func (t *TUI) Close(_ context.Context) {}

func (t *TUI) add(section string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sections = append(t.sections, section)
}

// DisplayFindings buffers the finding lines.
func (t *TUI) DisplayFindings(ctx context.Context, findings []m.Finding) {
	if ctx.Err() != nil {
		return
	}

	t.add(renderFindings(findings))
}

// DisplayScore buffers the score tables.
func (t *TUI) DisplayScore(ctx context.Context, score m.ScoreResult) {
	if ctx.Err() != nil {
		return
	}

	t.add(titleStyle.Render("Tool "+score.Tool) + "\n" + renderFileScores(score) + "\n" + renderSummary(score))
}

// DisplayInstrumentReport buffers the instrumentation outcome.
func (t *TUI) DisplayInstrumentReport(ctx context.Context, report m.InstrumentReport, diffs map[m.Path]string) {
	if ctx.Err() != nil {
		return
	}

	t.add(renderInstrumentReport(report, diffs))
}

// DisplayCollectStatus buffers one collection line.
func (t *TUI) DisplayCollectStatus(ctx context.Context, status CollectStatus) {
	if ctx.Err() != nil {
		return
	}

	line := renderCollectStatus(status)
	if status.Error != nil {
		line = warningStyle.Render(line)
	}

	t.add(line + "\n")
}

// DisplayWarning buffers a warning.
func (t *TUI) DisplayWarning(ctx context.Context, message string) {
	if ctx.Err() != nil {
		return
	}

	t.add(warningStyle.Render("warning: "+message) + "\n")
}

// Wait shows the buffered output and, when paging, blocks until the user
// quits.
func (t *TUI) Wait(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	content := strings.Join(t.sections, "\n")
	mode := t.mode
	t.mu.Unlock()

	model := newPagerModel("SecureHLS "+mode.String(), content)

	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	if !model.needsPagination() {
		_, _ = fmt.Fprint(t.output, model.View())
		return
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		_, _ = fmt.Fprint(t.output, model.plain())
	}
}

// pagerModel is the Bubble Tea model scrolling over the run output.
type pagerModel struct {
	title    string
	content  string
	lines    int
	width    int
	height   int
	viewport viewport.Model
	quitting bool
}

func newPagerModel(title, content string) pagerModel {
	vp := viewport.New(0, 0)
	vp.SetContent(content)

	return pagerModel{
		title:    title,
		content:  content,
		lines:    strings.Count(content, "\n") + 1,
		viewport: vp,
	}
}

func (p pagerModel) resize(width, height int) pagerModel {
	p.width = width
	p.height = height
	p.viewport.Width = width
	p.viewport.Height = max(height-reservedLines, 1)

	return p
}

func (p pagerModel) needsPagination() bool {
	return p.height > 0 && p.lines > p.height-reservedLines
}

func (p pagerModel) Init() tea.Cmd {
	return nil
}

func (p pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return p.resize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			p.quitting = true
			return p, tea.Quit
		case "g", "home":
			p.viewport.GotoTop()
			return p, nil
		case "G", "end":
			p.viewport.GotoBottom()
			return p, nil
		}
	}

	var cmd tea.Cmd

	p.viewport, cmd = p.viewport.Update(msg)

	return p, cmd
}

func (p pagerModel) header() string {
	return titleStyle.Render(p.title) + "\n\n"
}

func (p pagerModel) plain() string {
	return p.header() + p.content
}

func (p pagerModel) View() string {
	if !p.needsPagination() {
		return p.plain()
	}

	footer := fmt.Sprintf("%3.f%% | ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit", p.viewport.ScrollPercent()*100)

	return p.header() + p.viewport.View() + "\n" + footerStyle.Render(footer)
}

package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "securehls.dev/pkg/securehls/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayFindings prints one line per finding.
func (s *SimpleUI) DisplayFindings(ctx context.Context, findings []m.Finding) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s", renderFindings(findings))
}

// DisplayScore prints the per-file breakdown and the summary of one tool.
func (s *SimpleUI) DisplayScore(ctx context.Context, score m.ScoreResult) {
	if ctx.Err() != nil {
		return
	}

	s.printf("\n%s\n%s", renderFileScores(score), renderSummary(score))
}

// DisplayInstrumentReport prints the outcome of each kernel and, when given,
// its diff.
func (s *SimpleUI) DisplayInstrumentReport(ctx context.Context, report m.InstrumentReport, diffs map[m.Path]string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s", renderInstrumentReport(report, diffs))
}

// DisplayCollectStatus prints where a log was written, or why it was not.
func (s *SimpleUI) DisplayCollectStatus(ctx context.Context, status CollectStatus) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n", renderCollectStatus(status))
}

// DisplayWarning prints a warning line.
func (s *SimpleUI) DisplayWarning(ctx context.Context, message string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("warning: %s\n", message)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderFindings(findings []m.Finding) string {
	if len(findings) == 0 {
		return "No findings\n"
	}

	var b strings.Builder
	for _, f := range findings {
		b.WriteString(f.String())
		b.WriteString("\n")
	}

	return b.String()
}

func joinTypes(types []m.BugType) string {
	if len(types) == 0 {
		return "-"
	}

	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}

	return strings.Join(parts, ",")
}

func newTable(buf *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	return table
}

func renderFileScores(score m.ScoreResult) string {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"Path", "Expected", "Detected", "TP", "FP", "FN"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	for _, f := range score.Files {
		detected := joinTypes(f.Detected)
		if f.NoEvidence {
			detected = "no evidence"
		} else if f.Unclassified > 0 {
			detected += fmt.Sprintf(" (+%d unclassified)", f.Unclassified)
		}

		table.Append([]string{
			string(f.Path), joinTypes(f.Expected), detected,
			fmt.Sprintf("%d", f.TP), fmt.Sprintf("%d", f.FP), fmt.Sprintf("%d", f.FN),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Files %d", len(score.Files)), "", "",
		fmt.Sprintf("%d", score.TP), fmt.Sprintf("%d", score.FP), fmt.Sprintf("%d", score.FN),
	})

	table.Render()

	return buf.String()
}

func renderSummary(score m.ScoreResult) string {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"Tool", "TP", "FP", "FN", "Precision", "Recall"})
	table.Append([]string{
		score.Tool,
		fmt.Sprintf("%d", score.TP),
		fmt.Sprintf("%d", score.FP),
		fmt.Sprintf("%d", score.FN),
		fmt.Sprintf("%.3f", score.Precision),
		fmt.Sprintf("%.3f", score.Recall),
	})
	table.Render()

	return buf.String()
}

func renderInstrumentReport(report m.InstrumentReport, diffs map[m.Path]string) string {
	var (
		buf     bytes.Buffer
		skipped []string
	)

	table := newTable(&buf, []string{"Source", "Output", "Function", "Applied", "Skipped", "Error"})

	for _, e := range report.Entries {
		applied, skippedCount := 0, 0

		for _, g := range e.Guards {
			if g.Status == m.GuardApplied {
				applied++
				continue
			}

			skippedCount++
			skipped = append(skipped, fmt.Sprintf("%s: skipped %s guard before %q: %s", e.Source, g.Guard.BugType, g.Guard.Anchor, g.Reason))
		}

		output := string(e.Output)
		if output == "" {
			output = "-"
		} else if e.Unchanged {
			output += " (unchanged)"
		}

		function := e.Function
		if e.Guarded != "" {
			function += " -> " + e.Guarded
		}

		table.Append([]string{
			string(e.Source), output, function,
			fmt.Sprintf("%d", applied), fmt.Sprintf("%d", skippedCount), e.Error,
		})
	}

	table.Render()

	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n", report.RunID)
	b.WriteString(buf.String())

	for _, line := range skipped {
		b.WriteString(line)
		b.WriteString("\n")
	}

	paths := make([]m.Path, 0, len(diffs))
	for p := range diffs {
		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, p := range paths {
		if diffs[p] == "" {
			continue
		}

		b.WriteString("\n")
		b.WriteString(diffs[p])
	}

	return b.String()
}

func renderCollectStatus(status CollectStatus) string {
	if status.Error != nil {
		return fmt.Sprintf("%s %s: %v", status.Tool, status.Path, status.Error)
	}

	return fmt.Sprintf("%s %s -> %s", status.Tool, status.Path, status.Log)
}

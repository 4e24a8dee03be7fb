package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"gopkg.in/yaml.v3"
	m "securehls.dev/pkg/securehls/internal/model"
	"securehls.dev/pkg/securehls/pkg"
)

const (
	// InstrumentReportFile is the default name of the instrument run record.
	InstrumentReportFile = "instrument-report.yaml"

	sarifToolName = "securehls"
	sarifToolURI  = "https://securehls.dev"
	reportPerm    = 0o644
)

// ReportStore persists run artifacts.
type ReportStore interface {
	SaveInstrumentReport(ctx context.Context, path m.Path, report m.InstrumentReport) error
	LoadInstrumentReport(ctx context.Context, path m.Path) (m.InstrumentReport, error)
	SaveSARIF(ctx context.Context, path m.Path, findings []m.Finding) error
}

// LocalReportStore writes reports to the local filesystem.
type LocalReportStore struct{}

// NewLocalReportStore creates a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveInstrumentReport writes the report as YAML.
func (s *LocalReportStore) SaveInstrumentReport(ctx context.Context, path m.Path, report m.InstrumentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode instrument report: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode instrument report: %w", err)
	}

	return pkg.WriteFileAtomic(string(path), buf.Bytes(), reportPerm)
}

// LoadInstrumentReport reads a report written by SaveInstrumentReport.
func (s *LocalReportStore) LoadInstrumentReport(ctx context.Context, path m.Path) (m.InstrumentReport, error) {
	var report m.InstrumentReport

	if err := ctx.Err(); err != nil {
		return report, err
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		return report, err
	}

	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("decode instrument report %s: %w", path, err)
	}

	return report, nil
}

// SaveSARIF writes findings as a SARIF 2.1.0 log with one rule per bug type.
func (s *LocalReportStore) SaveSARIF(ctx context.Context, path m.Path, findings []m.Finding) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	report, err := BuildSARIF(findings)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}

	return pkg.WriteFileAtomic(string(path), buf.Bytes(), reportPerm)
}

// BuildSARIF converts findings into a SARIF report.
func BuildSARIF(findings []m.Finding) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)

	for _, f := range findings {
		rule := run.AddRule(string(f.BugType)).WithDescription(ruleDescription(f.BugType))

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(string(f.SourcePath))).
				WithRegion(sarif.NewRegion().WithStartLine(f.Line)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel("error").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	report.AddRun(run)

	return report, nil
}

func ruleDescription(t m.BugType) string {
	switch t {
	case m.BugOOBRead:
		return "array read outside its declared bounds"
	case m.BugOOBWrite:
		return "array write outside its declared bounds"
	case m.BugNullDeref:
		return "dereference of a pointer that may be NULL"
	default:
		return string(t)
	}
}

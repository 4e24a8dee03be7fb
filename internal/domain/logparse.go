package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
	m "securehls.dev/pkg/securehls/internal/model"
)

var (
	// ErrUnparsableLog is returned when a non-empty log matches no parser rule.
	ErrUnparsableLog = errors.New("unparsable log")
	// ErrUnknownParser is returned for a parser name that is not registered.
	ErrUnknownParser = errors.New("unknown log parser")
)

// LogParser extracts diagnostic records from the text of a tool log.
type LogParser func(text string) ([]m.DiagnosticRecord, error)

// Parser names.
const (
	ParserClang     = "clang"
	ParserScanBuild = "scanbuild"
	ParserCppcheck  = "cppcheck"
	ParserInfer     = "infer"
	ParserSARIF     = "sarif"
)

var logParsers = map[string]LogParser{
	ParserClang:     ParseClangLog,
	ParserScanBuild: ParseClangLog,
	ParserCppcheck:  ParseCppcheckLog,
	ParserInfer:     ParseInferLog,
	ParserSARIF:     ParseSARIFLog,
}

// ParserFor returns the registered parser for name.
func ParserFor(name string) (LogParser, error) {
	p, ok := logParsers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownParser, name, strings.Join(parserNames(), ", "))
	}

	return p, nil
}

func parserNames() []string {
	names := make([]string, 0, len(logParsers))
	for name := range logParsers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ParseLog parses text with the parser registered under tool.
func ParseLog(tool, text string) ([]m.DiagnosticRecord, error) {
	parser, err := ParserFor(tool)
	if err != nil {
		return nil, err
	}

	return parser(text)
}

// file:line[:col]: warning|error: message
var clangDiagnostic = regexp.MustCompile(`^(?:.*?):(\d+):(?:\d+:)?\s*(?:fatal )?(?:warning|error):\s*(.*)$`)

// ParseClangLog keeps every line mentioning "warning:" or "error:". It also
// serves scan-build, which prints clang-style diagnostics.
func ParseClangLog(text string) ([]m.DiagnosticRecord, error) {
	var records []m.DiagnosticRecord

	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, "warning:") && !strings.Contains(line, "error:") {
			continue
		}

		rec := m.DiagnosticRecord{Message: line, Raw: raw}

		if match := clangDiagnostic.FindStringSubmatch(line); match != nil {
			rec.Line, _ = strconv.Atoi(match[1])
			rec.Message = match[2]
		}

		records = append(records, rec)
	}

	return records, unparsable(text, records)
}

// ParseCppcheckLog reads the {id}::{file}::{line}::{message} template.
// Lines that do not follow the template are kept whole; progress lines are
// dropped.
func ParseCppcheckLog(text string) ([]m.DiagnosticRecord, error) {
	var records []m.DiagnosticRecord

	for _, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" || cppcheckProgress(line) {
			continue
		}

		rec := m.DiagnosticRecord{Message: line, Raw: raw}

		if parts := strings.SplitN(line, "::", 4); len(parts) == 4 {
			rec.Line, _ = strconv.Atoi(strings.TrimSpace(parts[2]))
			rec.Message = strings.TrimSpace(parts[3])
		}

		records = append(records, rec)
	}

	return records, nil
}

func cppcheckProgress(line string) bool {
	return strings.HasPrefix(line, "Checking ") ||
		strings.HasSuffix(line, "files checked") ||
		strings.Contains(line, "files checked ")
}

type inferIssue struct {
	BugType   string `json:"bug_type"`
	Qualifier string `json:"qualifier"`
	Line      int    `json:"line"`
	File      string `json:"file"`
}

// ParseInferLog reads an Infer report.json array. Bug type names are spelled
// out (NULL_DEREFERENCE becomes "NULL DEREFERENCE") so the keyword table
// applies to them.
func ParseInferLog(text string) ([]m.DiagnosticRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var issues []inferIssue
	if err := json.Unmarshal([]byte(text), &issues); err != nil {
		return nil, fmt.Errorf("%w: infer report: %v", ErrUnparsableLog, err)
	}

	records := make([]m.DiagnosticRecord, 0, len(issues))

	for _, issue := range issues {
		kind := strings.ReplaceAll(issue.BugType, "_", " ")
		records = append(records, m.DiagnosticRecord{
			Line:    issue.Line,
			Message: strings.TrimSpace(kind + ": " + issue.Qualifier),
			Raw:     fmt.Sprintf("%s:%d: %s: %s", issue.File, issue.Line, issue.BugType, issue.Qualifier),
		})
	}

	return records, nil
}

// ParseSARIFLog reads the results of every run in a SARIF log.
func ParseSARIFLog(text string) ([]m.DiagnosticRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	report, err := sarif.FromBytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: sarif: %v", ErrUnparsableLog, err)
	}

	var records []m.DiagnosticRecord

	for _, run := range report.Runs {
		for _, result := range run.Results {
			msg := ""
			if result.Message.Text != nil {
				msg = *result.Message.Text
			}

			if result.RuleID != nil && *result.RuleID != "" {
				msg = *result.RuleID + ": " + msg
			}

			records = append(records, m.DiagnosticRecord{
				Line:    sarifLine(result),
				Message: msg,
				Raw:     msg,
			})
		}
	}

	return records, nil
}

func sarifLine(result *sarif.Result) int {
	for _, loc := range result.Locations {
		if loc == nil || loc.PhysicalLocation == nil || loc.PhysicalLocation.Region == nil {
			continue
		}

		if start := loc.PhysicalLocation.Region.StartLine; start != nil {
			return *start
		}
	}

	return 0
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func unparsable(text string, records []m.DiagnosticRecord) error {
	if len(records) == 0 && strings.TrimSpace(text) != "" {
		return ErrUnparsableLog
	}

	return nil
}

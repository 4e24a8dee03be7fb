package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"securehls.dev/pkg/securehls/internal/adapter"
	m "securehls.dev/pkg/securehls/internal/model"
)

// Detector is the contract shared by the direct and the log-based detector.
type Detector interface {
	Analyze(ctx context.Context, path m.Path, input []byte) ([]m.Finding, error)
}

// LogDetector turns one tool's log into evidence for one source file.
type LogDetector struct {
	Tool       string
	parser     LogParser
	classifier BugClassifier
}

// NewLogDetector builds a log-based detector for tool using the named parser.
// An empty parser name selects the parser registered under the tool name.
func NewLogDetector(tool, parserName string, classifier BugClassifier) (*LogDetector, error) {
	if parserName == "" {
		parserName = tool
	}

	parser, err := ParserFor(parserName)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", tool, err)
	}

	return &LogDetector{Tool: tool, parser: parser, classifier: classifier}, nil
}

// Evidence parses and classifies a log. On ErrUnparsableLog the returned
// evidence is empty but valid.
func (d *LogDetector) Evidence(path m.Path, text string) (m.Evidence, error) {
	ev := m.Evidence{Path: path}

	records, err := d.parser(text)
	if err != nil {
		return ev, err
	}

	for _, rec := range records {
		bugType := d.classifier.Classify(rec.Message)
		if bugType == m.Unrelated {
			ev.Unclassified = append(ev.Unclassified, rec)
			continue
		}

		ev.Findings = append(ev.Findings, m.Finding{
			SourcePath: path,
			Line:       rec.Line,
			BugType:    bugType,
			Message:    rec.Message,
		})
	}

	return ev, nil
}

// Analyze implements Detector over a log's contents.
func (d *LogDetector) Analyze(ctx context.Context, path m.Path, input []byte) ([]m.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev, err := d.Evidence(path, string(input))

	return ev.Findings, err
}

// LogName maps a corpus path to its log file name: separators become "_".
func LogName(p m.Path) string {
	s := strings.ReplaceAll(string(NormalizePath(p)), "/", "_")
	return s + ".log"
}

// EvidenceSource locates and reads per-tool logs under a logs directory.
type EvidenceSource struct {
	adapter.SourceFSAdapter
	LogsDir  string
	Timeout  time.Duration
	Parallel int
}

// NewEvidenceSource creates an EvidenceSource reading logs under logsDir.
func NewEvidenceSource(fsAdapter adapter.SourceFSAdapter, logsDir string, timeout time.Duration, parallel int) *EvidenceSource {
	return &EvidenceSource{
		SourceFSAdapter: fsAdapter,
		LogsDir:         logsDir,
		Timeout:         timeout,
		Parallel:        parallel,
	}
}

// LogPath returns where the log of tool for p lives.
func (s *EvidenceSource) LogPath(tool string, p m.Path) m.Path {
	return m.Path(filepath.Join(s.LogsDir, tool, LogName(p)))
}

// Load reads the evidence of detector's tool for every path. Files without a
// log, with a log that cannot be read in time, or with an unreadable log get
// no entry; unparsable logs yield an empty entry.
func (s *EvidenceSource) Load(ctx context.Context, detector *LogDetector, paths []m.Path) (map[m.Path]*m.Evidence, error) {
	slots := make([]*m.Evidence, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	if s.Parallel > 0 {
		group.SetLimit(s.Parallel)
	}

	for i, p := range paths {
		i, p := i, p
		group.Go(func() error {
			ev, err := s.loadOne(groupCtx, detector, NormalizePath(p))
			if err != nil {
				return err
			}

			slots[i] = ev

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make(map[m.Path]*m.Evidence, len(paths))

	for _, ev := range slots {
		if ev != nil {
			out[ev.Path] = ev
		}
	}

	return out, nil
}

func (s *EvidenceSource) loadOne(ctx context.Context, detector *LogDetector, p m.Path) (*m.Evidence, error) {
	logPath := s.LogPath(detector.Tool, p)

	data, err := s.read(ctx, logPath)

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("No evidence", "tool", detector.Tool, "file", p, "log", logPath)
		return nil, nil
	case errors.Is(err, adapter.ErrToolTimeout):
		slog.Warn("Log read timed out, treating file as without evidence", "tool", detector.Tool, "file", p, "timeout", s.Timeout)
		return nil, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		slog.Warn("Failed to read log, treating file as without evidence", "tool", detector.Tool, "file", p, "error", err)
		return nil, nil
	}

	ev, err := detector.Evidence(p, string(data))
	if errors.Is(err, ErrUnparsableLog) {
		slog.Warn("Unparsable log, counting zero findings", "tool", detector.Tool, "file", p, "error", err)
	} else if err != nil {
		return nil, err
	}

	return &ev, nil
}

func (s *EvidenceSource) read(ctx context.Context, p m.Path) ([]byte, error) {
	if s.Timeout <= 0 {
		return s.ReadFile(ctx, p)
	}

	readCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}

	done := make(chan result, 1)

	go func() {
		data, err := s.ReadFile(readCtx, p)
		done <- result{data: data, err: err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-readCtx.Done():
		if errors.Is(readCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("read %s: %w", p, adapter.ErrToolTimeout)
		}

		return nil, readCtx.Err()
	}
}

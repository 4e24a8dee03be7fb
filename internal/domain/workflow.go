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

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"securehls.dev/pkg/securehls/internal/adapter"
	"securehls.dev/pkg/securehls/internal/controller"
	m "securehls.dev/pkg/securehls/internal/model"
)

// CheckToolName is the tool name the direct detector scores under.
const CheckToolName = "securehls"

// FilePlaceholder is replaced by the kernel path in tool command lines. It
// must not look like an analyzer's own template field, such as cppcheck's
// {file}.
const FilePlaceholder = "${file}"

// ToolConfig describes one external analyzer.
type ToolConfig struct {
	Name string
	// Parser selects the log parser; empty means the parser named like the tool.
	Parser  string
	Command []string
}

// CommandFor returns the command line analyzing file.
func (t ToolConfig) CommandFor(file string) []string {
	out := make([]string, len(t.Command))
	for i, arg := range t.Command {
		out[i] = strings.ReplaceAll(arg, FilePlaceholder, file)
	}

	return out
}

// CorpusArgs selects the kernels a command works on. Without Paths the
// ground-truth benchmarks under CorpusRoot are used.
type CorpusArgs struct {
	Paths       []m.Path
	Exclude     []string
	GroundTruth m.Path
	CorpusRoot  m.Path
}

// CheckArgs contains the arguments for the direct detector run.
type CheckArgs struct {
	CorpusArgs
	Threads int
	Policy  m.UnclassifiedPolicy
	SARIF   m.Path
}

// EvaluateArgs contains the arguments for log-based scoring.
type EvaluateArgs struct {
	GroundTruth m.Path
	LogsDir     m.Path
	Tools       []ToolConfig
	Threads     int
	Timeout     time.Duration
	Policy      m.UnclassifiedPolicy
}

// InstrumentArgs contains the arguments for writing guarded variants.
type InstrumentArgs struct {
	CorpusArgs
	Report m.Path
	Diff   bool
}

// CollectArgs contains the arguments for running the external analyzers.
type CollectArgs struct {
	CorpusArgs
	LogsDir m.Path
	Tools   []ToolConfig
	Threads int
	Timeout time.Duration
}

// Workflow defines the SecureHLS commands.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) error
	Evaluate(ctx context.Context, args EvaluateArgs) error
	Instrument(ctx context.Context, args InstrumentArgs) error
	Collect(ctx context.Context, args CollectArgs) error
}

type workflow struct {
	adapter.ReportStore
	adapter.SourceFSAdapter
	adapter.ToolRunnerAdapter
	controller.UI
	detector     *DirectDetector
	instrumenter *Instrumenter
	classifier   BugClassifier
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	toolRunner adapter.ToolRunnerAdapter,
	ui controller.UI,
	detector *DirectDetector,
	instrumenter *Instrumenter,
	classifier BugClassifier,
) Workflow {
	return &workflow{
		SourceFSAdapter:   fsAdapter,
		ReportStore:       reportStore,
		ToolRunnerAdapter: toolRunner,
		UI:                ui,
		detector:          detector,
		instrumenter:      instrumenter,
		classifier:        classifier,
	}
}

// target is one kernel: Key is its corpus path, Disk where it is read from.
type target struct {
	Key  m.Path
	Disk m.Path
}

// Check runs the direct detector and scores it when ground truth exists.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	if err := w.Start(ctx, controller.WithCheckMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	store, err := w.loadStore(ctx, args.CorpusArgs)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to load ground truth", "error", err)

		return err
	}

	targets, err := w.targets(ctx, args.CorpusArgs, store)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to resolve kernels", "error", err)

		return fmt.Errorf("resolve kernels: %w", err)
	}

	scanned, findings, err := w.scan(ctx, targets, args.Threads)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to scan kernels", "error", err)

		return fmt.Errorf("scan: %w", err)
	}

	w.DisplayFindings(ctx, findings)

	if args.SARIF != "" {
		if err := w.SaveSARIF(ctx, args.SARIF, findings); err != nil {
			w.Close(ctx)
			slog.Error("Failed to save SARIF", "error", err)

			return fmt.Errorf("save sarif: %w", err)
		}
	}

	if store != nil {
		score := NewScoringEngine(args.Policy).Evaluate(CheckToolName, store, EvidenceFromFindings(scanned, findings))
		w.DisplayScore(ctx, score)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// Evaluate scores every configured tool from its logs.
func (w *workflow) Evaluate(ctx context.Context, args EvaluateArgs) error {
	if err := w.Start(ctx, controller.WithEvaluateMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	store, err := LoadGroundTruth(ctx, string(args.GroundTruth), w.classifier.BugTypes())
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to load ground truth", "error", err)

		return err
	}

	paths := make([]m.Path, 0, store.Len())
	for _, b := range store.Benchmarks() {
		paths = append(paths, b.File)
	}

	source := NewEvidenceSource(w.SourceFSAdapter, string(args.LogsDir), args.Timeout, args.Threads)
	engine := NewScoringEngine(args.Policy)

	for _, tool := range args.Tools {
		detector, err := NewLogDetector(tool.Name, tool.Parser, w.classifier)
		if err != nil {
			w.Close(ctx)
			slog.Error("Failed to configure tool", "tool", tool.Name, "error", err)

			return err
		}

		evidence, err := source.Load(ctx, detector, paths)
		if err != nil {
			w.Close(ctx)
			slog.Error("Failed to load evidence", "tool", tool.Name, "error", err)

			return fmt.Errorf("load %s evidence: %w", tool.Name, err)
		}

		if len(evidence) == 0 {
			w.DisplayWarning(ctx, fmt.Sprintf("no %s logs under %s", tool.Name, filepath.Join(string(args.LogsDir), tool.Name)))
		}

		w.DisplayScore(ctx, engine.Evaluate(tool.Name, store, evidence))
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// Instrument writes a guarded variant next to every unsafe kernel.
func (w *workflow) Instrument(ctx context.Context, args InstrumentArgs) error {
	if err := w.Start(ctx, controller.WithInstrumentMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	store, err := w.loadStore(ctx, args.CorpusArgs)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to load ground truth", "error", err)

		return err
	}

	targets, err := w.targets(ctx, args.CorpusArgs, store)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to resolve kernels", "error", err)

		return fmt.Errorf("resolve kernels: %w", err)
	}

	planner := NewGuardPlanner(w.detector, store)
	previous := w.previousEntries(ctx, args.Report)
	report := m.InstrumentReport{RunID: uuid.NewString()}
	diffs := map[m.Path]string{}

	for _, t := range targets {
		entry, diff, err := w.instrumentOne(ctx, planner, store, previous[t.Key], t)
		if err != nil {
			w.Close(ctx)
			slog.Error("Failed to instrument kernel", "file", t.Key, "error", err)

			return err
		}

		if entry == nil {
			continue
		}

		report.Entries = append(report.Entries, *entry)

		if args.Diff && diff != "" {
			diffs[t.Key] = diff
		}
	}

	if args.Report != "" {
		if err := w.SaveInstrumentReport(ctx, args.Report, report); err != nil {
			w.Close(ctx)
			slog.Error("Failed to save instrument report", "error", err)

			return fmt.Errorf("save report: %w", err)
		}
	}

	slog.Info("Instrumentation finished", "run", report.RunID, "kernels", len(report.Entries), "skipped_guards", report.SkippedCount())

	w.DisplayInstrumentReport(ctx, report, diffs)
	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// previousEntries indexes the last run report by source. Without a readable
// report every kernel is rewritten.
func (w *workflow) previousEntries(ctx context.Context, report m.Path) map[m.Path]m.InstrumentEntry {
	if report == "" {
		return nil
	}

	prev, err := w.LoadInstrumentReport(ctx, report)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Ignoring previous instrument report", "path", report, "error", err)
		}

		return nil
	}

	out := make(map[m.Path]m.InstrumentEntry, len(prev.Entries))
	for _, e := range prev.Entries {
		out[e.Source] = e
	}

	return out
}

// upToDate reports whether prev still describes output: same source, same
// guards and an untouched variant on disk.
func (w *workflow) upToDate(ctx context.Context, prev m.InstrumentEntry, sourceHash string, output m.Path, guards []m.Guard) bool {
	if prev.Error != "" || prev.OutputHash == "" || prev.SourceHash != sourceHash || prev.Output != output {
		return false
	}

	if len(prev.Guards) != len(guards) {
		return false
	}

	for i, g := range guards {
		if prev.Guards[i].Guard != g {
			return false
		}
	}

	info, err := w.FileInfo(ctx, output)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	outputHash, err := w.HashFile(ctx, output)

	return err == nil && outputHash == prev.OutputHash
}

// instrumentOne returns a nil entry for kernels that need no guard. Per-file
// failures land in the entry; only write errors are returned.
func (w *workflow) instrumentOne(ctx context.Context, planner *GuardPlanner, store *GroundTruthStore, prev m.InstrumentEntry, t target) (*m.InstrumentEntry, string, error) {
	var (
		bench   m.Benchmark
		inStore bool
	)

	if store != nil {
		bench, inStore = store.Benchmark(t.Key)
		if inStore && bench.Safe() {
			return nil, "", nil
		}
	}

	entry := &m.InstrumentEntry{Source: t.Key, Function: bench.Function}

	src, err := w.ReadFile(ctx, t.Disk)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		entry.Error = err.Error()

		return entry, "", nil
	}

	guards, err := planner.Plan(ctx, t.Key, src)
	if err != nil {
		entry.Error = err.Error()
		return entry, "", nil
	}

	if len(guards) == 0 && !inStore {
		return nil, "", nil
	}

	sourceHash, err := w.HashFile(ctx, t.Disk)
	if err != nil {
		entry.Error = err.Error()
		return entry, "", nil
	}

	output := w.instrumenter.GuardedPath(t.Disk)
	if w.upToDate(ctx, prev, sourceHash, output, guards) {
		slog.Debug("Guarded variant up to date", "file", t.Key, "output", output)

		prev.Unchanged = true

		return &prev, "", nil
	}

	entry.SourceHash = sourceHash

	if entry.Function == "" {
		index, err := w.detector.Index(ctx, t.Key, src)
		if err != nil {
			entry.Error = err.Error()
			return entry, "", nil
		}

		if fns := index.Functions(); len(fns) > 0 {
			entry.Function = fns[0]
		}
	}

	res, err := w.instrumenter.Instrument(ctx, t.Key, src, entry.Function, guards)
	if err != nil {
		if !errors.Is(err, ErrFunctionNotFound) {
			var lexErr *adapter.LexError
			if !errors.As(err, &lexErr) {
				return nil, "", err
			}
		}

		slog.Warn("Kernel not instrumented", "file", t.Key, "error", err)
		entry.Error = err.Error()

		return entry, "", nil
	}

	if err := w.WriteFile(ctx, output, res.Source, 0o644); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", output, err)
	}

	outputHash, err := w.HashFile(ctx, output)
	if err != nil {
		return nil, "", fmt.Errorf("hash %s: %w", output, err)
	}

	entry.Output = output
	entry.OutputHash = outputHash
	entry.Guarded = res.GuardedFunction
	entry.Guards = outcomes(guards, res)

	return entry, res.Diff, nil
}

func outcomes(guards []m.Guard, res m.InstrumentResult) []m.GuardOutcome {
	reasons := make(map[m.Guard]string, len(res.Skipped))
	for _, s := range res.Skipped {
		reasons[s.Guard] = s.Reason
	}

	out := make([]m.GuardOutcome, 0, len(guards))

	for _, g := range guards {
		if reason, ok := reasons[g]; ok {
			out = append(out, m.GuardOutcome{Guard: g, Status: m.GuardSkipped, Reason: reason})
			continue
		}

		out = append(out, m.GuardOutcome{Guard: g, Status: m.GuardApplied})
	}

	return out
}

// Collect runs every configured analyzer on every kernel and stores the logs
// where Evaluate reads them.
func (w *workflow) Collect(ctx context.Context, args CollectArgs) error {
	if err := w.Start(ctx, controller.WithCollectMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	store, err := w.loadStore(ctx, args.CorpusArgs)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to load ground truth", "error", err)

		return err
	}

	targets, err := w.targets(ctx, args.CorpusArgs, store)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to resolve kernels", "error", err)

		return fmt.Errorf("resolve kernels: %w", err)
	}

	source := NewEvidenceSource(w.SourceFSAdapter, string(args.LogsDir), args.Timeout, args.Threads)

	for _, tool := range args.Tools {
		statuses, err := w.collectTool(ctx, source, tool, targets, args)
		if err != nil {
			w.Close(ctx)
			slog.Error("Failed to collect logs", "tool", tool.Name, "error", err)

			return fmt.Errorf("collect %s: %w", tool.Name, err)
		}

		for _, status := range statuses {
			w.DisplayCollectStatus(ctx, status)
		}
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func (w *workflow) collectTool(ctx context.Context, source *EvidenceSource, tool ToolConfig, targets []target, args CollectArgs) ([]controller.CollectStatus, error) {
	statuses := make([]controller.CollectStatus, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	if args.Threads > 0 {
		group.SetLimit(args.Threads)
	}

	for i, t := range targets {
		i, t := i, t
		group.Go(func() error {
			status := controller.CollectStatus{Tool: tool.Name, Path: t.Key}

			output, err := w.runTool(groupCtx, tool, t, args.Timeout)
			switch {
			case err == nil:
			case errors.Is(err, adapter.ErrToolTimeout):
				slog.Warn("Tool timed out, file has no evidence", "tool", tool.Name, "file", t.Key, "error", err)
				status.Error = err
				statuses[i] = status

				return nil
			case groupCtx.Err() != nil:
				return groupCtx.Err()
			default:
				slog.Warn("Tool failed, file has no evidence", "tool", tool.Name, "file", t.Key, "error", err)
				status.Error = err
				statuses[i] = status

				return nil
			}

			status.Log = source.LogPath(tool.Name, t.Key)
			if err := w.WriteFile(groupCtx, status.Log, []byte(output), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", status.Log, err)
			}

			statuses[i] = status

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return statuses, nil
}

func (w *workflow) runTool(ctx context.Context, tool ToolConfig, t target, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		return w.Run(ctx, "", tool.CommandFor(string(t.Disk)))
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := w.Run(runCtx, "", tool.CommandFor(string(t.Disk)))
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return output, fmt.Errorf("%s after %s: %w", tool.Name, timeout, adapter.ErrToolTimeout)
	}

	return output, err
}

// loadStore loads the ground truth. It is optional when explicit paths are
// given: a missing file then only disables scoring.
func (w *workflow) loadStore(ctx context.Context, args CorpusArgs) (*GroundTruthStore, error) {
	store, err := LoadGroundTruth(ctx, string(args.GroundTruth), w.classifier.BugTypes())
	if err == nil {
		return store, nil
	}

	if len(args.Paths) > 0 && errors.Is(err, fs.ErrNotExist) {
		w.DisplayWarning(ctx, fmt.Sprintf("ground truth %s not found, skipping scoring", args.GroundTruth))
		return nil, nil
	}

	return nil, err
}

// targets resolves the kernels to work on, in a stable order.
func (w *workflow) targets(ctx context.Context, args CorpusArgs, store *GroundTruthStore) ([]target, error) {
	if len(args.Paths) == 0 {
		benchmarks := store.Benchmarks()
		out := make([]target, 0, len(benchmarks))

		for _, b := range benchmarks {
			out = append(out, target{Key: b.File, Disk: w.JoinPath(ctx, string(args.CorpusRoot), string(b.File))})
		}

		return out, nil
	}

	files, err := w.Discover(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return nil, err
	}

	out := make([]target, 0, len(files))

	for _, f := range files {
		out = append(out, target{Key: w.corpusKey(ctx, args.CorpusRoot, f), Disk: f.FullPath})
	}

	return out, nil
}

func (w *workflow) corpusKey(ctx context.Context, root m.Path, f m.File) m.Path {
	if root == "" {
		return NormalizePath(f.ShortPath)
	}

	rel, err := w.RelPath(ctx, root, f.FullPath)
	if err != nil || strings.HasPrefix(string(NormalizePath(rel)), "../") {
		return NormalizePath(f.ShortPath)
	}

	return NormalizePath(rel)
}

// scan runs the direct detector on every target. Unreadable or unlexable
// files are reported and left out of the scanned set.
func (w *workflow) scan(ctx context.Context, targets []target, threads int) ([]m.Path, []m.Finding, error) {
	type slot struct {
		scanned  bool
		findings []m.Finding
		warning  string
	}

	slots := make([]slot, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	if threads > 0 {
		group.SetLimit(threads)
	}

	for i, t := range targets {
		i, t := i, t
		group.Go(func() error {
			src, err := w.ReadFile(groupCtx, t.Disk)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}

				slots[i].warning = fmt.Sprintf("read %s: %v", t.Disk, err)

				return nil
			}

			findings, err := w.detector.Analyze(groupCtx, t.Key, src)
			if err != nil {
				var lexErr *adapter.LexError
				if !errors.As(err, &lexErr) {
					return err
				}

				slots[i].warning = err.Error()

				return nil
			}

			slots[i] = slot{scanned: true, findings: findings}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		scanned  []m.Path
		findings []m.Finding
	)

	for i, s := range slots {
		if s.warning != "" {
			slog.Warn("Kernel not scanned", "file", targets[i].Key, "reason", s.warning)
			w.DisplayWarning(ctx, s.warning)

			continue
		}

		scanned = append(scanned, targets[i].Key)
		findings = append(findings, s.findings...)
	}

	return scanned, findings, nil
}

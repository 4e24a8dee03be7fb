// Package cmd provides the root command and CLI setup for securehls.
package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"securehls.dev/pkg/securehls/internal/adapter"
	"securehls.dev/pkg/securehls/internal/controller"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var cSourceAdapter adapter.CSourceAdapter
var reportStore adapter.ReportStore
var toolRunner adapter.ToolRunnerAdapter
var classifier domain.BugClassifier
var detector *domain.DirectDetector
var instrumenter *domain.Instrumenter
var workflow domain.Workflow
var ui controller.UI

var (
	groundTruthFlag string
	corpusRootFlag  string
	excludePatterns []string
	parallelFlag    int
	logsDirFlag     string
	toolsFlag       []string
	timeoutFlag     int64
	policyFlag      string
	verboseFlag     bool
	logFileFlag     string
)

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	suffix := viper.GetString(suffixConfigKey)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	cSourceAdapter = adapter.NewLocalCSourceAdapter()
	reportStore = adapter.NewLocalReportStore()
	toolRunner = adapter.NewLocalToolRunnerAdapter(adapter.DefaultToolTimeout)
	classifier = domain.NewBugClassifier(classifierRules())
	detector = domain.NewDirectDetector(cSourceAdapter, suffix)
	instrumenter = domain.NewInstrumenter(cSourceAdapter, suffix)
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		toolRunner,
		ui,
		detector,
		instrumenter,
		classifier,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...            recursively scan current directory
  - ./bench/...      recursively scan the bench directory
  - ./bench/fir      scan a single directory
Without paths, the kernels listed in the ground truth are used.`

const rootLongDescription = `SecureHLS detects, guards and scores memory-safety defects
(out-of-bounds accesses, null dereferences) in C kernels written for
high-level synthesis.

` + pathPatternsHelp

const checkLongDescription = `Run the built-in detector over the kernels and score it against the
ground truth when one is available.

` + pathPatternsHelp

const instrumentLongDescription = `Write a guarded variant next to every unsafe kernel. The variant renames
the kernel function, adds a diagnostic flag and checks each defect site.

` + pathPatternsHelp

const collectLongDescription = `Run the configured external analyzers on every kernel and store their logs
where evaluate reads them.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "securehls",
		Short: "Memory-safety checks for HLS kernels",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd builds a root command with its persistent flags bound.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&groundTruthFlag, groundTruthFlagName, "g", viper.GetString(groundTruthConfigKey), "ground-truth descriptor (JSON or YAML)")
	bindFlagToConfig(flags.Lookup(groundTruthFlagName), groundTruthConfigKey)

	flags.StringVar(&corpusRootFlag, corpusFlagName, viper.GetString(corpusRootConfigKey), "directory the ground-truth paths are relative to")
	bindFlagToConfig(flags.Lookup(corpusFlagName), corpusRootConfigKey)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.IntVarP(&parallelFlag, parallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files processed in parallel")
	bindFlagToConfig(flags.Lookup(parallelFlagName), runParallelConfigKey)

	flags.StringVar(&logsDirFlag, logsDirFlagName, viper.GetString(logsDirConfigKey), "directory holding <tool>/<file>.log analyzer logs")
	bindFlagToConfig(flags.Lookup(logsDirFlagName), logsDirConfigKey)

	flags.StringSliceVarP(&toolsFlag, toolsFlagName, "t", viper.GetStringSlice(toolsConfigKey), "external analyzers to collect or evaluate")
	bindFlagToConfig(flags.Lookup(toolsFlagName), toolsConfigKey)

	flags.Int64Var(&timeoutFlag, timeoutFlagName, viper.GetInt64(timeoutConfigKey), "seconds to wait for one analyzer run or log read")
	bindFlagToConfig(flags.Lookup(timeoutFlagName), timeoutConfigKey)

	flags.StringVar(&policyFlag, policyFlagName, viper.GetString(policyConfigKey), "unclassified diagnostics charging: per-line or per-message")
	bindFlagToConfig(flags.Lookup(policyFlagName), policyConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// corpusArgs collects the kernel selection shared by every command.
func corpusArgs(args []string) domain.CorpusArgs {
	exclude := slices.Clone(viper.GetStringSlice(excludeConfigKey))
	if guarded := guardedVariantExclude(viper.GetString(suffixConfigKey)); !slices.Contains(exclude, guarded) {
		exclude = append(exclude, guarded)
	}

	return domain.CorpusArgs{
		Paths:       parsePaths(args),
		Exclude:     exclude,
		GroundTruth: m.Path(viper.GetString(groundTruthConfigKey)),
		CorpusRoot:  m.Path(viper.GetString(corpusRootConfigKey)),
	}
}

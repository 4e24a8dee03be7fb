package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"securehls.dev/pkg/securehls/internal/adapter"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "securehls"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	groundTruthFlagName = "ground-truth"
	corpusFlagName      = "corpus"
	excludeFlagName     = "exclude"
	parallelFlagName    = "parallel"
	logsDirFlagName     = "logs-dir"
	toolsFlagName       = "tools"
	timeoutFlagName     = "timeout"
	policyFlagName      = "policy"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"
	reportFlagName      = "report"

	groundTruthConfigKey = "corpus.ground_truth"
	corpusRootConfigKey  = "corpus.root"
	excludeConfigKey     = "paths.exclude"
	runParallelConfigKey = "run.parallel"
	logsDirConfigKey     = "evidence.logs_dir"
	toolsConfigKey       = "evidence.tools"
	timeoutConfigKey     = "evidence.timeout"
	policyConfigKey      = "score.unclassified_policy"
	suffixConfigKey      = "instrument.suffix"
	reportConfigKey      = "instrument.report"
	classifierRulesKey   = "classifier.rules"
	toolsConfigPrefix    = "tools."

	defaultGroundTruth = "ground_truth.json"
	defaultCorpusRoot  = "."
	defaultRunParallel = 4
	defaultLogsDir     = "baseline_logs"
	defaultToolTimeout = adapter.DefaultToolTimeout

	envPrefix = "SECUREHLS"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".securehls.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// defaultExclude skips testbenches. Guarded variants are skipped through
// guardedVariantExclude so that a custom suffix is honored.
var defaultExclude = []string{`_tb\.c$`, `main_test\.c$`}

var defaultTools = []string{"clang", "cppcheck", "scanbuild"}

var defaultToolCommands = map[string]domain.ToolConfig{
	"clang": {
		Parser:  domain.ParserClang,
		Command: []string{"clang", "--analyze", "-Xanalyzer", "-analyzer-output=text", domain.FilePlaceholder},
	},
	"cppcheck": {
		Parser:  domain.ParserCppcheck,
		Command: []string{"cppcheck", "--enable=warning", "--template={id}::{file}::{line}::{message}", domain.FilePlaceholder},
	},
	"scanbuild": {
		Parser:  domain.ParserScanBuild,
		Command: []string{"scan-build", "clang", "-c", domain.FilePlaceholder, "-o", "/dev/null"},
	},
}

var globalLogger *slog.Logger

// guardedVariantExclude matches the files an instrument run writes with the
// given suffix, including numbered variants.
func guardedVariantExclude(suffix string) string {
	if suffix == "" {
		suffix = domain.DefaultGuardSuffix
	}

	return regexp.QuoteMeta(suffix) + `\d*\.c$`
}

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(groundTruthConfigKey, defaultGroundTruth)
	viper.SetDefault(corpusRootConfigKey, defaultCorpusRoot)
	viper.SetDefault(excludeConfigKey, defaultExclude)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(logsDirConfigKey, defaultLogsDir)
	viper.SetDefault(toolsConfigKey, defaultTools)
	viper.SetDefault(timeoutConfigKey, int64(defaultToolTimeout.Seconds()))
	viper.SetDefault(policyConfigKey, string(m.PolicyPerLine))
	viper.SetDefault(suffixConfigKey, domain.DefaultGuardSuffix)
	viper.SetDefault(reportConfigKey, adapter.InstrumentReportFile)
	viper.SetDefault(classifierRulesKey, domain.DefaultClassifierRules)

	for name, tool := range defaultToolCommands {
		viper.SetDefault(toolsConfigPrefix+name+".parser", tool.Parser)
		viper.SetDefault(toolsConfigPrefix+name+".command", tool.Command)
	}

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	// A missing file is fine; a broken one is reported but not fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		fmt.Fprintf(os.Stderr, "securehls: ignoring %s: %v\n", configFileName, err)
	}
}

// toolConfigs resolves the tools.<name>.* keys of every named tool. Log
// parsing needs no command line, collection does.
func toolConfigs(names []string, requireCommand bool) ([]domain.ToolConfig, error) {
	tools := make([]domain.ToolConfig, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		tool := domain.ToolConfig{
			Name:    name,
			Parser:  viper.GetString(toolsConfigPrefix + name + ".parser"),
			Command: viper.GetStringSlice(toolsConfigPrefix + name + ".command"),
		}

		if requireCommand && len(tool.Command) == 0 {
			return nil, fmt.Errorf("tool %q: no command configured under %s%s.command", name, toolsConfigPrefix, name)
		}

		tools = append(tools, tool)
	}

	return tools, nil
}

// classifierRules reads the classifier table, falling back to the built-in one.
func classifierRules() []domain.ClassifierRule {
	var rules []domain.ClassifierRule
	if err := viper.UnmarshalKey(classifierRulesKey, &rules); err != nil {
		slog.Warn("Invalid classifier rules, using defaults", "error", err)
		return domain.DefaultClassifierRules
	}

	return rules
}

func unclassifiedPolicy() (m.UnclassifiedPolicy, error) {
	return m.ParseUnclassifiedPolicy(viper.GetString(policyConfigKey))
}

func toolTimeout() time.Duration {
	return time.Duration(viper.GetInt64(timeoutConfigKey)) * time.Second
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

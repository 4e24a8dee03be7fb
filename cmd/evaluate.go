package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

// evaluateCmd represents the evaluate command.
var evaluateCmd = newEvaluateCmd()

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Score external analyzers from their logs",
		Long: `Score every configured analyzer against the ground truth. Logs are read
from <logs-dir>/<tool>/<path with separators replaced by _>.log; a kernel
without a log counts as not detected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := unclassifiedPolicy()
			if err != nil {
				return err
			}

			tools, err := toolConfigs(viper.GetStringSlice(toolsConfigKey), false)
			if err != nil {
				return err
			}

			return workflow.Evaluate(cmd.Context(), domain.EvaluateArgs{
				GroundTruth: m.Path(viper.GetString(groundTruthConfigKey)),
				LogsDir:     m.Path(viper.GetString(logsDirConfigKey)),
				Tools:       tools,
				Threads:     viper.GetInt(runParallelConfigKey),
				Timeout:     toolTimeout(),
				Policy:      policy,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

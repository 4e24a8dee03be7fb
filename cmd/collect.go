package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

// collectCmd represents the collect command.
var collectCmd = newCollectCmd()

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect [paths...]",
		Short: "Run external analyzers and store their logs",
		Long:  collectLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := toolConfigs(viper.GetStringSlice(toolsConfigKey), true)
			if err != nil {
				return err
			}

			return workflow.Collect(cmd.Context(), domain.CollectArgs{
				CorpusArgs: corpusArgs(args),
				LogsDir:    m.Path(viper.GetString(logsDirConfigKey)),
				Tools:      tools,
				Threads:    viper.GetInt(runParallelConfigKey),
				Timeout:    toolTimeout(),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

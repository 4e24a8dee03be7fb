package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

var instrumentDiffFlag bool
var instrumentReportFlag string

// instrumentCmd represents the instrument command.
var instrumentCmd = newInstrumentCmd()

func newInstrumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instrument [paths...]",
		Short: "Write guarded variants of unsafe kernels",
		Long:  instrumentLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Instrument(cmd.Context(), domain.InstrumentArgs{
				CorpusArgs: corpusArgs(args),
				Report:     m.Path(viper.GetString(reportConfigKey)),
				Diff:       instrumentDiffFlag,
			})
		},
	}

	configureInstrumentFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(instrumentCmd)
}

func configureInstrumentFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&instrumentDiffFlag, "diff", false, "print a unified diff per kernel")
	cmd.Flags().StringVar(&instrumentReportFlag, reportFlagName, viper.GetString(reportConfigKey), "run report file (empty disables it)")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

var checkSARIFFlag string

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Scan kernels with the built-in detector",
		Long:  checkLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := unclassifiedPolicy()
			if err != nil {
				return err
			}

			return workflow.Check(cmd.Context(), domain.CheckArgs{
				CorpusArgs: corpusArgs(args),
				Threads:    viper.GetInt(runParallelConfigKey),
				Policy:     policy,
				SARIF:      m.Path(checkSARIFFlag),
			})
		},
	}

	cmd.Flags().StringVar(&checkSARIFFlag, "sarif", "", "also write the findings as SARIF 2.1.0 to this file")

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

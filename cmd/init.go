package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initForceFlag bool

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default securehls.yaml configuration file",
		Long: `Create securehls.yaml in the current directory with the current defaults:
corpus location, exclude patterns, analyzer commands and parsers, the
classifier keyword table and logging. Edit it to add analyzers or retune
classification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			write := viper.SafeWriteConfigAs
			if initForceFlag {
				write = viper.WriteConfigAs
			}

			if err := write(targetPath); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Println("wrote", targetPath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&initForceFlag, "force", false, "overwrite an existing securehls.yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the securehls build",
		Long:  "Print the securehls module version, the VCS revision when known and the Go toolchain.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("securehls unknown")
				return
			}

			cmd.Println("securehls\t", info.Main.Version)

			if rev := buildSetting(info, "vcs.revision"); rev != "" {
				cmd.Println("revision\t", rev)
			}

			cmd.Println("go\t\t", info.GoVersion)
		},
	}
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}

	return ""
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "securehls.dev/pkg/securehls/internal/model"
)

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []m.Path
	}{
		{"empty", []string{}, []m.Path{}},
		{"single", []string{"./bench/..."}, []m.Path{m.Path("./bench/...")}},
		{
			"multiple",
			[]string{"./bench/fir", "./bench/gemm", "k.c"},
			[]m.Path{m.Path("./bench/fir"), m.Path("./bench/gemm"), m.Path("k.c")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePaths(tt.args)
			require.Len(t, got, len(tt.want))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "securehls", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Equal(t, rootLongDescription, cmd.Long)
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := newRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "Supports Go-style path patterns")
	assert.Contains(t, output.String(), "--ground-truth")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{
		groundTruthFlagName, corpusFlagName, excludeFlagName, parallelFlagName, logsDirFlagName,
		toolsFlagName, timeoutFlagName, policyFlagName, verboseFlagName, logFileFlagName,
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	assert.Equal(t, "g", cmd.PersistentFlags().Lookup(groundTruthFlagName).Shorthand)
	assert.Equal(t, "x", cmd.PersistentFlags().Lookup(excludeFlagName).Shorthand)
}

func TestCorpusArgs(t *testing.T) {
	newRootCmd()

	args := corpusArgs([]string{"./bench/..."})

	assert.Equal(t, []m.Path{"./bench/..."}, args.Paths)
	assert.Equal(t, m.Path(defaultGroundTruth), args.GroundTruth)
	assert.Equal(t, m.Path(defaultCorpusRoot), args.CorpusRoot)
	assert.Equal(t, append(slices.Clone(defaultExclude), `_secure\d*\.c$`), args.Exclude)
}

func TestCorpusArgs_GuardedVariantExclude(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		exclude []string
	}{
		{
			name:    "custom suffix",
			env:     map[string]string{"SECUREHLS_INSTRUMENT_SUFFIX": "_guarded"},
			exclude: []string{`_tb\.c$`, `main_test\.c$`, `_guarded\d*\.c$`},
		},
		{
			name:    "suffix with regexp metacharacters",
			env:     map[string]string{"SECUREHLS_INSTRUMENT_SUFFIX": ".safe"},
			exclude: []string{`_tb\.c$`, `main_test\.c$`, `\.safe\d*\.c$`},
		},
		{
			name: "pattern already configured",
			env: map[string]string{
				"SECUREHLS_INSTRUMENT_SUFFIX": "_guarded",
				"SECUREHLS_PATHS_EXCLUDE":     `_guarded\d*\.c$`,
			},
			exclude: []string{`_guarded\d*\.c$`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			newRootCmd()

			args := corpusArgs(nil)
			assert.Equal(t, tt.exclude, args.Exclude)

			discovered := regexp.MustCompile(args.Exclude[len(args.Exclude)-1])
			assert.True(t, discovered.MatchString("bench/fir/fir"+viper.GetString(suffixConfigKey)+"2.c"))
			assert.False(t, discovered.MatchString("bench/fir/fir.c"))
		})
	}
}

func TestInit(t *testing.T) {
	assert.NotNil(t, ui)
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, cSourceAdapter)
	assert.NotNil(t, reportStore)
	assert.NotNil(t, toolRunner)
	assert.NotNil(t, classifier)
	assert.NotNil(t, detector)
	assert.NotNil(t, instrumenter)
	assert.NotNil(t, workflow)
}

// TestExecute_ExitCode runs Execute in a child test process and checks the exit status.
func TestExecute_ExitCode(t *testing.T) {
	if mode := os.Getenv("SECUREHLS_EXECUTE_CHILD"); mode != "" {
		rootCmd = &cobra.Command{
			Use: "securehls",
			RunE: func(_ *cobra.Command, _ []string) error {
				if mode == "fail" {
					fmt.Fprintln(os.Stderr, "ground truth unreadable")
					return fmt.Errorf("load failed")
				}

				fmt.Println("scored")

				return nil
			},
		}
		rootCmd.SetArgs([]string{})

		Execute()

		return
	}

	tests := []struct {
		mode     string
		wantCode int
		wantOut  string
	}{
		{mode: "ok", wantCode: 0, wantOut: "scored"},
		{mode: "fail", wantCode: 1, wantOut: "ground truth unreadable"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			child := exec.Command(os.Args[0], "-test.run=^TestExecute_ExitCode$")
			child.Env = append(os.Environ(), "SECUREHLS_EXECUTE_CHILD="+tt.mode)
			output, err := child.CombinedOutput()

			code := 0
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			} else {
				require.NoError(t, err, "output: %s", output)
			}

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, string(output), tt.wantOut)
		})
	}
}

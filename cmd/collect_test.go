package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"securehls.dev/pkg/securehls/internal/domain"
	m "securehls.dev/pkg/securehls/internal/model"
)

func TestCollectCmd(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newCollectCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("Collect", mock.Anything, mock.MatchedBy(func(args domain.CollectArgs) bool {
		return len(args.Tools) == 2 &&
			args.Tools[0].Name == "clang" &&
			args.Tools[0].Command[len(args.Tools[0].Command)-1] == domain.FilePlaceholder &&
			args.Tools[1].Name == "scanbuild" &&
			args.LogsDir == m.Path("out") &&
			args.Threads == 3 &&
			args.Timeout == 30*time.Second &&
			len(args.Paths) == 1
	})).Return(nil)

	cmd.SetArgs([]string{"collect", "-t", "clang,scanbuild", "--logs-dir", "out", "-p", "3", "--timeout", "30", "./bench/..."})
	require.NoError(t, cmd.Execute())

	mockWorkflow.AssertExpectations(t)
}

func TestCollectCmd_ToolWithoutCommand(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newCollectCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"collect", "-t", "infer"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "infer")

	mockWorkflow.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything)
}

func TestToolConfigs(t *testing.T) {
	viper.Set(toolsConfigPrefix+"pvs.parser", "clang")
	viper.Set(toolsConfigPrefix+"pvs.command", []string{"pvs", domain.FilePlaceholder})
	t.Cleanup(func() {
		viper.Set(toolsConfigPrefix+"pvs.parser", "")
		viper.Set(toolsConfigPrefix+"pvs.command", []string{})
	})

	tools, err := toolConfigs([]string{"pvs", " ", "infer"}, false)
	require.NoError(t, err)
	require.Len(t, tools, 2)

	assert.Equal(t, domain.ToolConfig{Name: "pvs", Parser: "clang", Command: []string{"pvs", domain.FilePlaceholder}}, tools[0])
	assert.Equal(t, "infer", tools[1].Name)
	assert.Empty(t, tools[1].Command)

	_, err = toolConfigs([]string{"infer"}, true)
	require.Error(t, err)
}

func TestCollectCmd_Timeout(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want time.Duration
	}{
		{name: "from environment", args: []string{"collect"}, want: 30 * time.Second},
		{name: "flag above configured value", args: []string{"collect", "--timeout", "120"}, want: 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SECUREHLS_EVIDENCE_TIMEOUT", "30")

			mockWorkflow := withMockWorkflow(t)

			cmd := newRootCmd()
			cmd.AddCommand(newCollectCmd())
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			mockWorkflow.On("Collect", mock.Anything, mock.MatchedBy(func(args domain.CollectArgs) bool {
				return args.Timeout == tt.want
			})).Return(nil)

			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			mockWorkflow.AssertExpectations(t)
		})
	}
}

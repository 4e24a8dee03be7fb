package adapter

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestLocalToolRunnerAdapter_Run(t *testing.T) {
	requireShell(t)

	adapter := NewLocalToolRunnerAdapter(5 * time.Second)
	ctx := context.Background()

	t.Run("captures stdout and stderr", func(t *testing.T) {
		out, err := adapter.Run(ctx, t.TempDir(), []string{"sh", "-c", "echo out; echo err 1>&2"})
		require.NoError(t, err)
		assert.Contains(t, out, "out\n")
		assert.Contains(t, out, "err\n")
	})

	t.Run("non-zero exit keeps the log", func(t *testing.T) {
		out, err := adapter.Run(ctx, t.TempDir(), []string{"sh", "-c", "echo 'k.c:3:5: warning: out of bounds'; exit 1"})
		require.NoError(t, err)
		assert.Contains(t, out, "warning: out of bounds")
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := adapter.Run(ctx, t.TempDir(), []string{"securehls-no-such-analyzer"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrToolTimeout)
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := adapter.Run(ctx, t.TempDir(), nil)
		require.ErrorIs(t, err, ErrEmptyCommand)
	})
}

func TestLocalToolRunnerAdapter_Timeout(t *testing.T) {
	requireShell(t)

	adapter := NewLocalToolRunnerAdapter(100 * time.Millisecond)

	_, err := adapter.Run(context.Background(), t.TempDir(), []string{"sh", "-c", "exec sleep 5"})
	require.ErrorIs(t, err, ErrToolTimeout)
}

func TestLocalToolRunnerAdapter_CallerDeadline(t *testing.T) {
	requireShell(t)

	adapter := NewLocalToolRunnerAdapter(50 * time.Millisecond)

	tests := []struct {
		name     string
		deadline time.Duration
		wantErr  error
	}{
		{name: "longer than the default", deadline: 5 * time.Second},
		{name: "shorter than the run", deadline: 50 * time.Millisecond, wantErr: ErrToolTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), tt.deadline)
			defer cancel()

			out, err := adapter.Run(ctx, t.TempDir(), []string{"sh", "-c", "sleep 0.3; echo done"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, out, "done")
		})
	}
}

func TestNewLocalToolRunnerAdapter_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultToolTimeout, NewLocalToolRunnerAdapter(0).timeout)
}

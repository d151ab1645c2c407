package hooks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szaffarano/gotask/internal/task"
)

func TestRunWithNoConfiguredCommandIsNoop(t *testing.T) {
	r := NewRunner(nil)
	tk := task.New("buy milk", 100)

	out, err := r.Run(context.Background(), OnLaunch, tk)
	require.NoError(t, err)
	assert.Same(t, tk, out)
}

func TestRunRoundTripsThroughCat(t *testing.T) {
	r := NewRunner(map[Event]string{PreAdd: "cat"})
	tk := task.New("buy milk", 100)
	tk.Set("project", "Home")
	tk.AddTag("urgent")

	out, err := r.Run(context.Background(), PreAdd, tk)
	require.NoError(t, err)
	assert.Equal(t, tk.UUID(), out.UUID())
	assert.Equal(t, "Home", out.Get("project"))
	assert.True(t, out.HasTag("urgent"))
}

func TestRunNonZeroExitIsHookError(t *testing.T) {
	r := NewRunner(map[Event]string{PreAdd: "sh -c 'exit 3'"})
	tk := task.New("buy milk", 100)

	_, err := r.Run(context.Background(), PreAdd, tk)
	assert.Error(t, err)
}

func TestRunTimeoutIsHookError(t *testing.T) {
	r := NewRunner(map[Event]string{PreAdd: "sleep 2"})
	r.Timeout = 20 * time.Millisecond
	tk := task.New("buy milk", 100)

	_, err := r.Run(context.Background(), PreAdd, tk)
	assert.Error(t, err)
}

func TestRunMalformedOutputIsHookError(t *testing.T) {
	r := NewRunner(map[Event]string{PreAdd: "sh -c 'echo not-json'"})
	tk := task.New("buy milk", 100)

	_, err := r.Run(context.Background(), PreAdd, tk)
	assert.Error(t, err)
}

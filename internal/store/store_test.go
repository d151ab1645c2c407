package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szaffarano/gotask/internal/task"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tk := task.New("buy milk", 100)
	tk.Set("project", "Home")
	tk.AddTag("urgent")
	tk.AddAnnotation(150, "called the store")

	line := EncodeTask(tk)
	decoded, err := DecodeTask(line)
	require.NoError(t, err)

	assert.Equal(t, tk.UUID(), decoded.UUID())
	assert.Equal(t, tk.Description(), decoded.Description())
	assert.Equal(t, "Home", decoded.Get("project"))
	assert.True(t, decoded.HasTag("urgent"))
	require.Len(t, decoded.Annotations(), 1)
	assert.Equal(t, "called the store", decoded.Annotations()[0].Description)
}

func TestEncodeDecodeEscapesQuotesAndBackslashes(t *testing.T) {
	tk := task.New(`say "hi" to C:\temp`, 100)
	line := EncodeTask(tk)
	decoded, err := DecodeTask(line)
	require.NoError(t, err)
	assert.Equal(t, tk.Description(), decoded.Description())
}

func TestDecodeTaskRejectsMissingBrackets(t *testing.T) {
	_, err := DecodeTask(`uuid:"x"`)
	assert.Error(t, err)
}

func TestOpenCreatesEmptyLogs(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	pending, err := s.LoadPending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	completed, err := s.LoadCompleted()
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestAppendCommitLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Lock(true))
	defer s.Unlock()

	tk := task.New("write report", 100)
	require.NoError(t, s.Append(tk))
	require.NoError(t, s.Commit())

	reopened, err := Open(dir)
	require.NoError(t, err)
	pending, err := reopened.LoadPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "write report", pending[0].Description())
}

func TestGCMovesTerminalTasksToCompleted(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Lock(true))
	defer s.Unlock()

	done := task.New("finished", 100)
	stillOpen := task.New("in flight", 100)

	require.NoError(t, s.Append(done))
	require.NoError(t, s.Append(stillOpen))
	done.Set("status", string(task.Completed))
	done.Set("end", "200")
	require.NoError(t, s.GC())
	require.NoError(t, s.Commit())

	pending, err := s.LoadPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "in flight", pending[0].Description())

	completed, err := s.LoadCompleted()
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "finished", completed[0].Description())
}

func TestUndoSnapshotAndPop(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	pre := task.New("original", 100)
	post := pre.Clone()
	post.Set("priority", "H")

	require.NoError(t, s.SnapshotUndo(nil, pre))
	require.NoError(t, s.SnapshotUndo(pre, post))

	gotPre, gotPost, ok, err := s.PopUndo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "H", gotPost.Get("priority"))
	assert.Equal(t, "", gotPre.Get("priority"))

	_, _, ok, err = s.PopUndo()
	require.NoError(t, err)
	require.True(t, ok)

	_, _, ok, err = s.PopUndo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUnknownTaskIsStoreError(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Lock(true))
	defer s.Unlock()

	tk := task.New("ghost", 100)
	err = s.Update(tk)
	assert.Error(t, err)
}

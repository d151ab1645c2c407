package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szaffarano/gotask/internal/config"
	"github.com/szaffarano/gotask/internal/pipeline"
	"github.com/szaffarano/gotask/internal/store"
	"github.com/szaffarano/gotask/internal/task"
	"github.com/szaffarano/gotask/internal/temporal"
)

// scriptedConfirmer answers every Ask/AskBulk call the same scripted way,
// for tests that exercise the confirmation gate without a terminal.
type scriptedConfirmer struct {
	answer  bool
	bulkAns Answer
}

func (c *scriptedConfirmer) Ask(string) (bool, error)       { return c.answer, nil }
func (c *scriptedConfirmer) AskBulk(string) (Answer, error) { return c.bulkAns, nil }

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.FileStore) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	fixedNow := temporal.FromTime(time.Unix(1_700_000_000, 0).UTC())

	return &Dispatcher{
		Store:          s,
		Confirm:        &scriptedConfirmer{answer: true, bulkAns: AnswerYes},
		Now:            func() temporal.Date { return fixedNow },
		DateConfig:     temporal.DefaultConfig(),
		ConfirmationOn: true,
		BulkThreshold:  3,
	}, s
}

func testEngine(t *testing.T) *pipeline.Engine {
	t.Helper()
	entities, err := config.NewEntities()
	require.NoError(t, err)
	return &pipeline.Engine{Entities: entities, Aliases: map[string]string{}, DefaultCommand: "list"}
}

// run builds a pipeline.Arg slice from a raw argv the way the argument
// pipeline would classify it (using the real lexer/decompose
// categorization instead of hand-built fixtures) and dispatches it.
func run(t *testing.T, d *Dispatcher, argv ...string) (*Result, error) {
	t.Helper()
	engine := testEngine(t)
	args, err := engine.Run(append([]string{"task"}, argv...), nil, true)
	require.NoError(t, err)
	return d.Dispatch(context.Background(), args)
}

func TestDispatchAddThenList(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res, err := run(t, d, "add", "buy", "milk", "priority:H")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "buy milk", res.Tasks[0].Description())
	assert.Equal(t, "H", res.Tasks[0].Get("priority"))
	assert.Equal(t, task.Pending, res.Tasks[0].Status())

	res, err = run(t, d, "list")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "buy milk", res.Tasks[0].Description())
}

func TestDispatchModifyAppliesToMatches(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "write", "report")
	require.NoError(t, err)

	res, err := run(t, d, "1", "modify", "priority:M")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "M", res.Tasks[0].Get("priority"))
}

func TestDispatchDoneMovesTaskToCompleted(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "ship", "release")
	require.NoError(t, err)

	res, err := run(t, d, "1", "done")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, task.Completed, res.Tasks[0].Status())

	listRes, err := run(t, d, "list")
	require.NoError(t, err)
	assert.Empty(t, listRes.Tasks)
}

func TestDispatchStartStopTogglesAttribute(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "dig", "trench")
	require.NoError(t, err)

	res, err := run(t, d, "1", "start")
	require.NoError(t, err)
	assert.True(t, res.Tasks[0].Has("start"))

	res, err = run(t, d, "1", "stop")
	require.NoError(t, err)
	assert.False(t, res.Tasks[0].Has("start"))
}

func TestDispatchAnnotateAndDenotate(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "call", "plumber")
	require.NoError(t, err)

	res, err := run(t, d, "1", "annotate", "left", "voicemail")
	require.NoError(t, err)
	require.Len(t, res.Tasks[0].Annotations(), 1)
	assert.Contains(t, res.Tasks[0].Annotations()[0].Description, "voicemail")

	res, err = run(t, d, "1", "denotate", "voicemail")
	require.NoError(t, err)
	assert.Empty(t, res.Tasks[0].Annotations())
}

func TestDispatchModifyWiresDependsByWorkingSetID(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "design", "schema")
	require.NoError(t, err)
	_, err = run(t, d, "add", "write", "migration")
	require.NoError(t, err)

	res, err := run(t, d, "2", "modify", "depends:1")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)

	listRes, err := run(t, d, "list")
	require.NoError(t, err)
	var schema, migration *task.Task
	for _, tk := range listRes.Tasks {
		if tk.Get("id") == "1" {
			schema = tk
		}
		if tk.Get("id") == "2" {
			migration = tk
		}
	}
	require.NotNil(t, schema)
	require.NotNil(t, migration)
	assert.Equal(t, []string{schema.UUID()}, migration.Dependencies())

	res, err = run(t, d, "2", "modify", "depends:-1")
	require.NoError(t, err)
	assert.Empty(t, res.Tasks[0].Dependencies())
}

func TestDispatchModifyDependsRejectsCycle(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "a")
	require.NoError(t, err)
	_, err = run(t, d, "add", "b")
	require.NoError(t, err)

	_, err = run(t, d, "2", "modify", "depends:1")
	require.NoError(t, err)

	_, err = run(t, d, "1", "modify", "depends:2")
	require.Error(t, err)
}

func TestDispatchUndoRevertsModify(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "pay", "invoice")
	require.NoError(t, err)
	_, err = run(t, d, "1", "modify", "priority:H")
	require.NoError(t, err)

	_, err = run(t, d, "undo")
	require.NoError(t, err)

	res, err := run(t, d, "list")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Empty(t, res.Tasks[0].Get("priority"))
}

func TestDispatchUndoWithNothingToUndoIsValidationError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	_, err := run(t, d, "undo")
	require.Error(t, err)
}

func TestDispatchEmptyFilterWriteIsGatedBySafety(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "one")
	require.NoError(t, err)

	// a write command with no filter at all must prompt rather than
	// silently affecting every pending task.
	d.Confirm = &scriptedConfirmer{answer: false}
	_, err = run(t, d, "done")
	require.Error(t, err)
}

func TestDispatchConfirmationDeclineSkipsTask(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := run(t, d, "add", "skip", "me")
	require.NoError(t, err)

	d.Confirm = &scriptedConfirmer{answer: false}
	res, err := run(t, d, "1", "modify", "priority:L")
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)

	listRes, err := run(t, d, "list")
	require.NoError(t, err)
	assert.Empty(t, listRes.Tasks[0].Get("priority"))
}

func TestLexExpressionWordsHandlesRelativeDate(t *testing.T) {
	items, err := lexExpressionWords("eom")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex map[string]*Task

func (f fakeIndex) Lookup(id string) (*Task, bool) {
	t, ok := f[id]
	return t, ok
}

func TestNewHasMandatoryAttributes(t *testing.T) {
	tk := New("buy milk", 1000)
	assert.NotEmpty(t, tk.UUID())
	assert.Equal(t, Pending, tk.Status())
	assert.Equal(t, "buy milk", tk.Description())
	assert.Equal(t, int64(1000), tk.GetInt("entry"))
}

func TestAddTagIdempotent(t *testing.T) {
	tk := New("x", 1)
	tk.AddTag("urgent")
	tk.AddTag("urgent")
	assert.Equal(t, []string{"urgent"}, tk.Tags())
}

func TestRemoveTag(t *testing.T) {
	tk := New("x", 1)
	tk.AddTag("urgent")
	tk.RemoveTag("urgent")
	assert.False(t, tk.HasTag("urgent"))
}

func TestValidateStartBeforeEntry(t *testing.T) {
	tk := New("x", 1000)
	tk.SetInt("start", 500)
	err := tk.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}

func TestValidateWaitMustPrecedeDue(t *testing.T) {
	tk := New("x", 1000)
	tk.SetInt("wait", 2000)
	tk.SetInt("due", 2000)
	err := tk.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait")
}

func TestValidateRecurringRequiresDueAndRecur(t *testing.T) {
	tk := New("x", 1000)
	tk.Set("status", string(Recurring))
	err := tk.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recur")
}

func TestValidateNonRecurringForbidsUntil(t *testing.T) {
	tk := New("x", 1000)
	tk.Set("until", "2000")
	err := tk.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "until")
}

func TestValidateBlankDescription(t *testing.T) {
	tk := New("   ", 1000)
	err := tk.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestAddDependencySelfRejected(t *testing.T) {
	tk := New("x", 1)
	err := tk.AddDependency(tk.UUID(), fakeIndex{})
	assert.Error(t, err)
}

func TestAddDependencyCycleRejected(t *testing.T) {
	a := New("a", 1)
	b := New("b", 1)
	idx := fakeIndex{a.UUID(): a, b.UUID(): b}

	require.NoError(t, a.AddDependency(b.UUID(), idx))
	err := b.AddDependency(a.UUID(), idx)
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	tk := New("x", 1)
	tk.AddTag("urgent")
	c := tk.Clone()
	c.AddTag("other")
	c.Set("description", "changed")

	assert.False(t, tk.HasTag("other"))
	assert.Equal(t, "x", tk.Description())
}

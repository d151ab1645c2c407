package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	cases := []struct {
		title   string
		a, b    Value
		want    Value
		success bool
	}{
		{"int+int", NewInt(1), NewInt(2), NewInt(3), true},
		{"int+real promotes", NewInt(1), NewReal(1.5), NewReal(2.5), true},
		{"string+string concatenates", NewString("foo"), NewString("bar"), NewString("foobar"), true},
		{"date+duration", NewDate(1000, false), NewDuration(10), NewDate(1010, false), true},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			got, err := c.a.Add(c.b)
			if !c.success {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want.kind, got.kind)
			assert.Equal(t, c.want.AsString(), got.AsString())
		})
	}
}

func TestSub(t *testing.T) {
	t.Run("date-duration yields date", func(t *testing.T) {
		got, err := NewDate(1010, false).Sub(NewDuration(10))
		require.NoError(t, err)
		assert.Equal(t, Date, got.Kind())
		assert.Equal(t, int64(1000), got.AsEpoch())
	})

	t.Run("date-date yields duration", func(t *testing.T) {
		got, err := NewDate(1010, false).Sub(NewDate(1000, false))
		require.NoError(t, err)
		assert.Equal(t, Duration, got.Kind())
		assert.Equal(t, int64(10), got.AsEpoch())
	})

	t.Run("round-trip: (d + delta) - delta == d", func(t *testing.T) {
		d := NewDate(1_700_000_000, false)
		delta := NewDuration(86400 * 3)
		plus, err := d.Add(delta)
		require.NoError(t, err)
		back, err := plus.Sub(delta)
		require.NoError(t, err)
		assert.Equal(t, d.AsEpoch(), back.AsEpoch())
	})
}

func TestPriorityOrdering(t *testing.T) {
	cases := []struct {
		title string
		a, b  string
		want  int
	}{
		{"H beats M", "H", "M", 1},
		{"M beats L", "M", "L", 1},
		{"L beats empty", "L", "", 1},
		{"equal", "H", "H", 0},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			got, err := Cmp(NewString(c.a), NewString(c.b), "priority")
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestEqPartialProjectPrefix(t *testing.T) {
	cases := []struct {
		title       string
		left, right string
		want        bool
	}{
		{"exact match", "Home", "Home", true},
		{"leftmost prefix", "Home.Garden", "Home", true},
		{"not a prefix", "Homework", "Home", false},
		{"empty right matches empty left only", "", "", true},
	}

	for _, c := range cases {
		t.Run(c.title, func(t *testing.T) {
			got, err := EqPartial(NewString(c.left), NewString(c.right), "project")
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestMatchRegex(t *testing.T) {
	t.Run("substring match when not a regex literal", func(t *testing.T) {
		got, err := MatchRegex(NewString("Buy milk"), NewString("milk"), false, true)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("regex match when lexed as a pattern", func(t *testing.T) {
		got, err := MatchRegex(NewString("Buy milk"), NewString("^Buy"), true, true)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("case-insensitive switch", func(t *testing.T) {
		got, err := MatchRegex(NewString("Buy MILK"), NewString("milk"), false, false)
		require.NoError(t, err)
		assert.True(t, got)
	})
}

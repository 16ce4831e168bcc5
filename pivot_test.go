package statetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) *State {
	t.Helper()
	root, err := Define("root", func(b *Builder) {
		b.State("A", func(b *Builder) {
			b.State("a1", func(b *Builder) {
				b.State("x", nil)
			})
			b.State("a2", nil)
		})
		b.State("B", nil)
	})
	require.NoError(t, err)
	return root
}

func TestFindPivot(t *testing.T) {
	t.Parallel()

	root := testTree(t)
	at := func(path string) *State {
		s, err := root.Resolve(path)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		from, to, want string
	}{
		{"/A/a1/x", "/A/a2", "/A"},
		{"/A/a1/x", "/B", "/"},
		{"/A", "/A/a1/x", "/A"},
		{"/A/a1/x", "/A", "/A"},
		{"/B", "/B", "/B"},
	}
	for _, tt := range tests {
		got, err := findPivot(at(tt.from), at(tt.to))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Path(), "%s -> %s", tt.from, tt.to)
	}

	other := testTree(t)
	_, err := findPivot(root, other)
	assert.ErrorIs(t, err, ErrForeignState)
	_, err = findPivotMany(root, []*State{other})
	assert.ErrorIs(t, err, ErrForeignState)
}

func TestFindPivotManyWithoutDestinations(t *testing.T) {
	t.Parallel()

	root := testTree(t)
	a, _ := root.Child("A")
	got, err := findPivotMany(a, nil)
	require.NoError(t, err)
	assert.Same(t, a, got)
}

func TestChildToward(t *testing.T) {
	t.Parallel()

	root := testTree(t)
	a, _ := root.Child("A")
	a1, _ := a.Child("a1")
	x, _ := a1.Child("x")
	b, _ := root.Child("B")

	assert.Same(t, a1, a.childToward(x))
	assert.Same(t, a, root.childToward(x))
	assert.Nil(t, a.childToward(a))
	assert.Nil(t, a.childToward(b))
	assert.Nil(t, x.childToward(root))
}

func TestFlushDepthRestoredAfterPanic(t *testing.T) {
	t.Parallel()

	root, err := Define("root", func(b *Builder) {
		b.State("A", func(b *Builder) {
			b.Event("boom", func(*State, ...any) bool { panic("boom") })
		})
	})
	require.NoError(t, err)
	_, err = root.Goto()
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = root.Send("boom") })
	assert.Zero(t, root.chart.depth)
	assert.Zero(t, root.chart.queue.Len())
}

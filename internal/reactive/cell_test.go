package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_ReadWriteClear(t *testing.T) {
	c := NewCell()
	assert.Equal(t, "", c.Read())

	c.Write("Test1")
	assert.Equal(t, "Test1", c.Read())

	c.Write("Test2")
	assert.Equal(t, "Test2", c.Read())

	c.Clear()
	assert.Equal(t, "", c.Read())
	c.Clear()
	assert.Equal(t, "", c.Read())
}

func TestCell_ZeroValueUsable(t *testing.T) {
	var c Cell
	c.Write("x")
	assert.Equal(t, "x", c.Read())
}

func TestCell_SubscribeNotifiesOnChangeOnly(t *testing.T) {
	c := NewCell()
	type change struct{ old, new string }
	var got []change
	cancel := c.Subscribe(func(old, new string) { got = append(got, change{old, new}) })

	c.Write("a")
	c.Write("a")
	c.Clear()
	c.Clear()

	assert.Equal(t, []change{{"", "a"}, {"a", ""}}, got)
	assert.Equal(t, uint64(2), c.Version())

	cancel()
	cancel()
	c.Write("b")
	assert.Len(t, got, 2)
}

func TestCell_ListenersRunInOrder(t *testing.T) {
	c := NewCell()
	var order []string
	c.Subscribe(func(_, _ string) { order = append(order, "first") })
	c.Subscribe(func(_, _ string) { order = append(order, "second") })

	c.Write("v")

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCell_ListenerMayReadCell(t *testing.T) {
	c := NewCell()
	var seen string
	c.Subscribe(func(_, _ string) { seen = c.Read() })

	c.Write("v")

	assert.Equal(t, "v", seen)
}

func TestWriter_ClearsOnUnmount(t *testing.T) {
	c := NewCell()
	s := NewScope("test1")

	_, err := WriteScoped(s, c, "Test1")
	require.NoError(t, err)
	assert.Equal(t, "Test1", c.Read())

	s.Unmount()
	assert.Equal(t, "", c.Read())
}

func TestWriter_DoesNotClearAnotherWritersValue(t *testing.T) {
	c := NewCell()
	first := NewScope("first")
	second := NewScope("second")

	_, err := WriteScoped(first, c, "one")
	require.NoError(t, err)
	_, err = WriteScoped(second, c, "two")
	require.NoError(t, err)

	first.Unmount()
	assert.Equal(t, "two", c.Read(), "first must not clear output it no longer owns")

	second.Unmount()
	assert.Equal(t, "", c.Read())
}

func TestWriter_IdenticalValueStaysWhileAnotherOwnerIsMounted(t *testing.T) {
	t.Run("siblings", func(t *testing.T) {
		c := NewCell()
		a := NewScope("a")
		b := NewScope("b")
		_, err := WriteScoped(a, c, "Test1")
		require.NoError(t, err)
		_, err = WriteScoped(b, c, "Test1")
		require.NoError(t, err)

		a.Unmount()
		assert.Equal(t, "Test1", c.Read(), "b still owns the value")

		b.Unmount()
		assert.Equal(t, "", c.Read())
	})

	t.Run("parent and child", func(t *testing.T) {
		c := NewCell()
		parent := NewScope("app")
		child, err := parent.Child("nested")
		require.NoError(t, err)
		_, err = WriteScoped(parent, c, "X")
		require.NoError(t, err)
		_, err = WriteScoped(child, c, "X")
		require.NoError(t, err)

		child.Unmount()
		assert.Equal(t, "X", c.Read(), "parent is still mounted")

		parent.Unmount()
		assert.Equal(t, "", c.Read())
	})
}

func TestWriter_UnmountFallsBackToMountedWriter(t *testing.T) {
	c := NewCell()
	parent := NewScope("app")
	child, err := parent.Child("nested")
	require.NoError(t, err)

	_, err = WriteScoped(parent, c, "outer")
	require.NoError(t, err)
	inner, err := WriteScoped(child, c, "inner")
	require.NoError(t, err)
	require.NoError(t, inner.Write("inner2"))

	var changes []string
	c.Subscribe(func(_, new string) { changes = append(changes, new) })

	child.Unmount()
	assert.Equal(t, "outer", c.Read())
	parent.Unmount()
	assert.Equal(t, "", c.Read())
	assert.Equal(t, []string{"outer", ""}, changes)
}

func TestWriter_UnownedWriteDropsClaims(t *testing.T) {
	c := NewCell()
	s := NewScope("test1")
	_, err := WriteScoped(s, c, "Test1")
	require.NoError(t, err)

	c.Write("external")
	s.Unmount()

	assert.Equal(t, "external", c.Read())
}

func TestWriter_ListenerMayUseScope(t *testing.T) {
	c := NewCell()
	s := NewScope("test1")
	w, err := NewWriter(s, c)
	require.NoError(t, err)

	var registered error
	c.Subscribe(func(_, new string) {
		if new == "Test1" {
			registered = s.OnCleanup(func() {})
		}
	})

	require.NoError(t, w.Write("Test1"))
	assert.NoError(t, registered)
	assert.Equal(t, 2, s.Pending())
}

func TestWriter_WriteAfterUnmount(t *testing.T) {
	c := NewCell()
	s := NewScope("test1")
	w, err := NewWriter(s, c)
	require.NoError(t, err)

	s.Unmount()

	err = w.Write("late")
	assert.ErrorIs(t, err, ErrStaleScope)
	assert.Equal(t, "", c.Read())
}

func TestWriter_NewOnUnmountedScope(t *testing.T) {
	s := NewScope("gone")
	s.Unmount()

	_, err := WriteScoped(s, NewCell(), "x")
	assert.ErrorIs(t, err, ErrStaleScope)
}

func TestWriter_RepeatedMountCyclesLeaveCellEmpty(t *testing.T) {
	c := NewCell()
	for i := 0; i < 5; i++ {
		s := NewScope("test1")
		_, err := WriteScoped(s, c, "Test1")
		require.NoError(t, err)
		s.Unmount()
		s.Unmount()
		assert.Equal(t, "", c.Read(), "cycle %d", i)
	}
}

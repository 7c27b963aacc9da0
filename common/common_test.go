package common

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceEnvVars(t *testing.T) {
	require.NoError(t, os.Setenv("X", "foo"))
	require.NoError(t, os.Setenv("Y", "bar"))
	require.NoError(t, os.Setenv("SOME_VAR", "blah"))

	str := "a/${X}${Y}/$MISSING/$SOME_VAR"
	want := "a/foobar//blah"
	assert.Equal(t, want, ReplaceEnvVars(str))

	str = "${X}"
	want = "foo"
	assert.Equal(t, want, ReplaceEnvVars(str))
}

func TestSet(t *testing.T) {
	s := SetWith("a", "b")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	s.Insert("c")
	s.Delete("a")
	assert.Equal(t, []string{"b", "c"}, SortedKeys(s))
}

func TestLatch(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.Test())
	assert.False(t, l.WaitTimeout(time.Millisecond))
	go l.Trigger()
	l.Wait()
	assert.True(t, l.Test())
	l.Trigger() // No-op.
	assert.True(t, l.WaitTimeout(time.Millisecond))
}

func TestArrayFlag(t *testing.T) {
	var f ArrayFlag
	require.NoError(t, f.Set("a"))
	require.NoError(t, f.Set("b"))
	assert.Equal(t, "a,b", f.String())
}

func TestUniqueId(t *testing.T) {
	id0, id1 := UniqueId(), UniqueId()
	assert.Len(t, id0, 8)
	assert.NotEqual(t, id0, id1)
}

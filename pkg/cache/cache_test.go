package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreThenGetShortCircuits(t *testing.T) {
	c := New()
	key := Key{TaskID: "t1", Module: "fs", Action: "read", Args: map[string]string{"path": "/t/a.txt"}}

	_, ok := c.Get(key)
	require.False(t, ok)

	c.Store(key, "hello")
	v, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestStoreIsFirstWriteWins(t *testing.T) {
	c := New()
	key := Key{TaskID: "t1", Module: "fs", Action: "read", Args: map[string]string{"path": "/t/a.txt"}}

	c.Store(key, "first")
	c.Store(key, "second")

	v, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, "first", v)
}

func TestDifferentArgsAreDifferentKeys(t *testing.T) {
	c := New()
	k1 := Key{TaskID: "t1", Module: "fs", Action: "read", Args: map[string]string{"path": "/t/a.txt"}}
	k2 := Key{TaskID: "t1", Module: "fs", Action: "read", Args: map[string]string{"path": "/t/b.txt"}}

	c.Store(k1, "a")
	c.Store(k2, "b")

	require.Equal(t, 2, c.Len())
}

func TestDifferentTasksAreIsolated(t *testing.T) {
	c := New()
	k1 := Key{TaskID: "t1", Module: "fs", Action: "read", Args: map[string]string{"path": "/t/a.txt"}}
	k2 := Key{TaskID: "t2", Module: "fs", Action: "read", Args: map[string]string{"path": "/t/a.txt"}}

	c.Store(k1, "a")
	_, ok := c.Get(k2)
	require.False(t, ok)
}

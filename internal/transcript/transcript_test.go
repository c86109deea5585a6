package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveListRoundTrip(t *testing.T) {
	s := Open("")
	defer s.Close()

	s.Save("s1", "user", "hello")
	s.Save("s1", "assistant", "hi")
	s.Save("s2", "user", "other session")

	got := s.List("s1")
	require.Len(t, got, 2)
	require.Equal(t, "user", got[0].Role)
	require.Equal(t, "hello", got[0].Content)
	require.Equal(t, "assistant", got[1].Role)
	require.Equal(t, "hi", got[1].Content)
	require.True(t, got[0].ID < got[1].ID, "entries must keep insertion order")
}

func TestClearDropsOnlyOneSession(t *testing.T) {
	s := Open("")
	defer s.Close()

	s.Save("s1", "user", "a")
	s.Save("s2", "user", "b")
	s.Clear("s1")

	require.Empty(t, s.List("s1"))
	require.Len(t, s.List("s2"), 1)
}

func TestListUnknownSessionIsEmpty(t *testing.T) {
	s := Open("")
	defer s.Close()
	require.Empty(t, s.List("nope"))
}

package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopaper/autopaper/artifact"
	"github.com/autopaper/autopaper/core"
)

var _ core.ArtifactStore = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("s1", "plots/fig1.png", []byte("png bytes")))

	data, err := s.Get("s1", "plots/fig1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	refs, err := s.List("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"plots/fig1.png"}, refs)

	require.NoError(t, s.Delete("s1", "plots/fig1.png"))
	_, err = s.Get("s1", "plots/fig1.png")
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestStoreUnknownSessionListsEmpty(t *testing.T) {
	s := newTestStore(t)
	refs, err := s.List("nope")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestStoreRejectsEscapingRefs(t *testing.T) {
	s := newTestStore(t)
	err := s.Save("s1", "../outside.txt", []byte("x"))
	require.Error(t, err)
	_, err = s.Get("s1", "../../etc/passwd")
	require.Error(t, err)
}

func TestStoreIsolatesSessions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("a", "doc.pdf", []byte("a")))
	require.NoError(t, s.Save("b", "doc.pdf", []byte("b")))

	data, err := s.Get("b", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)

	refs, err := s.List("a")
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBoltStoreGetPut(t *testing.T) {
	s := newTestBoltStore(t)

	_, err := s.Get(KeyNotifications)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(KeyNotifications, []byte(`[{"id":"a"}]`)))
	data, err := s.Get(KeyNotifications)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(data))

	// Put replaces the whole value
	require.NoError(t, s.Put(KeyNotifications, []byte(`[]`)))
	data, err = s.Get(KeyNotifications)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestBoltStoreSessionsSeparateFromCollections(t *testing.T) {
	s := newTestBoltStore(t)

	require.NoError(t, s.Put(SessionKey("inst-1"), []byte(`{"id":"u-1"}`)))
	require.NoError(t, s.Put(KeyEmployees, []byte(`[]`)))

	data, err := s.Get(SessionKey("inst-1"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u-1"}`, string(data))

	require.NoError(t, s.Delete(SessionKey("inst-1")))
	_, err = s.Get(SessionKey("inst-1"))
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error
	assert.NoError(t, s.Delete(SessionKey("inst-1")))
}

func TestBoltStoreReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(KeyTasks, []byte(`[{"id":"t-1"}]`)))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Get(KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"t-1"}]`, string(data))
}

func TestBoltStoreReturnsCopy(t *testing.T) {
	s := newTestBoltStore(t)
	require.NoError(t, s.Put(KeyIssues, []byte(`[1]`)))

	data, err := s.Get(KeyIssues)
	require.NoError(t, err)
	data[0] = 'x'

	again, err := s.Get(KeyIssues)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(again))
}

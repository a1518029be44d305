package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, posts *mockPostStore) *Manager {
	t.Helper()
	m := NewManager(posts, new(mockMediaStore), testStager(t), 30*time.Minute)
	t.Cleanup(m.Shutdown)
	return m
}

func TestManagerGetChecksOwnership(t *testing.T) {
	m := newTestManager(t, new(mockPostStore))

	s := m.OpenCreate("u1")

	got, err := m.Get(s.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = m.Get(s.ID, "someone-else")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerCloseForgetsSession(t *testing.T) {
	m := newTestManager(t, new(mockPostStore))

	s := m.OpenCreate("u1")
	require.NoError(t, m.Close(s.ID, "u1"))

	_, err := m.Get(s.ID, "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(s.ID, "u1"), ErrSessionNotFound)
}

func TestManagerOpenUpdateLoadsPost(t *testing.T) {
	posts := new(mockPostStore)
	posts.On("GetByID", mock.Anything, "o1").Return(existingPost(), nil).Once()
	m := newTestManager(t, posts)

	s, err := m.OpenUpdate(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, ModeUpdate, s.Mode)
	assert.Equal(t, "Friday look", s.Snapshot().Draft.Title)
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	m := newTestManager(t, new(mockPostStore))

	s := m.OpenCreate("u1")

	// not idle long enough yet
	m.evictIdle(time.Now())
	_, err := m.Get(s.ID, "u1")
	require.NoError(t, err)

	m.evictIdle(time.Now().Add(31 * time.Minute))
	_, err = m.Get(s.ID, "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

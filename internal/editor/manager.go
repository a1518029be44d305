package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"lookbook-service/internal/staging"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("editor session not found")

// Manager owns the open editor sessions. Sessions idle past the
// configured window are torn down so abandoned editors do not leak
// staged temp files.
type Manager struct {
	posts    PostStore
	media    MediaStore
	stager   *staging.Stager
	idleTTL  time.Duration
	interval time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager. idleTTL bounds how long an
// untouched session survives.
func NewManager(posts PostStore, media MediaStore, stager *staging.Stager, idleTTL time.Duration) *Manager {
	m := &Manager{
		posts:    posts,
		media:    media,
		stager:   stager,
		idleTTL:  idleTTL,
		interval: time.Minute,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// OpenCreate opens an editor for a new post owned by userID
func (m *Manager) OpenCreate(userID string) *Session {
	s := NewCreateSession(userID, m.posts, m.media, m.stager)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// OpenUpdate opens an editor over an existing post
func (m *Manager) OpenUpdate(ctx context.Context, userID, postID string) (*Session, error) {
	s, err := NewUpdateSession(ctx, userID, postID, m.posts, m.media, m.stager)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get looks up an open session owned by userID
func (m *Manager) Get(sessionID, userID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears down a session and forgets it
func (m *Manager) Close(sessionID, userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok && s.UserID == userID {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok || s.UserID != userID {
		return ErrSessionNotFound
	}
	s.Teardown()
	return nil
}

// Shutdown tears down every open session
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Teardown()
	}
}

func (m *Manager) evictLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle(time.Now())
		}
	}
}

func (m *Manager) evictIdle(now time.Time) {
	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastUsed) > m.idleTTL && s.status == StatusIdle
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		log.WithFields(log.Fields{"session": s.ID, "user": s.UserID}).Info("evicting idle editor session")
		s.Teardown()
	}
}

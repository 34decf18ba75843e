package handlers

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/photocrop/internal/editor"
)

// EditSession binds one editing engine to its per-session upload directory.
// The engine itself is single-writer, so every handler takes the session
// lock before touching it; HTTP is the only concurrent caller.
type EditSession struct {
	ID        string
	Engine    *editor.Session
	UploadDir string
	CreatedAt time.Time

	mu sync.Mutex
}

// Lock serializes access to the engine for the duration of one request.
func (s *EditSession) Lock() {
	s.mu.Lock()
}

// Unlock releases the session.
func (s *EditSession) Unlock() {
	s.mu.Unlock()
}

// SessionManager owns all live editing sessions, keyed by uuid. Sessions
// are independent: nothing is shared between them, and closing one destroys
// its collection, transforms and uploaded files together.
type SessionManager struct {
	sessions map[string]*EditSession
	mu       sync.RWMutex
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*EditSession)}
}

// Create starts a new editing session with the given crop window geometry.
// Uploaded photos for this session land in a fresh directory under baseDir.
func (m *SessionManager) Create(frameW, frameH, itemExtent float64, baseDir string) (*EditSession, error) {
	dir, err := os.MkdirTemp(baseDir, "photocrop-session-")
	if err != nil {
		return nil, fmt.Errorf("creating session upload dir: %w", err)
	}

	sess := &EditSession{
		ID:        uuid.New().String(),
		Engine:    editor.NewSession(frameW, frameH, itemExtent),
		UploadDir: dir,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess, nil
}

// Get returns a live session by id.
func (m *SessionManager) Get(id string) (*EditSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close destroys a session and its uploaded files.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session %s", id)
	}
	return os.RemoveAll(sess.UploadDir)
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

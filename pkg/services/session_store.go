package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tably-ai/tably-engine/pkg/apperrors"
	"github.com/tably-ai/tably-engine/pkg/metrics"
	"github.com/tably-ai/tably-engine/pkg/models"
)

// SessionStore holds the process-wide mapping of session identifier to
// session. State is ephemeral: nothing survives a restart.
// The interface is injectable so the in-memory implementation can be
// swapped for a distributed cache without touching orchestration logic.
type SessionStore interface {
	// Create stores a new session for the dataset and returns its
	// identifier. Fails with apperrors.ErrValidation on empty input.
	Create(rows []models.Row, name string, columns []string) (string, error)

	// Get returns a snapshot of the session and refreshes its
	// last-accessed timestamp. Fails with apperrors.ErrNotFound for
	// unknown or expired identifiers.
	Get(sessionID string) (*models.Session, error)

	// Touch refreshes the session's last-accessed timestamp.
	Touch(sessionID string)

	// ReplaceTable atomically swaps the session's table reference.
	ReplaceTable(sessionID string, rows []models.Row) error

	// SweepExpired removes every session idle longer than maxAge and
	// returns how many were removed.
	SweepExpired(maxAge time.Duration) int

	// Len returns the current session count.
	Len() int
}

// memorySessionStore is the in-memory SessionStore. A single RWMutex
// guards the map; each session's row slice is only ever read or replaced
// as a unit, so snapshots handed out under the lock stay consistent even
// if a concurrent turn commits a new table immediately after.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore(m *metrics.Metrics, logger *zap.Logger) SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*models.Session),
		metrics:  m,
		logger:   logger.Named("session-store"),
	}
}

var _ SessionStore = (*memorySessionStore)(nil)

func (s *memorySessionStore) Create(rows []models.Row, name string, columns []string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: dataset has no rows", apperrors.ErrValidation)
	}
	if name == "" {
		return "", fmt.Errorf("%w: dataset name is required", apperrors.ErrValidation)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: column list is required", apperrors.ErrValidation)
	}

	now := time.Now()
	id := newSessionID(now)

	session := &models.Session{
		ID:           id,
		Name:         name,
		Columns:      columns,
		Rows:         rows,
		Stats:        ComputeStats(rows, columns),
		CreatedAt:    now,
		LastAccessed: now,
	}

	s.mu.Lock()
	s.sessions[id] = session
	size := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SessionsCreated.Inc()
	s.metrics.ActiveSessions.Set(float64(size))

	s.logger.Info("Session created",
		zap.String("session_id", id),
		zap.String("dataset", name),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(columns)))

	return id, nil
}

func (s *memorySessionStore) Get(sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	session.LastAccessed = time.Now()

	// Hand out a value snapshot: the caller gets the row slice as it was
	// at this instant, unaffected by a later ReplaceTable.
	snapshot := *session
	return &snapshot, nil
}

func (s *memorySessionStore) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.LastAccessed = time.Now()
	}
}

func (s *memorySessionStore) ReplaceTable(sessionID string, rows []models.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	session.Rows = rows
	session.LastAccessed = time.Now()
	return nil
}

func (s *memorySessionStore) SweepExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	removed := 0
	for id, session := range s.sessions {
		if session.LastAccessed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	size := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.SessionsSwept.Add(float64(removed))
		s.metrics.ActiveSessions.Set(float64(size))
		s.logger.Info("Swept expired sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", size))
	}
	return removed
}

func (s *memorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartReaper runs SweepExpired on a fixed interval in a background
// goroutine. The sweep never blocks queries; it only takes the store lock
// for the duration of the map scan.
func StartReaper(store SessionStore, maxAge, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			store.SweepExpired(maxAge)
		}
	}()
}

// newSessionID produces an identifier with a timestamp component and
// enough random bits that collision is negligible for the process
// lifetime. Collisions are not otherwise detected.
func newSessionID(now time.Time) string {
	return fmt.Sprintf("sess-%d-%s", now.UnixMilli(), uuid.NewString())
}

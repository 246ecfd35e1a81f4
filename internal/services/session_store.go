package services

import (
	"sync"
	"time"

	"insightdesk/internal/insights"
)

// SessionArtifacts are the generated downloads of one session. Nil entries
// are produced on demand.
type SessionArtifacts struct {
	Original     []byte
	CleanedCSV   []byte
	CleanedExcel []byte
	DashboardPDF []byte
}

type storedSession struct {
	session   *insights.AnalysisSession
	artifacts *SessionArtifacts
	expires   time.Time
}

// SessionStore keeps analysis sessions in memory for a fixed time so their
// downloads outlive the request that created them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*storedSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store. A non-positive ttl keeps sessions forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*storedSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores s and its artifacts, evicting expired sessions on the way.
func (st *SessionStore) Put(s *insights.AnalysisSession, artifacts *SessionArtifacts) {
	if artifacts == nil {
		artifacts = &SessionArtifacts{}
	}
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sweepLocked(now)
	entry := &storedSession{session: s, artifacts: artifacts}
	if st.ttl > 0 {
		entry.expires = now.Add(st.ttl)
	}
	st.sessions[s.ID] = entry
}

// Get returns the session and a copy of its artifacts, or ErrSessionNotFound.
func (st *SessionStore) Get(id string) (*insights.AnalysisSession, SessionArtifacts, error) {
	now := st.now()
	st.mu.RLock()
	defer st.mu.RUnlock()

	entry, ok := st.sessions[id]
	if !ok || st.expired(entry, now) {
		return nil, SessionArtifacts{}, ErrSessionNotFound
	}
	return entry.session, *entry.artifacts, nil
}

// SetPDF records a lazily printed dashboard PDF.
func (st *SessionStore) SetPDF(id string, pdf []byte) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if entry, ok := st.sessions[id]; ok {
		entry.artifacts.DashboardPDF = pdf
	}
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	now := st.now()
	st.mu.RLock()
	defer st.mu.RUnlock()

	n := 0
	for _, entry := range st.sessions {
		if !st.expired(entry, now) {
			n++
		}
	}
	return n
}

// Sweep drops expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(st.now())
}

func (st *SessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, entry := range st.sessions {
		if st.expired(entry, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *SessionStore) expired(entry *storedSession, now time.Time) bool {
	return !entry.expires.IsZero() && now.After(entry.expires)
}

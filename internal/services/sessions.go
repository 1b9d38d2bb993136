package services

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/smartcv/searchpanel/internal/clients/brightdata"
	"github.com/smartcv/searchpanel/internal/entities"
)

type FlowState string

const (
	StateIdle      FlowState = "idle"
	StateSubmitted FlowState = "submitted"
	StatePolling   FlowState = "polling"
	StateReady     FlowState = "ready"
	StateFetched   FlowState = "fetched"
	StateFailed    FlowState = "failed"
)

// Session is the per-browser-session state record. All mutation goes through
// its methods; concurrent writers (a manual check racing the auto-refresh
// poller) resolve last-write-wins, never a partial merge.
type Session struct {
	mu             sync.Mutex
	state          FlowState
	snapshotID     string
	lastStatus     *brightdata.SnapshotStatus
	resultsFetched bool
	autoRefresh    bool
	results        *entities.ResultSet
	submittedAt    time.Time
}

// SessionView is a consistent copy of a session's observable state.
type SessionView struct {
	State          FlowState `json:"state"`
	SnapshotID     string    `json:"snapshot_id"`
	AutoRefresh    bool      `json:"auto_refresh"`
	ResultsFetched bool      `json:"results_fetched"`
	SubmittedAt    time.Time `json:"-"`
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		State:          s.state,
		SnapshotID:     s.snapshotID,
		AutoRefresh:    s.autoRefresh,
		ResultsFetched: s.resultsFetched,
		SubmittedAt:    s.submittedAt,
	}
}

// BeginSearch resets the session around a freshly assigned snapshot,
// discarding everything held for the previous one.
func (s *Session) BeginSearch(snapshotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateSubmitted
	s.snapshotID = snapshotID
	s.lastStatus = nil
	s.resultsFetched = false
	s.autoRefresh = false
	s.results = nil
	s.submittedAt = time.Now()
}

// ApplyStatus replaces the last-known status wholesale and derives the new
// flow state from it.
func (s *Session) ApplyStatus(status *brightdata.SnapshotStatus) FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastStatus = status

	switch status.Status {
	case brightdata.StatusReady:
		if s.state != StateFetched {
			s.state = StateReady
		}
	case brightdata.StatusFailed:
		s.state = StateFailed
	default:
		if s.state != StateFetched {
			s.state = StatePolling
		}
	}

	return s.state
}

func (s *Session) LastStatus() *brightdata.SnapshotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus
}

func (s *Session) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRefresh = enabled
}

func (s *Session) AutoRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRefresh
}

// TryDisableAutoRefresh switches auto-refresh off and reports whether it was
// on, so the caller logs the transition exactly once.
func (s *Session) TryDisableAutoRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasEnabled := s.autoRefresh
	s.autoRefresh = false
	return wasEnabled
}

func (s *Session) MarkFetched(results *entities.ResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.resultsFetched = true
	s.state = StateFetched
}

func (s *Session) Results() *entities.ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Sessions hands out per-session state records with a sliding TTL; an idle
// session expires and a later request under the same cookie starts clean.
type Sessions struct {
	cache *gocache.Cache
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{cache: gocache.New(ttl, ttl/2)}
}

func (m *Sessions) Get(id string) *Session {

	if cached, found := m.cache.Get(id); found {
		session := cached.(*Session)
		m.cache.Set(id, session, gocache.DefaultExpiration)
		return session
	}

	session := &Session{state: StateIdle}
	if err := m.cache.Add(id, session, gocache.DefaultExpiration); err != nil {
		//lost the race to a concurrent first request under the same cookie
		if cached, found := m.cache.Get(id); found {
			return cached.(*Session)
		}
	}
	return session
}

package challenge

import (
	"sync"
	"time"

	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/liveness"
	"github.com/verid-labs/verid/internal/provider"
)

// DefaultSessionTTL is how long a session stays retrievable after creation.
const DefaultSessionTTL = 600 * time.Second

// Trackers are the per-session frame-state detectors. Each session owns
// its own pair so concurrent sessions never share blink or turn state.
type Trackers struct {
	Blink *liveness.BlinkDetector
	Pose  *liveness.TurnDetector
}

// entry guards one session and its trackers with its own mutex, so
// concurrent requests for the same session serialize against each other
// without blocking other sessions.
type entry struct {
	mu       sync.Mutex
	session  *Session
	trackers *Trackers
}

// Store keeps live sessions in memory and expires them lazily: every
// creation sweeps out sessions older than the TTL. All session state is
// mutated through the store; reads hand out detached snapshots.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
}

// NewStore creates a session store with the given TTL. A non-positive
// TTL falls back to DefaultSessionTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Create generates a new session, registers it and sweeps expired ones
func (s *Store) Create(opts Options) *Session {
	session := NewSession(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[session.ID] = &entry{
		session: session,
		trackers: &Trackers{
			Blink: liveness.NewBlinkDetector(),
			Pose:  liveness.NewTurnDetector(),
		},
	}

	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.session.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
		}
	}

	return session.Clone()
}

// lookup must be called with s.mu held. The returned entry stays valid
// for in-flight callers even if a sweep removes it from the map.
func (s *Store) lookup(id string) (*entry, error) {
	e, ok := s.entries[id]
	if !ok || e.session.CreatedAt.Before(time.Now().Add(-s.ttl)) {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

func (s *Store) find(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

// Get returns a snapshot of a session by ID. Expired sessions that have
// not been swept yet are reported as missing.
func (s *Store) Get(id string) (*Session, error) {
	e, err := s.find(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// ProcessBlinkFrame feeds landmarks to the session's blink detector.
// Frame processing holds the session lock, so concurrent frames for one
// session are applied one at a time.
func (s *Store) ProcessBlinkFrame(id string, landmarks []provider.Point) (liveness.BlinkFrame, error) {
	e, err := s.find(id)
	if err != nil {
		return liveness.BlinkFrame{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trackers.Blink.ProcessFrame(landmarks), nil
}

// ProcessPoseFrame feeds landmarks to the session's turn detector.
func (s *Store) ProcessPoseFrame(id string, landmarks []provider.Point) (liveness.PoseFrame, error) {
	e, err := s.find(id)
	if err != nil {
		return liveness.PoseFrame{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trackers.Pose.ProcessFrame(landmarks), nil
}

// Complete records a challenge outcome on a stored session
func (s *Store) Complete(id string, challengeType Type, passed bool, metadata map[string]any) (*CompleteResult, error) {
	e, err := s.find(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Complete(challengeType, passed, metadata)
}

// Len returns the number of stored sessions, expired or not
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

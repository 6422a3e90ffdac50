package challenge

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/verid-labs/verid/internal/domain"
)

const (
	minChallenges = 2
	maxChallenges = 4
)

// Completion records the outcome of one finished challenge.
type Completion struct {
	ChallengeType Type           `json:"challenge_type"`
	Passed        bool           `json:"passed"`
	CompletedAt   time.Time      `json:"completed_at"`
	Metadata      map[string]any `json:"metadata"`
}

// CurrentChallenge is the challenge the user should perform next.
type CurrentChallenge struct {
	ChallengeType  Type   `json:"challenge_type"`
	Index          int    `json:"index"`
	Total          int    `json:"total"`
	Title          string `json:"title"`
	Instruction    string `json:"instruction"`
	Icon           string `json:"icon"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// CompleteResult is returned after a challenge completion attempt.
type CompleteResult struct {
	Passed        bool              `json:"passed"`
	SessionDone   bool              `json:"session_complete"`
	SessionPassed *bool             `json:"session_passed,omitempty"`
	NextChallenge *CurrentChallenge `json:"next_challenge,omitempty"`
}

// Session is one multi-gesture liveness attempt. The challenge sequence
// is fixed at creation and must be completed strictly in order; the
// session passes only if every challenge passed.
//
// Sessions are not safe for concurrent use; the Store serializes access.
type Session struct {
	ID         string       `json:"session_id"`
	CreatedAt  time.Time    `json:"created_at"`
	Challenges []Type       `json:"challenges"`
	Index      int          `json:"current_index"`
	Completed  []Completion `json:"completed_challenges"`
	IsComplete bool         `json:"is_complete"`
	IsPassed   bool         `json:"is_passed"`
}

// Options controls challenge sequence generation.
type Options struct {
	// NumChallenges is clamped to [2, 4]
	NumChallenges int
	// Exclude removes challenge types from the selection pool. If the
	// exclusions leave too few types, the full pool is restored.
	Exclude []Type
	// RequireHeadTurn forces at least one turn challenge into the sequence
	RequireHeadTurn bool
}

// NewSession creates a session with a freshly generated challenge sequence
func NewSession(opts Options) *Session {
	n := opts.NumChallenges
	if n < minChallenges {
		n = minChallenges
	}
	if n > maxChallenges {
		n = maxChallenges
	}

	return &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Challenges: generate(n, opts.Exclude, opts.RequireHeadTurn),
	}
}

// generate builds a random duplicate-free challenge sequence.
func generate(n int, exclude []Type, requireHeadTurn bool) []Type {
	available := AllTypes()

	if len(exclude) > 0 {
		excluded := make(map[Type]bool, len(exclude))
		for _, t := range exclude {
			excluded[t] = true
		}
		filtered := available[:0]
		for _, t := range available {
			if !excluded[t] {
				filtered = append(filtered, t)
			}
		}
		available = filtered
	}

	// Too many exclusions: fall back to the full pool.
	if len(available) < n {
		available = AllTypes()
	}

	var challenges []Type

	if requireHeadTurn {
		turns := make([]Type, 0, 2)
		for _, t := range available {
			if t == TypeTurnLeft || t == TypeTurnRight {
				turns = append(turns, t)
			}
		}
		if len(turns) == 0 {
			turns = []Type{TypeTurnLeft, TypeTurnRight}
		}
		turn := turns[rand.Intn(len(turns))]
		challenges = append(challenges, turn)

		filtered := available[:0]
		for _, t := range available {
			if t != turn {
				filtered = append(filtered, t)
			}
		}
		available = filtered
	}

	if remaining := n - len(challenges); remaining > 0 {
		rand.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
		if remaining > len(available) {
			remaining = len(available)
		}
		challenges = append(challenges, available[:remaining]...)
	}

	rand.Shuffle(len(challenges), func(i, j int) {
		challenges[i], challenges[j] = challenges[j], challenges[i]
	})

	return challenges
}

// Clone returns a detached copy of the session state. The Store hands
// out clones so callers never observe a session mid-mutation.
func (s *Session) Clone() *Session {
	c := *s
	c.Challenges = append([]Type(nil), s.Challenges...)
	c.Completed = append([]Completion(nil), s.Completed...)
	return &c
}

// Current returns the challenge the user should perform next, or nil
// when the session is finished.
func (s *Session) Current() *CurrentChallenge {
	if s.Index >= len(s.Challenges) {
		return nil
	}

	t := s.Challenges[s.Index]
	inst := Instructions[t]

	return &CurrentChallenge{
		ChallengeType:  t,
		Index:          s.Index,
		Total:          len(s.Challenges),
		Title:          inst.Title,
		Instruction:    inst.Instruction,
		Icon:           inst.Icon,
		TimeoutSeconds: inst.TimeoutSeconds,
	}
}

// Complete records the outcome of the current challenge. The reported
// type must match the expected challenge exactly; completions out of
// order are rejected without advancing the session.
func (s *Session) Complete(challengeType Type, passed bool, metadata map[string]any) (*CompleteResult, error) {
	if s.Index >= len(s.Challenges) {
		return nil, domain.ErrSessionComplete
	}

	expected := s.Challenges[s.Index]
	if challengeType != expected {
		return nil, domain.ErrChallengeOutOfOrder.WithError(
			expectedGotError{expected: expected, got: challengeType})
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	s.Completed = append(s.Completed, Completion{
		ChallengeType: challengeType,
		Passed:        passed,
		CompletedAt:   time.Now(),
		Metadata:      metadata,
	})

	s.Index++

	result := &CompleteResult{
		Passed:        passed,
		NextChallenge: s.Current(),
	}

	if s.Index >= len(s.Challenges) {
		s.IsComplete = true
		s.IsPassed = true
		for _, c := range s.Completed {
			if !c.Passed {
				s.IsPassed = false
				break
			}
		}
		result.SessionDone = true
		result.SessionPassed = &s.IsPassed
	}

	return result, nil
}

type expectedGotError struct {
	expected Type
	got      Type
}

func (e expectedGotError) Error() string {
	return "expected challenge " + string(e.expected) + ", got " + string(e.got)
}

package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verid-labs/verid/internal/domain"
)

func TestNewSession_ChallengeCount(t *testing.T) {
	tests := []struct {
		name string
		num  int
		want int
	}{
		{name: "below minimum clamps to 2", num: 0, want: 2},
		{name: "exact", num: 3, want: 3},
		{name: "above maximum clamps to 4", num: 10, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(Options{NumChallenges: tt.num})
			assert.Len(t, s.Challenges, tt.want)
			assert.NotEmpty(t, s.ID)
		})
	}
}

func TestNewSession_NoDuplicates(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := NewSession(Options{NumChallenges: 4})
		seen := make(map[Type]bool)
		for _, c := range s.Challenges {
			assert.False(t, seen[c], "duplicate challenge %s", c)
			seen[c] = true
		}
	}
}

func TestNewSession_Exclusions(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := NewSession(Options{NumChallenges: 2, Exclude: []Type{TypeSmile, TypeBlink}})
		for _, c := range s.Challenges {
			assert.Contains(t, []Type{TypeTurnLeft, TypeTurnRight}, c)
		}
	}
}

func TestNewSession_OverExclusionFallsBackToFullPool(t *testing.T) {
	s := NewSession(Options{
		NumChallenges: 3,
		Exclude:       []Type{TypeSmile, TypeBlink, TypeTurnLeft},
	})
	assert.Len(t, s.Challenges, 3)
}

func TestNewSession_RequireHeadTurn(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := NewSession(Options{NumChallenges: 2, RequireHeadTurn: true})
		hasTurn := false
		for _, c := range s.Challenges {
			if c == TypeTurnLeft || c == TypeTurnRight {
				hasTurn = true
			}
		}
		assert.True(t, hasTurn, "sequence %v has no head turn", s.Challenges)
	}
}

func TestSession_Current(t *testing.T) {
	s := NewSession(Options{NumChallenges: 2})

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, s.Challenges[0], cur.ChallengeType)
	assert.Equal(t, 0, cur.Index)
	assert.Equal(t, 2, cur.Total)

	inst := Instructions[cur.ChallengeType]
	assert.Equal(t, inst.Title, cur.Title)
	assert.Equal(t, inst.Icon, cur.Icon)
	assert.Equal(t, inst.TimeoutSeconds, cur.TimeoutSeconds)
}

func TestSession_CompleteInOrder(t *testing.T) {
	s := NewSession(Options{NumChallenges: 2})

	res, err := s.Complete(s.Challenges[0], true, map[string]any{"score": 80.0})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.False(t, res.SessionDone)
	require.NotNil(t, res.NextChallenge)
	assert.Equal(t, s.Challenges[1], res.NextChallenge.ChallengeType)

	res, err = s.Complete(s.Challenges[1], true, nil)
	require.NoError(t, err)
	assert.True(t, res.SessionDone)
	require.NotNil(t, res.SessionPassed)
	assert.True(t, *res.SessionPassed)
	assert.Nil(t, res.NextChallenge)
	assert.True(t, s.IsComplete)
	assert.True(t, s.IsPassed)
}

func TestSession_CompleteOutOfOrder(t *testing.T) {
	s := NewSession(Options{NumChallenges: 2})

	wrong := s.Challenges[1]
	_, err := s.Complete(wrong, true, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChallengeOutOfOrder)

	// The failed attempt did not advance the session.
	assert.Equal(t, 0, s.Index)
	assert.Empty(t, s.Completed)
}

func TestSession_OneFailureFailsSession(t *testing.T) {
	s := NewSession(Options{NumChallenges: 2})

	_, err := s.Complete(s.Challenges[0], false, nil)
	require.NoError(t, err)

	res, err := s.Complete(s.Challenges[1], true, nil)
	require.NoError(t, err)
	assert.True(t, res.SessionDone)
	require.NotNil(t, res.SessionPassed)
	assert.False(t, *res.SessionPassed)
}

func TestSession_CompleteAfterDone(t *testing.T) {
	s := NewSession(Options{NumChallenges: 2})

	for _, c := range s.Challenges {
		_, err := s.Complete(c, true, nil)
		require.NoError(t, err)
	}

	_, err := s.Complete(s.Challenges[0], true, nil)
	assert.ErrorIs(t, err, domain.ErrSessionComplete)
}

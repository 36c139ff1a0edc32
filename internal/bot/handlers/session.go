package handlers

import (
	"sync"
	"time"

	"github.com/edgard/edubot/internal/engine"
)

// Step is where a user is in the command conversation.
type Step int

const (
	StepIdle Step = iota
	StepProfile
	StepPlan
	StepAnalysis
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepProfile:
		return "profile"
	case StepPlan:
		return "plan"
	case StepAnalysis:
		return "analysis"
	default:
		return "unknown"
	}
}

// Session is the transport-side state of one user. Partial carries the
// profile being collected between turns of the profile flow.
type Session struct {
	Step      Step
	Partial   *engine.UserProfile
	UpdatedAt time.Time
}

// Sessions keeps one Session per user in memory.
type Sessions struct {
	mu  sync.Mutex
	m   map[int64]Session
	now func() time.Time
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]Session), now: time.Now}
}

// Get returns the user's session; unknown users are idle.
func (s *Sessions) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

// Set stores sess for userID and stamps its update time.
func (s *Sessions) Set(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = s.now()
	s.m[userID] = sess
}

// Clear returns the user to the idle step and reports the step they left.
func (s *Sessions) Clear(userID int64) Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.m[userID].Step
	delete(s.m, userID)
	return prev
}

// PruneIdle drops sessions not updated within idle of now.
func (s *Sessions) PruneIdle(now time.Time, idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.m {
		if now.Sub(sess.UpdatedAt) > idle {
			delete(s.m, id)
			removed++
		}
	}
	return removed
}

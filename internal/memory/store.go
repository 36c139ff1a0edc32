// Package memory keeps per-user conversation memory: a bounded ring of recent
// turns and an append-only log of extracted facts, rendered into a digest
// for prompts.
package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/edgard/edubot/internal/extract"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the short-term log.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Fact is one non-empty extraction result.
type Fact struct {
	Info      extract.Facts
	Timestamp time.Time
}

// Defaults used when Options fields are zero.
const (
	DefaultCapacity      = 10
	DefaultTruncateRunes = 100
)

// State is the memory of one user. The turn ring is bounded, the fact log is not.
type State struct {
	writeMu sync.Mutex // serialises Record for this user

	mu         sync.RWMutex
	turns      *Ring[Turn]
	facts      []Fact
	lastAccess time.Time
}

// Turns returns a snapshot of the short-term log, oldest first.
func (st *State) Turns() []Turn {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.turns.Items()
}

// Facts returns a snapshot of the fact log, oldest first.
func (st *State) Facts() []Fact {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]Fact(nil), st.facts...)
}

// LastAccess returns when the state was last created or written.
func (st *State) LastAccess() time.Time {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.lastAccess
}

// Options configures a Store.
type Options struct {
	Capacity      int
	TruncateRunes int
	Now           func() time.Time
}

// Store owns the memory of every user. It is safe for concurrent use: writes
// for one user are serialised, different users proceed in parallel.
type Store struct {
	extractor extract.Extractor
	log       *slog.Logger
	capacity  int
	truncate  int
	now       func() time.Time

	mu     sync.Mutex
	states map[int64]*State
}

// NewStore creates an empty Store that extracts facts with ext.
func NewStore(ext extract.Extractor, opts Options, log *slog.Logger) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TruncateRunes <= 0 {
		opts.TruncateRunes = DefaultTruncateRunes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		extractor: ext,
		log:       log.With("component", "memory"),
		capacity:  opts.Capacity,
		truncate:  opts.TruncateRunes,
		now:       opts.Now,
		states:    make(map[int64]*State),
	}
}

// Get returns the state for userID, creating an empty one on first use.
func (s *Store) Get(userID int64) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		st = &State{turns: NewRing[Turn](s.capacity), lastAccess: s.now()}
		s.states[userID] = st
		s.log.Debug("Created memory state", "user_id", userID)
	}
	return st
}

func (s *Store) lookup(userID int64) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	return st, ok
}

// Record appends the user and assistant turns with one timestamp and, when
// extraction finds anything, a Fact.
func (s *Store) Record(ctx context.Context, userID int64, userMessage, assistantReply string) {
	st := s.lockWriter(userID)
	defer st.writeMu.Unlock()

	facts := s.extractor.Extract(ctx, userMessage, assistantReply)
	now := s.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.turns.Push(Turn{Role: RoleUser, Content: userMessage, Timestamp: now})
	st.turns.Push(Turn{Role: RoleAssistant, Content: assistantReply, Timestamp: now})
	if !facts.Empty() {
		st.facts = append(st.facts, Fact{Info: facts, Timestamp: now})
	}
	st.lastAccess = now
}

// lockWriter returns the live state for userID with its writeMu held.
// A state pruned between Get and Lock is discarded and fetched again.
func (s *Store) lockWriter(userID int64) *State {
	for {
		st := s.Get(userID)
		st.writeMu.Lock()
		if current, ok := s.lookup(userID); ok && current == st {
			return st
		}
		st.writeMu.Unlock()
	}
}

// Digest renders the newest shortWindow turns and the newest factWindow facts.
// It never creates state: an unknown user yields "".
func (s *Store) Digest(userID int64, shortWindow, factWindow int) string {
	st, ok := s.lookup(userID)
	if !ok {
		return ""
	}

	st.mu.RLock()
	turns := st.turns.Last(shortWindow)
	var facts []Fact
	if factWindow > 0 {
		from := max(len(st.facts)-factWindow, 0)
		facts = append(facts, st.facts[from:]...)
	}
	st.mu.RUnlock()

	var b strings.Builder
	for _, t := range turns {
		b.WriteString(roleLabel(t.Role))
		b.WriteString(": ")
		b.WriteString(truncate(t.Content, s.truncate))
		b.WriteByte('\n')
	}

	var factLines []string
	for _, f := range facts {
		factLines = append(factLines, f.Info.Lines()...)
	}
	if len(factLines) > 0 {
		b.WriteString("Facts:\n")
		for _, line := range factLines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Forget drops all memory of userID. It reports whether any existed.
func (s *Store) Forget(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.states[userID]
	delete(s.states, userID)
	return ok
}

// Reset drops the memory of every user and returns how many were removed.
func (s *Store) Reset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.states)
	s.states = make(map[int64]*State)
	return n
}

// PruneIdle removes users not written since now-idle. States with a Record in
// progress are kept. It returns the number removed; idle <= 0 removes nothing.
func (s *Store) PruneIdle(now time.Time, idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := now.Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, st := range s.states {
		if !st.writeMu.TryLock() {
			continue
		}
		if st.LastAccess().Before(cutoff) {
			delete(s.states, userID)
			removed++
		}
		st.writeMu.Unlock()
	}
	return removed
}

// Len returns the number of users with memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func roleLabel(r Role) string {
	if r == RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func truncate(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}

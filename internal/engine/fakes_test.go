package engine_test

import (
	"context"
	"errors"
	"sync"

	"github.com/edgard/edubot/internal/engine"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	panics  bool
	prompts []engine.PromptContext
}

func (g *fakeGenerator) Generate(ctx context.Context, pc engine.PromptContext) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, pc)
	reply, err, block, panics := g.reply, g.err, g.block, g.panics
	g.mu.Unlock()

	if panics {
		panic("generator panic")
	}
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, err
}

func (g *fakeGenerator) calls() []engine.PromptContext {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]engine.PromptContext(nil), g.prompts...)
}

type recordCall struct {
	UserID int64
	User   string
	Reply  string
}

type fakeMemory struct {
	mu      sync.Mutex
	digest  string
	records []recordCall
}

func (m *fakeMemory) Digest(int64, int, int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.digest
}

func (m *fakeMemory) Record(_ context.Context, userID int64, userMessage, assistantReply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recordCall{UserID: userID, User: userMessage, Reply: assistantReply})
}

func (m *fakeMemory) recorded() []recordCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordCall(nil), m.records...)
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[int64]engine.UserProfile
	setErr   error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: make(map[int64]engine.UserProfile)}
}

func (p *fakeProfiles) GetProfile(_ context.Context, userID int64) (*engine.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof, ok := p.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &prof, nil
}

func (p *fakeProfiles) SetProfile(_ context.Context, userID int64, patch engine.ProfilePatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.profiles[userID] = patch.Apply(p.profiles[userID])
	return nil
}

var errUpstream = errors.New("upstream unavailable")

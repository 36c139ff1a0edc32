package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/database"
	"github.com/edgard/edubot/internal/engine"
)

const (
	sendMessageTimeout = 10 * time.Second
	historyRetryDelay  = 500 * time.Millisecond
	defaultGreetName   = "دوست عزیز"
)

// Outgoing is one message the bot sends back to the user.
type Outgoing struct {
	Text     string
	Keyboard Keyboard
	Markdown bool
}

// Conversation turns commands and free text into engine requests and decides
// what to send back. It has no dependency on the Telegram client.
type Conversation struct {
	log        *slog.Logger
	cfg        *config.Config
	store      database.Store
	engine     Processor
	memory     MemoryResetter
	sessions   *Sessions
	gate       engine.Gate
	newID      func() string
	retryDelay time.Duration
}

// NewConversation creates a Conversation from the handler dependencies.
func NewConversation(deps HandlerDeps) *Conversation {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewSessions()
	}
	return &Conversation{
		log:        log.With("component", "conversation"),
		cfg:        deps.Config,
		store:      deps.Store,
		engine:     deps.Engine,
		memory:     deps.Memory,
		sessions:   sessions,
		gate:       engine.NewGate(deps.Config.Messages.ProfileMissing, deps.Config.Messages.ProfileIncomplete),
		newID:      uuid.NewString,
		retryDelay: historyRetryDelay,
	}
}

func (c *Conversation) messages() config.MessagesConfig {
	return c.cfg.Messages
}

// Start greets the user and points new users at the profile flow.
func (c *Conversation) Start(ctx context.Context, userID int64, firstName string) []Outgoing {
	profile, err := c.loadProfile(ctx, userID)
	if err != nil {
		return c.apology(KeyboardProfile)
	}
	if !c.gate.Check(profile).Proceed {
		return []Outgoing{{Text: c.messages().WelcomeNewUser, Keyboard: KeyboardProfile}}
	}

	name := strings.TrimSpace(firstName)
	if name == "" {
		name = strings.TrimSpace(profile.Name)
	}
	if name == "" {
		name = defaultGreetName
	}
	return []Outgoing{{Text: fmt.Sprintf(c.messages().Welcome, name), Keyboard: KeyboardMain}}
}

func (c *Conversation) Help() []Outgoing {
	return []Outgoing{{Text: c.messages().Help, Keyboard: KeyboardMain}}
}

// Profile enters the profile-collection step, seeded with the stored profile.
func (c *Conversation) Profile(ctx context.Context, userID int64) []Outgoing {
	profile, err := c.loadProfile(ctx, userID)
	if err != nil {
		return c.apology(KeyboardProfile)
	}
	c.sessions.Set(userID, Session{Step: StepProfile, Partial: profile})
	return []Outgoing{{Text: c.messages().ProfileStart, Keyboard: KeyboardCancel}}
}

// Plan asks for the study-plan request once the profile gate passes.
func (c *Conversation) Plan(ctx context.Context, userID int64) []Outgoing {
	return c.enterGated(ctx, userID, StepPlan, c.messages().PlanPrompt)
}

// Analysis asks for exam results once the profile gate passes.
func (c *Conversation) Analysis(ctx context.Context, userID int64) []Outgoing {
	return c.enterGated(ctx, userID, StepAnalysis, c.messages().AnalysisPrompt)
}

func (c *Conversation) enterGated(ctx context.Context, userID int64, step Step, prompt string) []Outgoing {
	profile, err := c.loadProfile(ctx, userID)
	if err != nil {
		return c.apology(KeyboardProfile)
	}
	if res := c.gate.Check(profile); !res.Proceed {
		return []Outgoing{{Text: res.Message, Keyboard: KeyboardProfile}}
	}
	c.sessions.Set(userID, Session{Step: step})
	return []Outgoing{{Text: prompt, Keyboard: KeyboardCancel}}
}

// Cancel leaves whatever step the user is in.
func (c *Conversation) Cancel(ctx context.Context, userID int64) []Outgoing {
	prev := c.sessions.Clear(userID)
	text := c.messages().Cancelled
	if prev == StepProfile {
		text = c.messages().ProfileCancelled
	}
	profile, _ := c.loadProfile(ctx, userID)
	return []Outgoing{{Text: text, Keyboard: c.keyboardFor(profile)}}
}

// Reset wipes stored chat history and in-process memory.
func (c *Conversation) Reset(ctx context.Context) []Outgoing {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.Database.OpTimeout)
	defer cancel()
	if err := c.store.DeleteAllChatHistory(opCtx); err != nil {
		c.log.ErrorContext(ctx, "Failed to delete chat history", "error", err)
		return []Outgoing{{Text: c.messages().ResetError}}
	}
	if c.memory != nil {
		users := c.memory.Reset()
		c.log.InfoContext(ctx, "Conversation memory reset", "users", users)
	}
	return []Outgoing{{Text: c.messages().ResetConfirm}}
}

// Text handles a free-text message: keyboard buttons first, then the
// user's current step.
func (c *Conversation) Text(ctx context.Context, userID int64, text string) []Outgoing {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	switch text {
	case ButtonPlan:
		return c.Plan(ctx, userID)
	case ButtonAnalysis:
		return c.Analysis(ctx, userID)
	case ButtonProfile:
		return c.Profile(ctx, userID)
	case ButtonHelp:
		return c.Help()
	case ButtonCancel:
		return c.Cancel(ctx, userID)
	}

	sess := c.sessions.Get(userID)
	c.log.DebugContext(ctx, "Dispatching text", "user_id", userID, "step", sess.Step.String())

	switch sess.Step {
	case StepProfile:
		return c.collectProfile(ctx, userID, text, sess)
	case StepPlan:
		return c.answer(ctx, userID, text, engine.IntentStudyPlan, nil)
	case StepAnalysis:
		return c.analyse(ctx, userID, text)
	default:
		return c.answer(ctx, userID, text, engine.IntentGeneralChat, nil)
	}
}

func (c *Conversation) collectProfile(ctx context.Context, userID int64, text string, sess Session) []Outgoing {
	reply := c.engine.Process(ctx, engine.Request{
		ID:      c.newID(),
		Intent:  engine.IntentProfileCollection,
		UserID:  userID,
		Message: text,
		Profile: sess.Partial,
	})

	if reply.Kind != engine.ReplyProfile || reply.Profile == nil {
		return []Outgoing{{Text: c.replyText(reply), Keyboard: KeyboardCancel}}
	}

	update := reply.Profile
	if update.ProfileComplete {
		c.sessions.Clear(userID)
		c.log.InfoContext(ctx, "Profile collection finished", "user_id", userID)
		return []Outgoing{{Text: c.messages().ProfileSaved, Keyboard: KeyboardMain}}
	}

	partial := update.Profile
	sess.Partial = &partial
	c.sessions.Set(userID, sess)

	question := strings.TrimSpace(update.NextQuestion)
	if question == "" {
		question = c.messages().ProfileRetry
	}
	return []Outgoing{{Text: question, Keyboard: KeyboardCancel}}
}

func (c *Conversation) analyse(ctx context.Context, userID int64, text string) []Outgoing {
	results := engine.ParseExamResults(text)
	if len(results) == 0 {
		return []Outgoing{{Text: c.messages().AnalysisEmpty, Keyboard: KeyboardCancel}}
	}

	var history []engine.ExamRecord
	if limit := c.cfg.Engine.ExamHistoryLimit; limit > 0 {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.Database.OpTimeout)
		records, err := c.store.GetExamHistory(opCtx, userID, limit)
		cancel()
		if err != nil {
			c.log.WarnContext(ctx, "Failed to load exam history", "user_id", userID, "error", err)
		}
		history = records
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.Database.OpTimeout)
	if err := c.store.SaveExamResults(opCtx, userID, results); err != nil {
		c.log.ErrorContext(ctx, "Failed to save exam results", "user_id", userID, "error", err)
	}
	cancel()

	return c.answer(ctx, userID, text, engine.IntentPerformanceAnalysis, func(req *engine.Request) {
		req.ExamResults = results
		req.ExamHistory = history
	})
}

// answer runs a text intent against the stored profile and returns the user
// to the idle step.
func (c *Conversation) answer(ctx context.Context, userID int64, text string, intent engine.Intent, with func(*engine.Request)) []Outgoing {
	profile, err := c.loadProfile(ctx, userID)
	if err != nil {
		return c.apology(KeyboardMain)
	}
	c.sessions.Clear(userID)

	req := engine.Request{
		ID:      c.newID(),
		Intent:  intent,
		UserID:  userID,
		Message: text,
		Profile: profile,
	}
	if with != nil {
		with(&req)
	}

	reply := c.engine.Process(ctx, req)
	out := c.replyText(reply)
	c.saveHistory(ctx, userID, text, out)

	return []Outgoing{{Text: out, Keyboard: c.keyboardFor(profile), Markdown: true}}
}

func (c *Conversation) replyText(reply engine.Reply) string {
	if reply.Kind != engine.ReplyText {
		return c.messages().Apology
	}
	if strings.TrimSpace(reply.Text) == "" {
		return c.messages().EmptyReply
	}
	return reply.Text
}

func (c *Conversation) keyboardFor(profile *engine.UserProfile) Keyboard {
	if c.gate.Check(profile).Proceed {
		return KeyboardMain
	}
	return KeyboardProfile
}

func (c *Conversation) apology(k Keyboard) []Outgoing {
	return []Outgoing{{Text: c.messages().Apology, Keyboard: k}}
}

func (c *Conversation) loadProfile(ctx context.Context, userID int64) (*engine.UserProfile, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.Database.OpTimeout)
	defer cancel()
	profile, err := c.store.GetProfile(opCtx, userID)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to load profile", "user_id", userID, "error", err)
		return nil, err
	}
	return profile, nil
}

func (c *Conversation) saveHistory(ctx context.Context, userID int64, userText, replyText string) {
	c.SaveMessageWithRetry(ctx, userID, database.RoleUser, userText)
	c.SaveMessageWithRetry(ctx, userID, database.RoleAssistant, replyText)
}

// SaveMessageWithRetry appends a chat-history line, retrying with a growing
// delay. Failures are logged and otherwise ignored.
func (c *Conversation) SaveMessageWithRetry(ctx context.Context, userID int64, role, content string) {
	retries := max(c.cfg.Database.HistoryRetries, 1)

	var err error
	for i := range retries {
		if ctx.Err() != nil {
			c.log.WarnContext(ctx, "Context cancelled, aborting history save", "role", role, "user_id", userID, "attempt", i+1, "error", ctx.Err())
			return
		}

		dbCtx, cancel := context.WithTimeout(ctx, c.cfg.Database.OpTimeout)
		err = c.store.AppendChatMessage(dbCtx, userID, role, content)
		cancel()
		if err == nil {
			c.log.DebugContext(ctx, "Chat message saved", "role", role, "user_id", userID)
			return
		}

		c.log.ErrorContext(ctx, "Failed to save chat message, retrying", "role", role, "user_id", userID, "attempt", i+1, "error", err)
		if i < retries-1 {
			select {
			case <-ctx.Done():
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}

	c.log.ErrorContext(ctx, "Failed to save chat message after retries", "role", role, "user_id", userID, "retries", retries, "error", err)
}

// Package engine implements the study-advisor conversation pipeline: the
// profile gate, the intent router, the four intent handlers and the
// orchestrator that ties them to memory and profile storage.
//
// The package depends only on the interfaces declared here. The chat
// transport, the database and the text-generation SDK live elsewhere.
package engine

import (
	"context"
)

// Intent is the declared category of a request. Its string value is the wire value.
type Intent string

const (
	IntentProfileCollection   Intent = "profile_collection"
	IntentStudyPlan           Intent = "study_plan"
	IntentPerformanceAnalysis Intent = "performance_analysis"
	IntentGeneralChat         Intent = "general_chat"
)

// ParseIntent maps a wire value to an Intent. Unknown values become IntentGeneralChat.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentProfileCollection, IntentStudyPlan, IntentPerformanceAnalysis, IntentGeneralChat:
		return Intent(s)
	default:
		return IntentGeneralChat
	}
}

func (i Intent) String() string { return string(i) }

// Request is one incoming message with everything the pipeline needs to
// answer it. It is passed by value and never modified by the engine.
type Request struct {
	ID          string
	Intent      Intent
	UserID      int64
	Message     string
	Profile     *UserProfile
	ExamResults ExamResults
	ExamHistory []ExamRecord
}

// ReplyKind discriminates the Reply union.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyProfile
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyText:
		return "text"
	case ReplyProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Reply is the single outcome of a pipeline pass. Consumers switch on Kind:
// Text is set for ReplyText, Profile for ReplyProfile.
type Reply struct {
	Kind    ReplyKind
	Text    string
	Profile *ProfileUpdate
}

// ProfileUpdate is the structured result of one profile-collection turn.
// Profile holds the partial profile merged with ExtractedInfo.
type ProfileUpdate struct {
	ExtractedInfo   map[string]any
	ProfileComplete bool
	NextQuestion    string
	Profile         UserProfile
}

// TextReply builds a terminal text reply.
func TextReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// ProfileReply builds a profile-collection reply.
func ProfileReply(update ProfileUpdate) Reply {
	return Reply{Kind: ReplyProfile, Profile: &update}
}

// ResponseFormat tells the generator what shape of output the caller parses.
type ResponseFormat int

const (
	FormatText ResponseFormat = iota
	FormatProfileJSON
	FormatFactsJSON
)

// PromptContext is everything a generator needs for one call.
type PromptContext struct {
	Intent Intent
	System string
	Prompt string
	Format ResponseFormat
}

// Generator produces text for a prompt. Implementations must honour ctx.
type Generator interface {
	Generate(ctx context.Context, pc PromptContext) (string, error)
}

// ProfileStore reads and upserts user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*UserProfile, error)
	SetProfile(ctx context.Context, userID int64, patch ProfilePatch) error
}

// Memory is the per-user conversation memory the orchestrator reads and updates.
type Memory interface {
	Digest(userID int64, shortWindow, factWindow int) string
	Record(ctx context.Context, userID int64, userMessage, assistantReply string)
}

// Stage is a step of the orchestration pipeline.
type Stage string

const (
	StageGating   Stage = "gating"
	StageRouting  Stage = "routing"
	StageHandling Stage = "handling"
	StageUpdating Stage = "updating"
	StageDone     Stage = "done"
)

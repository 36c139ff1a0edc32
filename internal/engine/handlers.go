package engine

import (
	"context"
	"fmt"
	"strings"
)

// Handler builds the prompt for one intent and turns the generator output into a Reply.
// Handlers never touch memory or profile storage.
type Handler interface {
	Intent() Intent
	Build(req Request, digest string) PromptContext
	Handle(ctx context.Context, gen Generator, req Request, digest string) (Reply, error)
}

// shortMessageWords is the word count below which general chat asks for a short answer.
const shortMessageWords = 10

// StudyPlanHandler answers study-plan requests from the full profile.
// It does not use the memory digest.
type StudyPlanHandler struct{}

func (StudyPlanHandler) Intent() Intent { return IntentStudyPlan }

func (StudyPlanHandler) Build(req Request, _ string) PromptContext {
	return PromptContext{
		Intent: IntentStudyPlan,
		System: advisorSystemPrompt,
		Prompt: fmt.Sprintf(studyPlanPrompt, profileBlock(req.Profile), req.Message),
		Format: FormatText,
	}
}

func (h StudyPlanHandler) Handle(ctx context.Context, gen Generator, req Request, digest string) (Reply, error) {
	return generateText(ctx, gen, h.Build(req, digest))
}

// PerformanceAnalysisHandler analyses exam results against the full profile.
type PerformanceAnalysisHandler struct{}

func (PerformanceAnalysisHandler) Intent() Intent { return IntentPerformanceAnalysis }

func (PerformanceAnalysisHandler) Build(req Request, _ string) PromptContext {
	results := req.ExamResults.Lines()
	if results == "" {
		results = unknownValue
	}

	var history string
	if len(req.ExamHistory) > 0 {
		var b strings.Builder
		b.WriteString(examHistoryHeader)
		for _, rec := range req.ExamHistory {
			fmt.Fprintf(&b, "- %s: %s", rec.Subject, rec.Score)
			if !rec.RecordedAt.IsZero() {
				fmt.Fprintf(&b, " (%s)", rec.RecordedAt.Format("2006-01-02"))
			}
			b.WriteByte('\n')
		}
		history = b.String()
	}

	return PromptContext{
		Intent: IntentPerformanceAnalysis,
		System: advisorSystemPrompt,
		Prompt: fmt.Sprintf(performancePrompt, profileBlock(req.Profile), results, history),
		Format: FormatText,
	}
}

func (h PerformanceAnalysisHandler) Handle(ctx context.Context, gen Generator, req Request, digest string) (Reply, error) {
	return generateText(ctx, gen, h.Build(req, digest))
}

// GeneralChatHandler answers free text with the profile fields the message
// touches on and the user's memory digest.
type GeneralChatHandler struct{}

func (GeneralChatHandler) Intent() Intent { return IntentGeneralChat }

func (GeneralChatHandler) Build(req Request, digest string) PromptContext {
	var history string
	if strings.TrimSpace(digest) != "" {
		history = chatHistoryHeader + digest + "\n"
	}

	var brevity string
	if len(strings.Fields(req.Message)) < shortMessageWords {
		brevity = brevityInstruction
	}

	return PromptContext{
		Intent: IntentGeneralChat,
		System: advisorSystemPrompt,
		Prompt: fmt.Sprintf(generalChatPrompt, relevantProfileBlock(req.Profile, req.Message), history, req.Message, brevity),
		Format: FormatText,
	}
}

func (h GeneralChatHandler) Handle(ctx context.Context, gen Generator, req Request, digest string) (Reply, error) {
	return generateText(ctx, gen, h.Build(req, digest))
}

// RelevantFields returns the profile fields a message refers to, name first.
func RelevantFields(message string) []string {
	lower := strings.ToLower(message)
	fields := []string{FieldName}
	for _, field := range ProfileFields[1:] {
		for _, kw := range relevanceKeywords[field] {
			if strings.Contains(lower, kw) {
				fields = append(fields, field)
				break
			}
		}
	}
	return fields
}

func generateText(ctx context.Context, gen Generator, pc PromptContext) (Reply, error) {
	out, err := gen.Generate(ctx, pc)
	if err != nil {
		return Reply{}, fmt.Errorf("%s generation failed: %w", pc.Intent, err)
	}
	return TextReply(out), nil
}

func profileBlock(p *UserProfile) string {
	return renderFields(p, ProfileFields)
}

func relevantProfileBlock(p *UserProfile, message string) string {
	return renderFields(p, RelevantFields(message))
}

func renderFields(p *UserProfile, fields []string) string {
	var prof UserProfile
	if p != nil {
		prof = *p
	}

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("- %s: %s", fieldLabels[field], fieldValue(prof, field)))
	}
	return strings.Join(lines, "\n")
}

func fieldValue(p UserProfile, field string) string {
	var v string
	switch field {
	case FieldName:
		if v = strings.TrimSpace(p.Name); v == "" {
			return defaultStudentName
		}
		return v
	case FieldGrade:
		v = p.Grade
	case FieldExamDate:
		v = p.ExamDate
	case FieldFavoriteSubjects:
		v = strings.Join(p.FavoriteSubjects, ", ")
	case FieldDislikedSubjects:
		v = strings.Join(p.DislikedSubjects, ", ")
	case FieldDesiredMajor:
		v = p.DesiredMajor
	}
	if strings.TrimSpace(v) == "" {
		return unknownValue
	}
	return v
}

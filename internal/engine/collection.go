package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgard/edubot/internal/llmjson"
)

// DefaultFallbackQuestion is asked again when a collection reply cannot be understood.
const DefaultFallbackQuestion = "متوجه نشدم. لطفاً اطلاعات بیشتری در مورد خود بدهید (نام، پایه تحصیلی، تاریخ کنکور و...)."

// CollectionSchema is the JSON Schema of a profile-collection reply.
const CollectionSchema = `{
	"type": "object",
	"required": ["extracted_info", "profile_complete"],
	"properties": {
		"extracted_info": {"type": "object"},
		"profile_complete": {"type": "boolean"},
		"next_question": {"type": "string"}
	}
}`

var collectionSchema = llmjson.MustCompile("profile_collection", CollectionSchema)

// ProfileCollectionHandler runs one turn of the conversational profile
// collection loop.
type ProfileCollectionHandler struct {
	FallbackQuestion string
}

func (ProfileCollectionHandler) Intent() Intent { return IntentProfileCollection }

func (ProfileCollectionHandler) Build(req Request, _ string) PromptContext {
	return PromptContext{
		Intent: IntentProfileCollection,
		System: collectorSystemPrompt,
		Prompt: fmt.Sprintf(profileCollectionPrompt, currentProfileLines(req.Profile), req.Message),
		Format: FormatProfileJSON,
	}
}

// Handle returns a ReplyProfile. A reply of the wrong shape yields the
// fallback update rather than an error; only generator failures are errors.
func (h ProfileCollectionHandler) Handle(ctx context.Context, gen Generator, req Request, digest string) (Reply, error) {
	out, err := gen.Generate(ctx, h.Build(req, digest))
	if err != nil {
		return Reply{}, fmt.Errorf("%s generation failed: %w", IntentProfileCollection, err)
	}

	update := ParseCollectionReply(out, h.fallback())
	update.Profile = baseProfile(req).Merge(update.ExtractedInfo)
	return ProfileReply(update), nil
}

func (h ProfileCollectionHandler) fallback() string {
	if h.FallbackQuestion == "" {
		return DefaultFallbackQuestion
	}
	return h.FallbackQuestion
}

// ParseCollectionReply extracts {extracted_info, profile_complete, next_question}
// from raw generator output. Any shape error yields an empty, incomplete
// update asking fallbackQuestion.
func ParseCollectionReply(raw, fallbackQuestion string) ProfileUpdate {
	fallback := ProfileUpdate{
		ExtractedInfo: map[string]any{},
		NextQuestion:  fallbackQuestion,
	}

	obj, err := llmjson.DecodeValid(collectionSchema, raw)
	if err != nil {
		return fallback
	}

	info, _ := obj["extracted_info"].(map[string]any)
	complete, _ := obj["profile_complete"].(bool)
	question, _ := obj["next_question"].(string)

	if info == nil {
		info = map[string]any{}
	}
	question = strings.TrimSpace(question)
	if !complete && question == "" {
		question = fallbackQuestion
	}

	return ProfileUpdate{
		ExtractedInfo:   info,
		ProfileComplete: complete,
		NextQuestion:    question,
	}
}

// MissingFieldsQuestion asks for the given fields by their Persian labels.
func MissingFieldsQuestion(fields []string) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, fieldLabels[f])
	}
	return fmt.Sprintf(missingFieldsQuestion, strings.Join(labels, "، "))
}

func baseProfile(req Request) UserProfile {
	if req.Profile != nil {
		return *req.Profile
	}
	return UserProfile{UserID: req.UserID}
}

func currentProfileLines(p *UserProfile) string {
	if p == nil {
		return emptyProfileText
	}

	var lines []string
	for _, field := range ProfileFields {
		var v string
		switch field {
		case FieldName:
			v = p.Name
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
		if strings.TrimSpace(v) != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", field, v))
		}
	}
	if len(lines) == 0 {
		return emptyProfileText
	}
	return strings.Join(lines, "\n")
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/edgard/edubot/internal/engine"
	"github.com/edgard/edubot/internal/llmjson"
)

const delegatedPrompt = `You are a fact extraction engine for a student study advisor.
Extract facts the student states explicitly in their message. Do not guess.

Categories:
1. subjects: school subjects mentioned
2. scores: exam scores; "composite" for 4-5 digit overall scores, "subject" for per-subject scores
3. study_times: hours of study ("hours") and time ranges like "08:00-10:00" ("ranges")
4. goals: whether the student states a goal, and the word that shows it
5. interests: topics the student enjoys
6. challenges: difficulties the student mentions

Omit any category with nothing to report.
Return strict JSON object:
{"subjects":["..."],"scores":{"composite":["..."],"subject":["..."]},"study_times":{"hours":["..."],"ranges":["..."]},"goals":{"has_goal":true,"keyword":"..."},"interests":["..."],"challenges":["..."]}

Assistant's previous reply (context only):
%s

Student message:
%s`

const scalarList = `{"type": "array", "items": {"type": ["string", "number"]}}`

var categorySchemas = map[string]*jsonschema.Schema{
	CategorySubjects: llmjson.MustCompile("subjects", `{"type": "array", "items": {"type": "string"}}`),
	CategoryScores: llmjson.MustCompile("scores", `{
		"type": "object",
		"properties": {"composite": `+scalarList+`, "subject": `+scalarList+`},
		"additionalProperties": false
	}`),
	CategoryStudyTimes: llmjson.MustCompile("study_times", `{
		"type": "object",
		"properties": {"hours": `+scalarList+`, "ranges": {"type": "array", "items": {"type": "string"}}},
		"additionalProperties": false
	}`),
	CategoryGoals: llmjson.MustCompile("goals", `{
		"type": "object",
		"required": ["has_goal"],
		"properties": {"has_goal": {"type": "boolean"}, "keyword": {"type": "string"}},
		"additionalProperties": false
	}`),
}

// Delegated asks the text-generation service to extract facts and keeps
// only the categories that pass schema validation.
type Delegated struct {
	gen     engine.Generator
	timeout time.Duration
	log     *slog.Logger
}

// NewDelegated creates a Delegated extractor. A zero timeout means 20 seconds.
func NewDelegated(gen engine.Generator, timeout time.Duration, log *slog.Logger) *Delegated {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Delegated{gen: gen, timeout: timeout, log: log.With("component", "delegated_extractor")}
}

// Extract implements Extractor. Every failure yields empty Facts.
func (d *Delegated) Extract(ctx context.Context, text, priorReply string) Facts {
	if strings.TrimSpace(text) == "" {
		return Facts{}
	}

	extractCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	raw, err := d.gen.Generate(extractCtx, engine.PromptContext{
		Intent: engine.IntentGeneralChat,
		Prompt: fmt.Sprintf(delegatedPrompt, priorReply, text),
		Format: engine.FormatFactsJSON,
	})
	if err != nil {
		d.log.WarnContext(ctx, "Fact extraction call failed", "error", err)
		return Facts{}
	}

	facts, dropped := ParseDelegated(raw)
	if len(dropped) > 0 {
		d.log.DebugContext(ctx, "Dropped fact categories", "categories", dropped)
	}
	return facts
}

// ParseDelegated turns a delegated reply into Facts. It returns the keys that
// were discarded because they are unknown or failed validation.
func ParseDelegated(raw string) (Facts, []string) {
	obj, err := llmjson.Decode(raw)
	if err != nil {
		return Facts{}, nil
	}

	var facts Facts
	var dropped []string
	for key, value := range obj {
		schema, known := categorySchemas[key]
		if !known || llmjson.Validate(schema, value) != nil {
			dropped = append(dropped, key)
			continue
		}

		switch key {
		case CategorySubjects:
			facts.Subjects = dedupe(stringList(value))
		case CategoryScores:
			m := value.(map[string]any)
			facts.Scores = normalizeScores(&Scores{
				Composite: stringList(m["composite"]),
				Subject:   stringList(m["subject"]),
			})
		case CategoryStudyTimes:
			m := value.(map[string]any)
			facts.StudyTimes = normalizeStudyTimes(&StudyTimes{
				Hours:  stringList(m["hours"]),
				Ranges: stringList(m["ranges"]),
			})
		case CategoryGoals:
			m := value.(map[string]any)
			hasGoal, _ := m["has_goal"].(bool)
			keyword, _ := m["keyword"].(string)
			if hasGoal {
				facts.Goal = &Goal{HasGoal: true, Keyword: strings.TrimSpace(keyword)}
			}
		}
	}
	if len(facts.Subjects) == 0 {
		facts.Subjects = nil
	}
	return facts, dropped
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch x := item.(type) {
		case string:
			s = x
		case json.Number:
			s = x.String()
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Package gemini implements engine.Generator on top of Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/engine"
)

// contentGenerator is the part of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates replies with a Gemini model.
type Client struct {
	models            contentGenerator
	log               *slog.Logger
	modelName         string
	temperature       float32
	systemInstruction string
	maxRetries        int
	retryDelay        time.Duration
}

var _ engine.Generator = (*Client)(nil)

// NewClient creates a Client for the Gemini API backend.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := newClient(gi.Models, cfg, log)
	c.log.Info("Gemini client initialized", "model", cfg.ModelName)
	return c, nil
}

func newClient(models contentGenerator, cfg config.GeminiConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		models:            models,
		log:               log.With("component", "gemini_client"),
		modelName:         cfg.ModelName,
		temperature:       cfg.Temperature,
		systemInstruction: cfg.SystemInstruction,
		maxRetries:        cfg.MaxRetries,
		retryDelay:        time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
}

// Generate implements engine.Generator. Structured formats switch the model
// into JSON mode with a response schema.
func (c *Client) Generate(ctx context.Context, pc engine.PromptContext) (string, error) {
	c.log.DebugContext(ctx, "Generating content", "intent", pc.Intent, "format", pc.Format, "prompt_len", len(pc.Prompt))

	contents := []*genai.Content{genai.NewContentFromText(pc.Prompt, genai.RoleUser)}
	resp, err := c.generateContentWithRetries(ctx, contents, c.contentConfig(pc))
	if err != nil {
		return "", err
	}
	return c.extractTextFromResponse(ctx, resp)
}

func (c *Client) contentConfig(pc engine.PromptContext) *genai.GenerateContentConfig {
	temperature := c.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}

	var system []string
	if c.systemInstruction != "" {
		system = append(system, c.systemInstruction)
	}
	if pc.System != "" {
		system = append(system, pc.System)
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}
	}

	switch pc.Format {
	case engine.FormatProfileJSON:
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = profileCollectionSchema
	case engine.FormatFactsJSON:
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = factsSchema
	}
	return cfg
}

func (c *Client) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var resp *genai.GenerateContentResponse
		resp, err = c.models.GenerateContent(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("gemini API call aborted: %w", ctx.Err())
		}

		code, ok := apiErrorCode(err)
		if !ok || !retriable(code) {
			c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}

		if attempt == c.maxRetries {
			c.log.ErrorContext(ctx, "Gemini API call failed after max retries", "error", err, "code", code)
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, code, err)
		}

		c.log.WarnContext(ctx, "Retrying Gemini API call", "attempt", attempt+1, "max_retries", c.maxRetries, "delay", c.retryDelay, "code", code)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gemini API call aborted: %w", ctx.Err())
		case <-time.After(c.retryDelay):
		}
	}
	return nil, err
}

// apiErrorCode reports the HTTP status of a genai API error. The SDK returns
// APIError by value; pointers are accepted too.
func apiErrorCode(err error) (int, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue.Code, true
	}
	var byPointer *genai.APIError
	if errors.As(err, &byPointer) && byPointer != nil {
		return byPointer.Code, true
	}
	return 0, false
}

func retriable(code int) bool {
	return code == 500 || code == 503
}

func (c *Client) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini returned a nil response")
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reason = fb.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("gemini request blocked by safety filter: %s", reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			finishReason = string(resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

var stringArray = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

var profileCollectionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"extracted_info": {
			Type:        genai.TypeObject,
			Description: "Profile fields stated in the latest user message. Omit unknown fields.",
			Properties: map[string]*genai.Schema{
				engine.FieldName:             {Type: genai.TypeString},
				engine.FieldGrade:            {Type: genai.TypeString},
				engine.FieldExamDate:         {Type: genai.TypeString},
				engine.FieldFavoriteSubjects: stringArray,
				engine.FieldDislikedSubjects: stringArray,
				engine.FieldDesiredMajor:     {Type: genai.TypeString},
			},
		},
		"profile_complete": {Type: genai.TypeBoolean, Description: "True when all six profile fields are known."},
		"next_question":    {Type: genai.TypeString, Description: "The next question to ask the user, in Persian."},
	},
	Required: []string{"extracted_info", "profile_complete"},
}

var factsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"subjects": stringArray,
		"scores": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"composite": stringArray,
				"subject":   stringArray,
			},
		},
		"study_times": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"hours":  stringArray,
				"ranges": stringArray,
			},
		},
		"goals": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"has_goal": {Type: genai.TypeBoolean},
				"keyword":  {Type: genai.TypeString},
			},
			Required: []string{"has_goal"},
		},
		"interests":  stringArray,
		"challenges": stringArray,
	},
}

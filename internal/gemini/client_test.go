package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/engine"
)

type fakeModels struct {
	mu      sync.Mutex
	calls   int
	configs []*genai.GenerateContentConfig
	results []fakeResult
}

type fakeResult struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	r := f.results[min(f.calls, len(f.results)-1)]
	f.calls++
	return r.resp, r.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testClient(models *fakeModels, retries int) *Client {
	return newClient(models, config.GeminiConfig{
		ModelName:         "test-model",
		Temperature:       0.5,
		SystemInstruction: "base instruction",
		MaxRetries:        retries,
	}, nil)
}

func TestGenerate_Text(t *testing.T) {
	t.Parallel()
	models := &fakeModels{results: []fakeResult{{resp: textResponse("  سلام  ")}}}
	c := testClient(models, 0)

	out, err := c.Generate(context.Background(), engine.PromptContext{System: "advisor", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "سلام", out)

	require.Len(t, models.configs, 1)
	cfg := models.configs[0]
	assert.Empty(t, cfg.ResponseMIMEType)
	assert.Nil(t, cfg.ResponseSchema)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "base instruction\n\nadvisor", cfg.SystemInstruction.Parts[0].Text)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
}

func TestGenerate_StructuredFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format engine.ResponseFormat
		schema *genai.Schema
	}{
		{format: engine.FormatProfileJSON, schema: profileCollectionSchema},
		{format: engine.FormatFactsJSON, schema: factsSchema},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.format), func(t *testing.T) {
			t.Parallel()
			models := &fakeModels{results: []fakeResult{{resp: textResponse(`{}`)}}}
			c := testClient(models, 0)

			_, err := c.Generate(context.Background(), engine.PromptContext{Prompt: "x", Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, "application/json", models.configs[0].ResponseMIMEType)
			assert.Same(t, tt.schema, models.configs[0].ResponseSchema)
		})
	}
}

func TestGenerate_RetriesOnServerErrors(t *testing.T) {
	t.Parallel()
	models := &fakeModels{results: []fakeResult{
		{err: &genai.APIError{Code: 503, Message: "unavailable"}},
		{err: &genai.APIError{Code: 500, Message: "internal"}},
		{resp: textResponse("ok")},
	}}
	c := testClient(models, 2)

	out, err := c.Generate(context.Background(), engine.PromptContext{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, models.calls)
}

func TestGenerate_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()
	models := &fakeModels{results: []fakeResult{{err: &genai.APIError{Code: 503}}}}
	c := testClient(models, 1)

	_, err := c.Generate(context.Background(), engine.PromptContext{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 2, models.calls)
}

func TestGenerate_NonRetriableError(t *testing.T) {
	t.Parallel()
	cause := errors.New("bad request")
	models := &fakeModels{results: []fakeResult{{err: cause}}}
	c := testClient(models, 3)

	_, err := c.Generate(context.Background(), engine.PromptContext{Prompt: "x"})
	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1, models.calls)
}

func TestGenerate_CancelledContextStopsRetrying(t *testing.T) {
	t.Parallel()
	models := &fakeModels{results: []fakeResult{{err: &genai.APIError{Code: 503}}}}
	c := testClient(models, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Generate(ctx, engine.PromptContext{Prompt: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, models.calls)
}

func TestExtractTextFromResponse(t *testing.T) {
	t.Parallel()
	c := testClient(&fakeModels{}, 0)

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "text", resp: textResponse("پاسخ"), want: "پاسخ"},
		{name: "nil response", resp: nil, wantErr: true},
		{
			name: "blocked",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			wantErr: true,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: true,
		},
		{
			name: "no parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      &genai.Content{Role: genai.RoleModel},
				FinishReason: genai.FinishReasonMaxTokens,
			}}},
			wantErr: true,
		},
		{name: "blank text", resp: textResponse("   "), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := c.extractTextFromResponse(context.Background(), tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIErrorCode(t *testing.T) {
	t.Parallel()

	code, ok := apiErrorCode(fmt.Errorf("wrapped: %w", &genai.APIError{Code: 500}))
	assert.True(t, ok)
	assert.Equal(t, 500, code)

	_, ok = apiErrorCode(errors.New("plain"))
	assert.False(t, ok)
}

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/edubot/internal/engine"
)

func TestParseCollectionReply(t *testing.T) {
	t.Parallel()

	const fallback = "again please"

	tests := []struct {
		name string
		raw  string
		want engine.ProfileUpdate
	}{
		{
			name: "plain json",
			raw:  `{"extracted_info": {"name": "Sara"}, "profile_complete": false, "next_question": "Which grade?"}`,
			want: engine.ProfileUpdate{
				ExtractedInfo: map[string]any{"name": "Sara"},
				NextQuestion:  "Which grade?",
			},
		},
		{
			name: "fenced with prose",
			raw:  "Sure!\n```json\n{\"extracted_info\": {}, \"profile_complete\": true, \"next_question\": \"\"}\n```",
			want: engine.ProfileUpdate{
				ExtractedInfo:   map[string]any{},
				ProfileComplete: true,
			},
		},
		{
			name: "incomplete without question gets fallback",
			raw:  `{"extracted_info": {}, "profile_complete": false}`,
			want: engine.ProfileUpdate{ExtractedInfo: map[string]any{}, NextQuestion: fallback},
		},
		{
			name: "garble",
			raw:  "لطفاً نام خود را بگویید",
			want: engine.ProfileUpdate{ExtractedInfo: map[string]any{}, NextQuestion: fallback},
		},
		{
			name: "wrong types",
			raw:  `{"extracted_info": "name=Sara", "profile_complete": "yes"}`,
			want: engine.ProfileUpdate{ExtractedInfo: map[string]any{}, NextQuestion: fallback},
		},
		{
			name: "missing required key",
			raw:  `{"next_question": "Name?"}`,
			want: engine.ProfileUpdate{ExtractedInfo: map[string]any{}, NextQuestion: fallback},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, engine.ParseCollectionReply(tc.raw, fallback))
		})
	}
}

func TestProfileCollectionHandle(t *testing.T) {
	t.Parallel()

	partial := engine.UserProfile{UserID: 5, Name: "Reza"}
	gen := &fakeGenerator{reply: `{"extracted_info": {"grade": "دهم", "favorite_subjects": ["زیست"]}, "profile_complete": false, "next_question": "تاریخ کنکور؟"}`}

	reply, err := engine.ProfileCollectionHandler{}.Handle(context.Background(), gen, engine.Request{
		UserID:  5,
		Profile: &partial,
		Message: "کلاس دهمم و زیست دوست دارم",
	}, "")
	require.NoError(t, err)
	require.Equal(t, engine.ReplyProfile, reply.Kind)
	require.NotNil(t, reply.Profile)

	update := reply.Profile
	assert.False(t, update.ProfileComplete)
	assert.Equal(t, "تاریخ کنکور؟", update.NextQuestion)
	assert.Equal(t, "Reza", update.Profile.Name)
	assert.Equal(t, "دهم", update.Profile.Grade)
	assert.Equal(t, []string{"زیست"}, update.Profile.FavoriteSubjects)
	assert.Empty(t, partial.Grade)

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, engine.FormatProfileJSON, calls[0].Format)
	assert.Contains(t, calls[0].Prompt, "- name: Reza")
	assert.Contains(t, calls[0].Prompt, "کلاس دهمم و زیست دوست دارم")
}

func TestProfileCollectionGarbleUsesDefaultFallback(t *testing.T) {
	t.Parallel()

	reply, err := engine.ProfileCollectionHandler{}.Handle(context.Background(), &fakeGenerator{reply: "???"}, engine.Request{UserID: 9}, "")
	require.NoError(t, err)
	require.Equal(t, engine.ReplyProfile, reply.Kind)
	assert.False(t, reply.Profile.ProfileComplete)
	assert.Equal(t, engine.DefaultFallbackQuestion, reply.Profile.NextQuestion)
	assert.Equal(t, int64(9), reply.Profile.Profile.UserID)
}

package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/edubot/internal/engine"
)

func TestParseExamResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want engine.ExamResults
	}{
		{
			name: "single persian line",
			text: "ریاضی: 6000",
			want: engine.ExamResults{{Subject: "ریاضی", Score: "6000"}},
		},
		{
			name: "insertion order kept",
			text: "ریاضی: 6000\nفیزیک: 5500\nشیمی: 6200",
			want: engine.ExamResults{
				{Subject: "ریاضی", Score: "6000"},
				{Subject: "فیزیک", Score: "5500"},
				{Subject: "شیمی", Score: "6200"},
			},
		},
		{
			name: "duplicate keeps first position and last value",
			text: "Math: 6000\nPhysics: 5500\nMath: 6100",
			want: engine.ExamResults{
				{Subject: "Math", Score: "6100"},
				{Subject: "Physics", Score: "5500"},
			},
		},
		{
			name: "non numeric preserved verbatim",
			text: "ادبیات: خوب بود",
			want: engine.ExamResults{{Subject: "ادبیات", Score: "خوب بود"}},
		},
		{
			name: "only first separator splits",
			text: "زیست: 12:30",
			want: engine.ExamResults{{Subject: "زیست", Score: "12:30"}},
		},
		{
			name: "fullwidth colon",
			text: "عربی： ۷۰۰۰",
			want: engine.ExamResults{{Subject: "عربی", Score: "۷۰۰۰"}},
		},
		{
			name: "lines without pairs skipped",
			text: "نتایج من:\n\nبدون جداکننده\n: 5000\nریاضی:",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, engine.ParseExamResults(tc.text))
		})
	}
}

func TestExamResultNumeric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  string
		want   float64
		wantOK bool
	}{
		{"6000", 6000, true},
		{"۶۰۰۰", 6000, true},
		{"٥٥٠٠", 5500, true},
		{" 18.5 ", 18.5, true},
		{"۱۸٫۵", 18.5, true},
		{"خوب", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.score, func(t *testing.T) {
			t.Parallel()
			got, ok := engine.ExamResult{Subject: "x", Score: tc.score}.Numeric()
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestExamResultsRoundTrip(t *testing.T) {
	t.Parallel()

	results := engine.ParseExamResults("ریاضی: 6000")
	score, ok := results.Get("ریاضی")
	assert.True(t, ok)
	assert.Equal(t, "6000", score)

	n, ok := results[0].Numeric()
	assert.True(t, ok)
	assert.InDelta(t, 6000.0, n, 1e-9)

	assert.Equal(t, "ریاضی: 6000", results.Lines())
	assert.Equal(t, results, engine.ParseExamResults(results.Lines()))
}

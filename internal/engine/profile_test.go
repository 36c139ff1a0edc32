package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/edubot/internal/engine"
)

func fullProfile() engine.UserProfile {
	return engine.UserProfile{
		UserID:           42,
		Name:             "سارا",
		Grade:            "دوازدهم",
		ExamDate:         "تیر ۱۴۰۴",
		FavoriteSubjects: []string{"ریاضی", "فیزیک"},
		DislikedSubjects: []string{"عربی"},
		DesiredMajor:     "مهندسی کامپیوتر",
		Complete:         true,
	}
}

func TestUserProfileMissing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, fullProfile().Missing())
	assert.Equal(t, engine.ProfileFields, engine.UserProfile{}.Missing())

	p := fullProfile()
	p.Grade = "  "
	p.DislikedSubjects = nil
	assert.Equal(t, []string{engine.FieldGrade, engine.FieldDislikedSubjects}, p.Missing())
}

func TestUserProfileMerge(t *testing.T) {
	t.Parallel()

	base := engine.UserProfile{UserID: 1, Name: "Ali", FavoriteSubjects: []string{"شیمی"}}

	merged := base.Merge(map[string]any{
		"grade":             "یازدهم",
		"exam_date":         json.Number("1404"),
		"favorite_subjects": []any{"ریاضی", " فیزیک "},
		"disliked_subjects": "عربی، دینی, ادبیات",
		"desired_major":     "",
		"hobby":             "football",
	})

	assert.Equal(t, "Ali", merged.Name)
	assert.Equal(t, "یازدهم", merged.Grade)
	assert.Equal(t, "1404", merged.ExamDate)
	assert.Equal(t, []string{"ریاضی", "فیزیک"}, merged.FavoriteSubjects)
	assert.Equal(t, []string{"عربی", "دینی", "ادبیات"}, merged.DislikedSubjects)
	assert.Empty(t, merged.DesiredMajor)

	// The receiver is untouched.
	assert.Equal(t, []string{"شیمی"}, base.FavoriteSubjects)
	assert.Empty(t, base.Grade)
}

func TestProfilePatchApply(t *testing.T) {
	t.Parallel()

	stored := fullProfile()
	name := "مریم"
	patched := engine.ProfilePatch{Name: &name}.Apply(stored)
	assert.Equal(t, "مریم", patched.Name)
	assert.Equal(t, stored.Grade, patched.Grade)
	assert.Equal(t, stored.FavoriteSubjects, patched.FavoriteSubjects)

	full := engine.FullPatch(engine.UserProfile{Name: "x"})
	cleared := full.Apply(stored)
	assert.Equal(t, "x", cleared.Name)
	assert.Empty(t, cleared.Grade)
	assert.False(t, cleared.Complete)
}

package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Profile field names as used in collection replies and storage.
const (
	FieldName             = "name"
	FieldGrade            = "grade"
	FieldExamDate         = "exam_date"
	FieldFavoriteSubjects = "favorite_subjects"
	FieldDislikedSubjects = "disliked_subjects"
	FieldDesiredMajor     = "desired_major"
)

// ProfileFields lists the six content fields in their canonical order.
var ProfileFields = []string{
	FieldName,
	FieldGrade,
	FieldExamDate,
	FieldFavoriteSubjects,
	FieldDislikedSubjects,
	FieldDesiredMajor,
}

// UserProfile is a student's academic profile.
// Complete implies every content field is populated.
type UserProfile struct {
	UserID           int64
	Name             string
	Grade            string
	ExamDate         string
	FavoriteSubjects []string
	DislikedSubjects []string
	DesiredMajor     string
	Complete         bool
}

// Missing returns the names of unpopulated content fields, in canonical order.
func (p UserProfile) Missing() []string {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, FieldName)
	}
	if strings.TrimSpace(p.Grade) == "" {
		missing = append(missing, FieldGrade)
	}
	if strings.TrimSpace(p.ExamDate) == "" {
		missing = append(missing, FieldExamDate)
	}
	if len(p.FavoriteSubjects) == 0 {
		missing = append(missing, FieldFavoriteSubjects)
	}
	if len(p.DislikedSubjects) == 0 {
		missing = append(missing, FieldDislikedSubjects)
	}
	if strings.TrimSpace(p.DesiredMajor) == "" {
		missing = append(missing, FieldDesiredMajor)
	}
	return missing
}

// Merge returns a copy of p with the recognised entries of fields applied.
// Unknown keys and empty values are ignored. List fields accept arrays or
// strings separated by "," or "،".
func (p UserProfile) Merge(fields map[string]any) UserProfile {
	out := p
	out.FavoriteSubjects = cloneStrings(p.FavoriteSubjects)
	out.DislikedSubjects = cloneStrings(p.DislikedSubjects)

	for key, value := range fields {
		switch key {
		case FieldName:
			setString(&out.Name, value)
		case FieldGrade:
			setString(&out.Grade, value)
		case FieldExamDate:
			setString(&out.ExamDate, value)
		case FieldDesiredMajor:
			setString(&out.DesiredMajor, value)
		case FieldFavoriteSubjects:
			if list := toStringList(value); len(list) > 0 {
				out.FavoriteSubjects = list
			}
		case FieldDislikedSubjects:
			if list := toStringList(value); len(list) > 0 {
				out.DislikedSubjects = list
			}
		}
	}
	return out
}

// ProfilePatch is an upsert: nil fields keep their stored value.
type ProfilePatch struct {
	Name             *string
	Grade            *string
	ExamDate         *string
	FavoriteSubjects *[]string
	DislikedSubjects *[]string
	DesiredMajor     *string
	Complete         *bool
}

// FullPatch returns a patch that overwrites every field with the values of p.
func FullPatch(p UserProfile) ProfilePatch {
	favorite := cloneStrings(p.FavoriteSubjects)
	disliked := cloneStrings(p.DislikedSubjects)
	return ProfilePatch{
		Name:             &p.Name,
		Grade:            &p.Grade,
		ExamDate:         &p.ExamDate,
		FavoriteSubjects: &favorite,
		DislikedSubjects: &disliked,
		DesiredMajor:     &p.DesiredMajor,
		Complete:         &p.Complete,
	}
}

// Apply returns p with the non-nil fields of the patch written over it.
func (pp ProfilePatch) Apply(p UserProfile) UserProfile {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Grade != nil {
		p.Grade = *pp.Grade
	}
	if pp.ExamDate != nil {
		p.ExamDate = *pp.ExamDate
	}
	if pp.FavoriteSubjects != nil {
		p.FavoriteSubjects = cloneStrings(*pp.FavoriteSubjects)
	}
	if pp.DislikedSubjects != nil {
		p.DislikedSubjects = cloneStrings(*pp.DislikedSubjects)
	}
	if pp.DesiredMajor != nil {
		p.DesiredMajor = *pp.DesiredMajor
	}
	if pp.Complete != nil {
		p.Complete = *pp.Complete
	}
	return p
}

func setString(dst *string, value any) {
	s := strings.TrimSpace(scalarString(value))
	if s != "" {
		*dst = s
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%g", v)
	case bool:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toStringList(value any) []string {
	var parts []string
	switch v := value.(type) {
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, scalarString(item))
		}
	case string:
		parts = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '،' })
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

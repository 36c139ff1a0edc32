package extract

import (
	"strings"
)

// Category names used in rendered facts and delegated replies.
const (
	CategorySubjects   = "subjects"
	CategoryScores     = "scores"
	CategoryStudyTimes = "study_times"
	CategoryGoals      = "goals"
)

// Scores separates composite-exam scores (4-5 digits) from per-subject scores (1-2 digits).
type Scores struct {
	Composite []string
	Subject   []string
}

// StudyTimes holds "N hours" mentions and "HH:MM-HH:MM" ranges.
type StudyTimes struct {
	Hours  []string
	Ranges []string
}

// Goal records that the text states a goal, and the keyword that revealed it.
type Goal struct {
	HasGoal bool
	Keyword string
}

// Facts is the structured information extracted from one message.
// A nil or empty field means the category was not found.
type Facts struct {
	Subjects   []string
	Scores     *Scores
	StudyTimes *StudyTimes
	Goal       *Goal
}

// Empty reports whether no category was found.
func (f Facts) Empty() bool {
	return len(f.Subjects) == 0 && f.Scores == nil && f.StudyTimes == nil && f.Goal == nil
}

// Lines renders each present category as a "category: value" line.
func (f Facts) Lines() []string {
	var lines []string
	if len(f.Subjects) > 0 {
		lines = append(lines, CategorySubjects+": "+strings.Join(f.Subjects, ", "))
	}
	if f.Scores != nil {
		var parts []string
		if len(f.Scores.Composite) > 0 {
			parts = append(parts, "composite "+strings.Join(f.Scores.Composite, ", "))
		}
		if len(f.Scores.Subject) > 0 {
			parts = append(parts, "subject "+strings.Join(f.Scores.Subject, ", "))
		}
		lines = append(lines, CategoryScores+": "+strings.Join(parts, "; "))
	}
	if f.StudyTimes != nil {
		var parts []string
		for _, h := range f.StudyTimes.Hours {
			parts = append(parts, h+"h")
		}
		parts = append(parts, f.StudyTimes.Ranges...)
		lines = append(lines, CategoryStudyTimes+": "+strings.Join(parts, ", "))
	}
	if f.Goal != nil && f.Goal.HasGoal {
		lines = append(lines, CategoryGoals+": "+f.Goal.Keyword)
	}
	return lines
}

func normalizeScores(s *Scores) *Scores {
	if s == nil || (len(s.Composite) == 0 && len(s.Subject) == 0) {
		return nil
	}
	return s
}

func normalizeStudyTimes(st *StudyTimes) *StudyTimes {
	if st == nil || (len(st.Hours) == 0 && len(st.Ranges) == 0) {
		return nil
	}
	return st
}

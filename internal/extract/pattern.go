package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/edgard/edubot/internal/engine"
)

// SubjectVocabulary is the fixed list of subject names Pattern recognises.
var SubjectVocabulary = []string{
	"ریاضی", "فیزیک", "شیمی", "زیست", "ادبیات", "عربی", "دینی", "زبان",
	"هندسه", "حسابان", "گسسته", "آمار",
	"math", "physics", "chemistry", "biology", "literature", "arabic", "english", "geometry",
}

// GoalKeywords are checked in order; the first one present wins.
var GoalKeywords = []string{
	"هدف", "می‌خواهم", "میخوام", "قبولی", "رتبه", "دانشگاه",
	"goal", "want to", "aim",
}

var (
	// A 4-5 digit run is read as a composite score. Any such number counts,
	// whether or not it really is one.
	compositeScoreRe = regexp.MustCompile(`\b\d{4,5}\b`)
	subjectScoreRe   = regexp.MustCompile(`\b\d{1,2}(?:\.\d+)?\b`)
	studyHoursRe     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:ساعت|hours?|hrs?)`)
	timeRangeRe      = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(?:تا|to|-)\s*(\d{1,2}:\d{2})`)
)

// Pattern extracts facts with fixed vocabularies and regular expressions.
// It is pure: the same text always yields the same Facts.
type Pattern struct{}

// NewPattern returns the deterministic extractor.
func NewPattern() Pattern { return Pattern{} }

// Extract implements Extractor. priorReply is not used.
func (Pattern) Extract(_ context.Context, text, _ string) Facts {
	norm := strings.ToLower(engine.NormalizeDigits(text))
	return Facts{
		Subjects:   findSubjects(norm),
		Scores:     findScores(norm),
		StudyTimes: findStudyTimes(norm),
		Goal:       findGoal(norm),
	}
}

func findSubjects(text string) []string {
	type hit struct {
		subject string
		pos     int
	}

	var hits []hit
	for _, subject := range SubjectVocabulary {
		if pos := strings.Index(text, subject); pos >= 0 {
			hits = append(hits, hit{subject: subject, pos: pos})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.subject)
	}
	return out
}

func findScores(text string) *Scores {
	return normalizeScores(&Scores{
		Composite: compositeScoreRe.FindAllString(text, -1),
		Subject:   subjectScoreRe.FindAllString(text, -1),
	})
}

func findStudyTimes(text string) *StudyTimes {
	st := &StudyTimes{}
	for _, m := range studyHoursRe.FindAllStringSubmatch(text, -1) {
		st.Hours = append(st.Hours, m[1])
	}
	for _, m := range timeRangeRe.FindAllStringSubmatch(text, -1) {
		st.Ranges = append(st.Ranges, m[1]+"-"+m[2])
	}
	return normalizeStudyTimes(st)
}

func findGoal(text string) *Goal {
	for _, kw := range GoalKeywords {
		if strings.Contains(text, kw) {
			return &Goal{HasGoal: true, Keyword: kw}
		}
	}
	return nil
}

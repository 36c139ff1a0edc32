package engine

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ExamResult is one subject score as the user typed it.
type ExamResult struct {
	Subject string
	Score   string
}

// Numeric parses the score, accepting Persian and Arabic-Indic digits.
func (r ExamResult) Numeric() (float64, bool) {
	s := strings.TrimSpace(NormalizeDigits(r.Score))
	s = strings.ReplaceAll(s, "٫", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExamResults is an ordered subject→score mapping in user input order.
type ExamResults []ExamResult

// Set stores score for subject. An existing subject keeps its position and takes the new score.
func (rs ExamResults) Set(subject, score string) ExamResults {
	for i := range rs {
		if rs[i].Subject == subject {
			rs[i].Score = score
			return rs
		}
	}
	return append(rs, ExamResult{Subject: subject, Score: score})
}

// Get returns the score recorded for subject.
func (rs ExamResults) Get(subject string) (string, bool) {
	for _, r := range rs {
		if r.Subject == subject {
			return r.Score, true
		}
	}
	return "", false
}

// Lines renders the results as "subject: score" lines in order.
func (rs ExamResults) Lines() string {
	var b strings.Builder
	for i, r := range rs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.Subject)
		b.WriteString(": ")
		b.WriteString(r.Score)
	}
	return b.String()
}

// ParseExamResults reads one "subject: score" pair per line. Lines without a
// separator or with an empty side are skipped; scores are kept verbatim.
func ParseExamResults(text string) ExamResults {
	var results ExamResults
	for _, line := range strings.Split(text, "\n") {
		subject, score, ok := cutScoreLine(line)
		if !ok {
			continue
		}
		results = results.Set(subject, score)
	}
	return results
}

func cutScoreLine(line string) (string, string, bool) {
	idx := strings.IndexAny(line, ":：")
	if idx < 0 {
		return "", "", false
	}
	subject := strings.TrimSpace(line[:idx])
	rest := line[idx:]
	_, size := utf8.DecodeRuneInString(rest)
	score := strings.TrimSpace(rest[size:])
	if subject == "" || score == "" {
		return "", "", false
	}
	return subject, score, true
}

// ExamRecord is a previously stored exam result.
type ExamRecord struct {
	Subject    string
	Score      string
	RecordedAt time.Time
}

var digitMap = map[rune]rune{
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// NormalizeDigits replaces Persian and Arabic-Indic digits with ASCII digits.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := digitMap[r]; ok {
			return d
		}
		return r
	}, s)
}

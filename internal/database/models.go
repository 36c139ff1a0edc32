package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edgard/edubot/internal/engine"
)

// Chat history roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one persisted line of a user's conversation with the bot.
type ChatMessage struct {
	ID        uint      `db:"id"`
	UserID    int64     `db:"user_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

// ExamResultRow is one subject score from an exam-results submission.
type ExamResultRow struct {
	ID         uint      `db:"id"`
	UserID     int64     `db:"user_id"`
	Subject    string    `db:"subject"`
	Score      string    `db:"score"`
	RecordedAt time.Time `db:"recorded_at"`
}

// Record converts the row to the engine's history type.
func (r ExamResultRow) Record() engine.ExamRecord {
	return engine.ExamRecord{Subject: r.Subject, Score: r.Score, RecordedAt: r.RecordedAt}
}

// profileRow mirrors the user_profiles table.
type profileRow struct {
	ID               uint       `db:"id"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	UserID           int64      `db:"user_id"`
	Name             string     `db:"name"`
	Grade            string     `db:"grade"`
	ExamDate         string     `db:"exam_date"`
	FavoriteSubjects stringList `db:"favorite_subjects"`
	DislikedSubjects stringList `db:"disliked_subjects"`
	DesiredMajor     string     `db:"desired_major"`
	Complete         bool       `db:"profile_complete"`
}

func (r profileRow) profile() engine.UserProfile {
	return engine.UserProfile{
		UserID:           r.UserID,
		Name:             r.Name,
		Grade:            r.Grade,
		ExamDate:         r.ExamDate,
		FavoriteSubjects: []string(r.FavoriteSubjects),
		DislikedSubjects: []string(r.DislikedSubjects),
		DesiredMajor:     r.DesiredMajor,
		Complete:         r.Complete,
	}
}

func rowFromProfile(p engine.UserProfile) profileRow {
	return profileRow{
		UserID:           p.UserID,
		Name:             p.Name,
		Grade:            p.Grade,
		ExamDate:         p.ExamDate,
		FavoriteSubjects: stringList(p.FavoriteSubjects),
		DislikedSubjects: stringList(p.DislikedSubjects),
		DesiredMajor:     p.DesiredMajor,
		Complete:         p.Complete,
	}
}

// stringList is stored as a JSON array in a TEXT column.
type stringList []string

func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(b), nil
}

func (l *stringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into string list", src)
	}

	var out []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("failed to decode string list: %w", err)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}

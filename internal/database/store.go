package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/edubot/internal/engine"
)

// ErrIncompleteProfile is returned when a patch would mark a profile complete
// while some content field is still empty.
var ErrIncompleteProfile = errors.New("profile marked complete with missing fields")

// Store defines the database operations used by the bot.
// All methods honour ctx for cancellation and timeouts.
type Store interface {
	engine.ProfileStore

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// AppendChatMessage stores one line of a user's conversation.
	AppendChatMessage(ctx context.Context, userID int64, role, content string) error

	// DeleteAllChatHistory removes every stored chat message.
	DeleteAllChatHistory(ctx context.Context) error

	// SaveExamResults stores one submission of exam results.
	SaveExamResults(ctx context.Context, userID int64, results engine.ExamResults) error

	// GetExamHistory returns up to limit stored results for userID, newest first.
	GetExamHistory(ctx context.Context, userID int64, limit int) ([]engine.ExamRecord, error)

	// RunSQLMaintenance optimises the database file.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetProfile returns nil, nil when the user has no profile yet.
func (s *sqlxStore) GetProfile(ctx context.Context, userID int64) (*engine.UserProfile, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var row profileRow
	query := `SELECT id, created_at, updated_at, user_id, name, grade, exam_date,
	                 favorite_subjects, disliked_subjects, desired_major, profile_complete
	          FROM user_profiles WHERE user_id = ?`

	err := s.db.GetContext(ctx, &row, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user profile found", "user_id", userID)
		return nil, nil
	case isContextErr(err):
		s.logger.WarnContext(ctx, "Context ended while fetching user profile", "user_id", userID, "error", err)
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user profile", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user profile for user ID %d: %w", userID, err)
	}

	profile := row.profile()
	return &profile, nil
}

// SetProfile applies patch on top of the stored profile, creating it if needed.
func (s *sqlxStore) SetProfile(ctx context.Context, userID int64, patch engine.ProfilePatch) error {
	if userID == 0 {
		return errors.New("user_id cannot be zero")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving profile", "user_id", userID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	var existing profileRow
	err = tx.GetContext(ctx, &existing,
		`SELECT id, created_at, updated_at, user_id, name, grade, exam_date,
		        favorite_subjects, disliked_subjects, desired_major, profile_complete
		 FROM user_profiles WHERE user_id = ?`, userID)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error loading profile for update", "user_id", userID, "error", err)
		return fmt.Errorf("failed to load profile for user ID %d: %w", userID, err)
	}

	base := engine.UserProfile{UserID: userID}
	if exists {
		base = existing.profile()
	}
	merged := patch.Apply(base)
	merged.UserID = userID
	if merged.Complete {
		if missing := merged.Missing(); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrIncompleteProfile, strings.Join(missing, ", "))
		}
	}

	row := rowFromProfile(merged)
	now := s.now()
	row.UpdatedAt = now
	row.CreatedAt = now
	if exists {
		row.CreatedAt = existing.CreatedAt
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO user_profiles (
			user_id, name, grade, exam_date, favorite_subjects, disliked_subjects,
			desired_major, profile_complete, created_at, updated_at
		) VALUES (
			:user_id, :name, :grade, :exam_date, :favorite_subjects, :disliked_subjects,
			:desired_major, :profile_complete, :created_at, :updated_at
		)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			grade = excluded.grade,
			exam_date = excluded.exam_date,
			favorite_subjects = excluded.favorite_subjects,
			disliked_subjects = excluded.disliked_subjects,
			desired_major = excluded.desired_major,
			profile_complete = excluded.profile_complete,
			updated_at = excluded.updated_at`, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving user profile", "user_id", userID, "error", err)
		return fmt.Errorf("failed to save user profile for user ID %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit profile transaction", "user_id", userID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	operation := "updated"
	if !exists {
		operation = "created"
	}
	s.logger.DebugContext(ctx, "User profile saved", "operation", operation, "user_id", userID, "complete", merged.Complete)
	return nil
}

func (s *sqlxStore) AppendChatMessage(ctx context.Context, userID int64, role, content string) error {
	if userID == 0 {
		return errors.New("message must have a non-zero user_id")
	}
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("unknown chat role %q", role)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("message must have non-empty content")
	}

	msg := ChatMessage{UserID: userID, Role: role, Content: content, Timestamp: s.now()}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO chat_history (user_id, role, content, timestamp)
		 VALUES (:user_id, :role, :content, :timestamp)`, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving chat message", "user_id", userID, "role", role, "error", err)
		return fmt.Errorf("failed to save chat message for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqlxStore) DeleteAllChatHistory(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_history`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting chat history", "error", err)
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil {
		s.logger.InfoContext(ctx, "Deleted chat history", "rows", affected)
	}
	return nil
}

func (s *sqlxStore) SaveExamResults(ctx context.Context, userID int64, results engine.ExamResults) error {
	if userID == 0 {
		return errors.New("user_id cannot be zero")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	recordedAt := s.now()
	for _, r := range results {
		row := ExamResultRow{UserID: userID, Subject: r.Subject, Score: r.Score, RecordedAt: recordedAt}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO exam_results (user_id, subject, score, recorded_at)
			 VALUES (:user_id, :subject, :score, :recorded_at)`, row); err != nil {
			s.logger.ErrorContext(ctx, "Error saving exam result", "user_id", userID, "subject", r.Subject, "error", err)
			return fmt.Errorf("failed to save exam result for user %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.DebugContext(ctx, "Exam results saved", "user_id", userID, "count", len(results))
	return nil
}

func (s *sqlxStore) GetExamHistory(ctx context.Context, userID int64, limit int) ([]engine.ExamRecord, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}
	limit = clampLimit(limit, 5, 50)

	var rows []ExamResultRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, subject, score, recorded_at FROM exam_results
		 WHERE user_id = ? ORDER BY recorded_at DESC, id ASC LIMIT ?`, userID, limit)
	if isContextErr(err) {
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting exam history", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get exam history for user %d: %w", userID, err)
	}

	records := make([]engine.ExamRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return records, nil
}

// RunSQLMaintenance runs ANALYZE and VACUUM. VACUUM cannot run inside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context ended before database maintenance", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		s.logger.WarnContext(ctx, "ANALYZE failed", "error", err)
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case isContextErr(err):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}

func (s *sqlxStore) rollback(ctx context.Context, tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.WarnContext(ctx, "Error rolling back transaction", "error", err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

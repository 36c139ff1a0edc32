package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/edubot/internal/engine"
)

func newTestStore(t *testing.T) *sqlxStore {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	store, ok := NewStore(db, nil).(*sqlxStore)
	require.True(t, ok)
	return store
}

func strPtr(s string) *string { return &s }

func completeProfile(userID int64) engine.UserProfile {
	return engine.UserProfile{
		UserID:           userID,
		Name:             "سارا",
		Grade:            "دوازدهم",
		ExamDate:         "1404/04/10",
		FavoriteSubjects: []string{"ریاضی", "فیزیک"},
		DislikedSubjects: []string{"ادبیات"},
		DesiredMajor:     "مهندسی کامپیوتر",
		Complete:         true,
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	profile, err := store.GetProfile(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGetProfile_ZeroUser(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.GetProfile(context.Background(), 0)
	assert.Error(t, err)
}

func TestSetProfile_CreateAndReadBack(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	want := completeProfile(7)
	require.NoError(t, store.SetProfile(ctx, 7, engine.FullPatch(want)))

	got, err := store.GetProfile(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSetProfile_PatchPreservesUnsetFields(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetProfile(ctx, 7, engine.FullPatch(completeProfile(7))))
	require.NoError(t, store.SetProfile(ctx, 7, engine.ProfilePatch{Grade: strPtr("یازدهم")}))

	got, err := store.GetProfile(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "یازدهم", got.Grade)
	assert.Equal(t, "سارا", got.Name)
	assert.Equal(t, []string{"ریاضی", "فیزیک"}, got.FavoriteSubjects)
	assert.True(t, got.Complete)
}

func TestSetProfile_PartialProfileStaysIncomplete(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetProfile(ctx, 9, engine.ProfilePatch{Name: strPtr("علی")}))

	got, err := store.GetProfile(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "علی", got.Name)
	assert.False(t, got.Complete)
	assert.Nil(t, got.FavoriteSubjects)
}

func TestSetProfile_RejectsCompleteWithMissingFields(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	complete := true
	err := store.SetProfile(ctx, 9, engine.ProfilePatch{Name: strPtr("علی"), Complete: &complete})
	require.ErrorIs(t, err, ErrIncompleteProfile)

	got, err := store.GetProfile(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAppendChatMessage(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  int64
		role    string
		content string
		wantErr bool
	}{
		{name: "user message", userID: 1, role: RoleUser, content: "سلام"},
		{name: "assistant message", userID: 1, role: RoleAssistant, content: "سلام! چطور کمکت کنم؟"},
		{name: "zero user", userID: 0, role: RoleUser, content: "x", wantErr: true},
		{name: "unknown role", userID: 1, role: "system", content: "x", wantErr: true},
		{name: "blank content", userID: 1, role: RoleUser, content: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AppendChatMessage(ctx, tt.userID, tt.role, tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	var count int
	require.NoError(t, store.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chat_history`))
	assert.Equal(t, 2, count)

	require.NoError(t, store.DeleteAllChatHistory(ctx))
	require.NoError(t, store.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chat_history`))
	assert.Zero(t, count)
}

func TestExamResults_SaveAndHistory(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	first := engine.ParseExamResults("ریاضی: 6000\nفیزیک: 5500")
	require.NoError(t, store.SaveExamResults(ctx, 3, first))

	clock = clock.Add(24 * time.Hour)
	second := engine.ParseExamResults("شیمی: 7000")
	require.NoError(t, store.SaveExamResults(ctx, 3, second))

	require.NoError(t, store.SaveExamResults(ctx, 4, engine.ParseExamResults("زیست: 4000")))

	history, err := store.GetExamHistory(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "شیمی", history[0].Subject)
	assert.Equal(t, "7000", history[0].Score)
	assert.True(t, history[0].RecordedAt.Equal(clock))
	assert.Equal(t, "ریاضی", history[1].Subject)
	assert.Equal(t, "6000", history[1].Score)

	all, err := store.GetExamHistory(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveExamResults_EmptyIsNoop(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.SaveExamResults(context.Background(), 3, nil))
	history, err := store.GetExamHistory(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.RunSQLMaintenance(ctx), context.Canceled)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.NoError(t, ApplyMigrations(store.db.DB, "memory"))
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "edubot.db", want: "edubot.db"},
		{in: "file:edubot.db?_pragma=busy_timeout(5000)", want: "edubot.db"},
		{in: "file:my%20data.db", want: "my data.db"},
		{in: ":memory:", want: ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractDBNameFromPath(tt.in))
		})
	}
}

func TestStringList_Scan(t *testing.T) {
	t.Parallel()

	var l stringList
	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, stringList{"a", "b"}, l)

	require.NoError(t, l.Scan([]byte(`[]`)))
	assert.Nil(t, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(12))

	v, err := stringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

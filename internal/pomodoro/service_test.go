package pomodoro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/repository"
)

// --- モック定義 ---

type mockPomodoroRepo struct {
	createFn          func(ctx context.Context, session *model.PomodoroSession) error
	findByIDAndUserFn func(ctx context.Context, id, userID string) (*model.PomodoroSession, error)
	closeFn           func(ctx context.Context, id string, durationMinutes float64, endedAt time.Time) error
	listEndedSinceFn  func(ctx context.Context, userID string, since time.Time) ([]repository.SessionWithTaskText, error)
}

func (m *mockPomodoroRepo) Create(ctx context.Context, session *model.PomodoroSession) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockPomodoroRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
	if m.findByIDAndUserFn != nil {
		return m.findByIDAndUserFn(ctx, id, userID)
	}
	return nil, nil
}

func (m *mockPomodoroRepo) Close(ctx context.Context, id string, durationMinutes float64, endedAt time.Time) error {
	if m.closeFn != nil {
		return m.closeFn(ctx, id, durationMinutes, endedAt)
	}
	return nil
}

func (m *mockPomodoroRepo) ListEndedSince(ctx context.Context, userID string, since time.Time) ([]repository.SessionWithTaskText, error) {
	if m.listEndedSinceFn != nil {
		return m.listEndedSinceFn(ctx, userID, since)
	}
	return nil, nil
}

type mockTaskRepo struct {
	findByIDAndUserFn func(ctx context.Context, id, userID string) (*model.Task, error)
}

func (m *mockTaskRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error) {
	if m.findByIDAndUserFn != nil {
		return m.findByIDAndUserFn(ctx, id, userID)
	}
	return nil, nil
}

func (m *mockTaskRepo) ListByUserID(_ context.Context, _ string) ([]*model.Task, error) {
	return nil, nil
}

func (m *mockTaskRepo) Create(_ context.Context, _ *model.Task) error { return nil }

func (m *mockTaskRepo) Update(_ context.Context, _ *model.Task) error { return nil }

func (m *mockTaskRepo) DeleteByIDAndUser(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

// --- compile-time interface checks ---
var _ repository.PomodoroSessionRepository = (*mockPomodoroRepo)(nil)
var _ repository.TaskRepository = (*mockTaskRepo)(nil)

func strPtr(s string) *string { return &s }

func ownedTaskRepo(taskID, userID string) *mockTaskRepo {
	return &mockTaskRepo{
		findByIDAndUserFn: func(ctx context.Context, id, uid string) (*model.Task, error) {
			if id == taskID && uid == userID {
				return &model.Task{ID: id, UserID: uid, Text: "作業タスク"}, nil
			}
			return nil, nil
		},
	}
}

// --- Start ---

func TestStart_WorkSession_Success(t *testing.T) {
	var created *model.PomodoroSession
	sessionRepo := &mockPomodoroRepo{
		createFn: func(ctx context.Context, session *model.PomodoroSession) error {
			created = session
			return nil
		},
	}
	svc := NewService(sessionRepo, ownedTaskRepo("task-1", "user-1"), nil)

	session, err := svc.Start(context.Background(), "user-1", model.SessionTypeWork, strPtr("task-1"))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if session.ID == "" {
		t.Error("expected non-empty session ID")
	}
	if session.TaskID == nil || *session.TaskID != "task-1" {
		t.Error("expected taskID to be recorded")
	}
	if session.DurationMinutes != 0 {
		t.Errorf("duration = %g, want 0 for open session", session.DurationMinutes)
	}
	if session.EndedAt != nil {
		t.Error("open session should not have ended_at")
	}
	if created == nil {
		t.Fatal("expected session to be persisted")
	}
}

func TestStart_WorkSessionWithoutTask_ReturnsError(t *testing.T) {
	svc := NewService(&mockPomodoroRepo{}, &mockTaskRepo{}, nil)

	for _, taskID := range []*string{nil, strPtr("")} {
		_, err := svc.Start(context.Background(), "user-1", model.SessionTypeWork, taskID)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Start() error = %v, want APIError", err)
		}
		if apiErr.Code != model.ErrCodeTaskRequired {
			t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeTaskRequired)
		}
	}
}

func TestStart_WorkSessionWithOtherUsersTask_ReturnsNotFound(t *testing.T) {
	// task-1はuser-1の所有。user-2からは見えない
	svc := NewService(&mockPomodoroRepo{}, ownedTaskRepo("task-1", "user-1"), nil)

	_, err := svc.Start(context.Background(), "user-2", model.SessionTypeWork, strPtr("task-1"))

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Start() error = %v, want APIError", err)
	}
	if apiErr.Code != model.ErrCodeTaskNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeTaskNotFound)
	}
}

func TestStart_BreakSession_IgnoresTaskID(t *testing.T) {
	var created *model.PomodoroSession
	sessionRepo := &mockPomodoroRepo{
		createFn: func(ctx context.Context, session *model.PomodoroSession) error {
			created = session
			return nil
		},
	}
	// 休憩ではタスクの存在検証をしないため、taskRepoが呼ばれても失敗するモック
	svc := NewService(sessionRepo, &mockTaskRepo{}, nil)

	session, err := svc.Start(context.Background(), "user-1", model.SessionTypeShortBreak, strPtr("task-1"))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if session.TaskID != nil {
		t.Error("break session should not record a taskID")
	}
	if created == nil || created.SessionType != model.SessionTypeShortBreak {
		t.Error("expected shortBreak session to be persisted")
	}
}

func TestStart_LongBreak_Success(t *testing.T) {
	svc := NewService(&mockPomodoroRepo{}, &mockTaskRepo{}, nil)

	session, err := svc.Start(context.Background(), "user-1", model.SessionTypeLongBreak, nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.SessionType != model.SessionTypeLongBreak {
		t.Errorf("sessionType = %q, want %q", session.SessionType, model.SessionTypeLongBreak)
	}
}

func TestStart_InvalidSessionType_ReturnsError(t *testing.T) {
	svc := NewService(&mockPomodoroRepo{}, &mockTaskRepo{}, nil)

	for _, sessionType := range []string{"", "nap", "WORK", "shortbreak"} {
		_, err := svc.Start(context.Background(), "user-1", model.SessionType(sessionType), nil)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Start(%q) error = %v, want APIError", sessionType, err)
		}
		if apiErr.Code != model.ErrCodeInvalidSessionType {
			t.Errorf("Start(%q) code = %q, want %q", sessionType, apiErr.Code, model.ErrCodeInvalidSessionType)
		}
	}
}

// --- End ---

func openSession(id, userID string) *model.PomodoroSession {
	return &model.PomodoroSession{
		ID:          id,
		UserID:      userID,
		SessionType: model.SessionTypeWork,
		StartedAt:   time.Now().Add(-30 * time.Minute),
	}
}

func TestEnd_Success_ClosesSession(t *testing.T) {
	var closedID string
	var closedDuration float64
	sessionRepo := &mockPomodoroRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
			return openSession(id, userID), nil
		},
		closeFn: func(ctx context.Context, id string, durationMinutes float64, endedAt time.Time) error {
			closedID = id
			closedDuration = durationMinutes
			return nil
		},
	}
	svc := NewService(sessionRepo, &mockTaskRepo{}, nil)

	session, err := svc.End(context.Background(), "user-1", "session-1", 25.5)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}

	if closedID != "session-1" {
		t.Errorf("closed session = %q, want %q", closedID, "session-1")
	}
	if closedDuration != 25.5 {
		t.Errorf("closed duration = %g, want 25.5", closedDuration)
	}
	if session.DurationMinutes != 25.5 {
		t.Errorf("session duration = %g, want 25.5", session.DurationMinutes)
	}
	if session.EndedAt == nil {
		t.Fatal("expected ended_at to be set")
	}
}

func TestEnd_ZeroDuration_Succeeds(t *testing.T) {
	// 開始直後の中断は0分として有効
	sessionRepo := &mockPomodoroRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
			return openSession(id, userID), nil
		},
	}
	svc := NewService(sessionRepo, &mockTaskRepo{}, nil)

	session, err := svc.End(context.Background(), "user-1", "session-1", 0)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if session.DurationMinutes != 0 {
		t.Errorf("duration = %g, want 0", session.DurationMinutes)
	}
}

func TestEnd_NegativeDuration_ReturnsError(t *testing.T) {
	svc := NewService(&mockPomodoroRepo{}, &mockTaskRepo{}, nil)

	_, err := svc.End(context.Background(), "user-1", "session-1", -1)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("End() error = %v, want APIError", err)
	}
	if apiErr.Code != model.ErrCodeInvalidDuration {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeInvalidDuration)
	}
}

func TestEnd_UnknownSession_ReturnsNotFound(t *testing.T) {
	svc := NewService(&mockPomodoroRepo{}, &mockTaskRepo{}, nil)

	_, err := svc.End(context.Background(), "user-1", "missing-session", 25)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("End() error = %v, want APIError", err)
	}
	if apiErr.Code != model.ErrCodeSessionNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeSessionNotFound)
	}
}

func TestEnd_AlreadyEnded_ReturnsConflict(t *testing.T) {
	endedAt := time.Now().Add(-time.Hour)
	sessionRepo := &mockPomodoroRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
			session := openSession(id, userID)
			session.EndedAt = &endedAt
			session.DurationMinutes = 25
			return session, nil
		},
	}
	svc := NewService(sessionRepo, &mockTaskRepo{}, nil)

	_, err := svc.End(context.Background(), "user-1", "session-1", 30)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("End() error = %v, want APIError", err)
	}
	if apiErr.Code != model.ErrCodeSessionAlreadyEnded {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeSessionAlreadyEnded)
	}
}

// --- メトリクス ---

type mockSessionMetrics struct {
	started []string
	ended   int
}

func (m *mockSessionMetrics) RecordSessionStarted(sessionType string) {
	m.started = append(m.started, sessionType)
}

func (m *mockSessionMetrics) RecordSessionEnded() { m.ended++ }

func TestStartAndEnd_RecordMetrics(t *testing.T) {
	metrics := &mockSessionMetrics{}
	sessionRepo := &mockPomodoroRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
			return openSession(id, userID), nil
		},
	}
	svc := NewService(sessionRepo, ownedTaskRepo("task-1", "user-1"), metrics)

	if _, err := svc.Start(context.Background(), "user-1", model.SessionTypeWork, strPtr("task-1")); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.End(context.Background(), "user-1", "session-1", 25); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	if len(metrics.started) != 1 || metrics.started[0] != "work" {
		t.Errorf("started metrics = %v, want [work]", metrics.started)
	}
	if metrics.ended != 1 {
		t.Errorf("ended metric = %d, want 1", metrics.ended)
	}
}

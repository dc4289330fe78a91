// Package pomodoro はポモドーロセッションのライフサイクル管理と統計集計を提供する。
package pomodoro

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/repository"
)

// SessionMetrics はセッション操作のメトリクス記録インターフェース。
// 未設定（nil）の場合は記録しない。
type SessionMetrics interface {
	RecordSessionStarted(sessionType string)
	RecordSessionEnded()
}

// Service はポモドーロセッションのサービス層。
type Service struct {
	sessionRepo repository.PomodoroSessionRepository
	taskRepo    repository.TaskRepository
	metrics     SessionMetrics
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	sessionRepo repository.PomodoroSessionRepository,
	taskRepo repository.TaskRepository,
	metrics SessionMetrics,
) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		taskRepo:    taskRepo,
		metrics:     metrics,
	}
}

// Start は新規ポモドーロセッションをOpen状態で開始する。
//
// 作業セッション（work）の場合taskIDは必須で、呼び出しユーザー所有の
// タスクを参照していなければならない。休憩セッションではtaskIDは無視され
// 常にnullとして記録される。
// 同一ユーザーが複数のOpenセッションを同時に持つことは制限しない。
func (s *Service) Start(ctx context.Context, userID string, sessionType model.SessionType, taskID *string) (*model.PomodoroSession, error) {
	if !sessionType.IsValid() {
		return nil, model.NewInvalidSessionTypeError(string(sessionType))
	}

	var sessionTaskID *string
	if sessionType == model.SessionTypeWork {
		if taskID == nil || *taskID == "" {
			return nil, model.NewTaskRequiredError()
		}

		task, err := s.taskRepo.FindByIDAndUser(ctx, *taskID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
		if task == nil {
			return nil, model.NewTaskNotFoundError(*taskID)
		}
		sessionTaskID = taskID
	}

	now := time.Now().UTC()
	session := &model.PomodoroSession{
		ID:              uuid.New().String(),
		UserID:          userID,
		TaskID:          sessionTaskID,
		SessionType:     sessionType,
		DurationMinutes: 0,
		StartedAt:       now,
		EndedAt:         nil,
		CreatedAt:       now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create pomodoro session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSessionStarted(string(sessionType))
	}

	return session, nil
}

// End はOpen状態のセッションに実測時間を記録しClosed状態に遷移させる。
//
// durationMinutesは0以上でなければならない（0は開始直後の中断として有効）。
// 既にClosedのセッションを再度終了しようとした場合はConflictエラーを返す。
// 上書きを許すと統計の元データが後から変わってしまうため拒否する。
func (s *Service) End(ctx context.Context, userID, sessionID string, durationMinutes float64) (*model.PomodoroSession, error) {
	if durationMinutes < 0 {
		return nil, model.NewInvalidDurationError(durationMinutes)
	}

	session, err := s.sessionRepo.FindByIDAndUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pomodoro session: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError(sessionID)
	}
	if session.IsEnded() {
		return nil, model.NewSessionAlreadyEndedError(sessionID)
	}

	endedAt := time.Now().UTC()
	if err := s.sessionRepo.Close(ctx, session.ID, durationMinutes, endedAt); err != nil {
		return nil, fmt.Errorf("failed to close pomodoro session: %w", err)
	}

	session.DurationMinutes = durationMinutes
	session.EndedAt = &endedAt

	if s.metrics != nil {
		s.metrics.RecordSessionEnded()
	}

	return session, nil
}

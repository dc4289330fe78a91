// Package task はタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/repository"
	"github.com/hitoshi/pomoman/internal/security"
)

// UpdateInput はタスクの部分更新の入力を表す。
// nilのフィールドは変更しない。
type UpdateInput struct {
	Text      *string
	Completed *bool
}

// TaskMetrics はタスク操作のメトリクス記録インターフェース。
// 未設定（nil）の場合は記録しない。
type TaskMetrics interface {
	RecordTaskCreated()
}

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo  repository.TaskRepository
	sanitizer security.TaskTextSanitizerService
	metrics   TaskMetrics
}

// NewService はServiceを生成する。sanitizerとmetricsはnilでもよい。
func NewService(taskRepo repository.TaskRepository, sanitizer security.TaskTextSanitizerService, metrics TaskMetrics) *Service {
	return &Service{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// List はユーザーのタスク一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create は新規タスクを作成する。
// 本文は前後空白を除去・サニタイズし、空の場合はエラーを返す。
func (s *Service) Create(ctx context.Context, userID, text string) (*model.Task, error) {
	text = s.normalizeText(text)
	if text == "" {
		return nil, model.NewTaskTextRequiredError()
	}

	now := time.Now().UTC()
	task := &model.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCreated()
	}

	return task, nil
}

// Update はタスクを部分更新する。
// 本文が指定されている場合は作成時と同じく空文字を拒否する。
// 未指定のフィールドは変更しない。
func (s *Service) Update(ctx context.Context, userID, taskID string, input UpdateInput) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	if input.Text != nil {
		text := s.normalizeText(*input.Text)
		if text == "" {
			return nil, model.NewTaskTextRequiredError()
		}
		task.Text = text
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete はタスクを削除する。
// 紐付くポモドーロセッションは削除されずtask_idも保持される。
// 以降の統計ではタスク本文が引けないため不明タスクとして表示される。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	deleted, err := s.taskRepo.DeleteByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError(taskID)
	}
	return nil
}

// normalizeText はタスク本文の前後空白を除去し、HTMLタグをサニタイズする。
func (s *Service) normalizeText(text string) string {
	text = strings.TrimSpace(text)
	if s.sanitizer != nil {
		text = s.sanitizer.Sanitize(text)
	}
	return strings.TrimSpace(text)
}

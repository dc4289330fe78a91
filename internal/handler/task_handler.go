package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pomoman/internal/middleware"
	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// List はユーザーのタスク一覧を作成日時の新しい順で返す。
	List(ctx context.Context, userID string) ([]*model.Task, error)
	// Create はタスクを作成する。本文はサニタイズされる。
	Create(ctx context.Context, userID, text string) (*model.Task, error)
	// Update はタスクを部分更新する。nilフィールドは変更しない。
	Update(ctx context.Context, userID, taskID string, input task.UpdateInput) (*model.Task, error)
	// Delete はタスクを削除する。
	Delete(ctx context.Context, userID, taskID string) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// taskCreateRequest はタスク作成リクエストのボディ。
type taskCreateRequest struct {
	Text string `json:"text"`
}

// taskUpdateRequest はタスク更新リクエストのボディ。
// 省略されたフィールドは変更しない部分更新を行う。
type taskUpdateRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// taskListResponse はタスク一覧のレスポンス。
type taskListResponse struct {
	Success bool           `json:"success"`
	Tasks   []taskResponse `json:"tasks"`
}

// taskDetailResponse は単一タスクのレスポンス。
type taskDetailResponse struct {
	Success bool         `json:"success"`
	Task    taskResponse `json:"task"`
}

// ListTasks はユーザーのタスク一覧を取得する。
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	tasks, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		results[i] = toTaskResponse(t)
	}

	writeJSON(w, http.StatusOK, taskListResponse{
		Success: true,
		Tasks:   results,
	})
}

// CreateTask はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req taskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, taskDetailResponse{
		Success: true,
		Task:    toTaskResponse(created),
	})
}

// UpdateTask はタスクを部分更新する。
// PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	taskID := chi.URLParam(r, "id")

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, taskID, task.UpdateInput{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, taskDetailResponse{
		Success: true,
		Task:    toTaskResponse(updated),
	})
}

// DeleteTask はタスクを削除する。
// 削除後も参照中のポモドーロセッションは統計のために残る。
// DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	taskID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{
		Success: true,
		Message: "タスクを削除しました。",
	})
}

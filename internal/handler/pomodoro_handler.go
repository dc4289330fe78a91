package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/pomoman/internal/middleware"
	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/pomodoro"
)

// PomodoroServiceInterface はポモドーロハンドラーが必要とするサービスインターフェース。
type PomodoroServiceInterface interface {
	// Start はポモドーロセッションを開始する。
	// 作業セッションには本人所有のタスクIDが必須。
	Start(ctx context.Context, userID string, sessionType model.SessionType, taskID *string) (*model.PomodoroSession, error)
	// End は進行中のセッションを実測時間付きで終了する。
	End(ctx context.Context, userID, sessionID string, durationMinutes float64) (*model.PomodoroSession, error)
	// Statistics は期間内の終了済みセッションを集計して返す。
	Statistics(ctx context.Context, userID string, period pomodoro.Period) (*pomodoro.Statistics, error)
}

// PomodoroHandler はポモドーロセッション管理のHTTPハンドラー。
type PomodoroHandler struct {
	service PomodoroServiceInterface
}

// NewPomodoroHandler はPomodoroHandlerを生成する。
func NewPomodoroHandler(service PomodoroServiceInterface) *PomodoroHandler {
	return &PomodoroHandler{service: service}
}

// sessionStartRequest はセッション開始リクエストのボディ。
type sessionStartRequest struct {
	SessionType string  `json:"session_type"`
	TaskID      *string `json:"task_id,omitempty"`
}

// sessionEndRequest はセッション終了リクエストのボディ。
type sessionEndRequest struct {
	SessionID       string  `json:"session_id"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// sessionDetailResponse は単一セッションのレスポンス。
type sessionDetailResponse struct {
	Success bool                    `json:"success"`
	Session pomodoroSessionResponse `json:"session"`
}

// StartSession はポモドーロセッションを開始する。
// POST /api/pomodoro/start
func (h *PomodoroHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req sessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	session, err := h.service.Start(r.Context(), userID, model.SessionType(req.SessionType), req.TaskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionDetailResponse{
		Success: true,
		Session: toPomodoroSessionResponse(session),
	})
}

// EndSession は進行中のセッションを終了する。
// POST /api/pomodoro/end
func (h *PomodoroHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req sessionEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	session, err := h.service.End(r.Context(), userID, req.SessionID, req.DurationMinutes)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionDetailResponse{
		Success: true,
		Session: toPomodoroSessionResponse(session),
	})
}

// GetStatistics は期間ごとの統計を返す。
// 未知のperiod値はdaily扱いになる。
// GET /api/pomodoro/statistics?period=daily|weekly|monthly
func (h *PomodoroHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	period := pomodoro.ParsePeriod(r.URL.Query().Get("period"))

	stats, err := h.service.Statistics(r.Context(), userID, period)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		statisticsResponse
	}{
		Success:            true,
		statisticsResponse: toStatisticsResponse(stats),
	})
}

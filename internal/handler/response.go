// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/pomodoro"
	"github.com/hitoshi/pomoman/internal/repository"
)

// userResponse はユーザー情報のAPIレスポンス。
// パスワードハッシュ等の内部情報は含めない。
type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `json:"created_at"`
	HasGoogleAuth bool      `json:"has_google_auth"`
}

// taskResponse はタスク情報のAPIレスポンス。
type taskResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// pomodoroSessionResponse はポモドーロセッションのAPIレスポンス。
type pomodoroSessionResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	TaskID          *string    `json:"task_id"`
	SessionType     string     `json:"session_type"`
	DurationMinutes float64    `json:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// errorResponse は統一エラーエンベロープのレスポンス。
type errorResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Category string `json:"category"`
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		CreatedAt:     user.CreatedAt,
		HasGoogleAuth: user.HasGoogleAuth(),
	}
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(task *model.Task) taskResponse {
	return taskResponse{
		ID:        task.ID,
		UserID:    task.UserID,
		Text:      task.Text,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// toPomodoroSessionResponse はmodel.PomodoroSessionからAPIレスポンスに変換する。
func toPomodoroSessionResponse(session *model.PomodoroSession) pomodoroSessionResponse {
	return pomodoroSessionResponse{
		ID:              session.ID,
		UserID:          session.UserID,
		TaskID:          session.TaskID,
		SessionType:     string(session.SessionType),
		DurationMinutes: session.DurationMinutes,
		StartedAt:       session.StartedAt,
		EndedAt:         session.EndedAt,
		CreatedAt:       session.CreatedAt,
	}
}

// toSessionWithTaskResponses は統計用のセッション一覧をAPIレスポンスに変換する。
func toSessionWithTaskResponses(sessions []repository.SessionWithTaskText) []pomodoroSessionResponse {
	results := make([]pomodoroSessionResponse, len(sessions))
	for i := range sessions {
		results[i] = toPomodoroSessionResponse(&sessions[i].PomodoroSession)
	}
	return results
}

// taskStatisticsResponse はタスク単位の統計のAPIレスポンス。
type taskStatisticsResponse struct {
	TaskID        string  `json:"task_id"`
	TaskText      string  `json:"task_text"`
	TotalMinutes  float64 `json:"total_minutes"`
	FullPomodoros int     `json:"full_pomodoros"`
	HalfPomodoros int     `json:"half_pomodoros"`
	FullMinutes   float64 `json:"full_minutes"`
	HalfMinutes   float64 `json:"half_minutes"`
}

// statisticsResponse は統計のAPIレスポンス。
type statisticsResponse struct {
	Period                 string                    `json:"period"`
	TotalWorkMinutes       float64                   `json:"total_work_minutes"`
	TotalShortBreakMinutes float64                   `json:"total_short_break_minutes"`
	TotalLongBreakMinutes  float64                   `json:"total_long_break_minutes"`
	TotalPomodoros         int                       `json:"total_pomodoros"`
	FullPomodoros          int                       `json:"full_pomodoros"`
	HalfPomodoros          int                       `json:"half_pomodoros"`
	TaskStatistics         []taskStatisticsResponse  `json:"task_statistics"`
	Sessions               []pomodoroSessionResponse `json:"sessions"`
}

// toStatisticsResponse はpomodoro.StatisticsからAPIレスポンスに変換する。
func toStatisticsResponse(stats *pomodoro.Statistics) statisticsResponse {
	taskStats := make([]taskStatisticsResponse, len(stats.TaskStatistics))
	for i, ts := range stats.TaskStatistics {
		taskStats[i] = taskStatisticsResponse{
			TaskID:        ts.TaskID,
			TaskText:      ts.TaskText,
			TotalMinutes:  ts.TotalMinutes,
			FullPomodoros: ts.FullPomodoros,
			HalfPomodoros: ts.HalfPomodoros,
			FullMinutes:   ts.FullMinutes,
			HalfMinutes:   ts.HalfMinutes,
		}
	}

	return statisticsResponse{
		Period:                 string(stats.Period),
		TotalWorkMinutes:       stats.TotalWorkMinutes,
		TotalShortBreakMinutes: stats.TotalShortBreakMinutes,
		TotalLongBreakMinutes:  stats.TotalLongBreakMinutes,
		TotalPomodoros:         stats.TotalPomodoros,
		FullPomodoros:          stats.FullPomodoros,
		HalfPomodoros:          stats.HalfPomodoros,
		TaskStatistics:         taskStats,
		Sessions:               toSessionWithTaskResponses(stats.Sessions),
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーエンベロープでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, errorResponse{
		Success:  false,
		Message:  apiErr.Message,
		Code:     apiErr.Code,
		Category: apiErr.Category,
	})
}

// writeUnauthorizedResponse は401の統一エンベロープを書き込む。
func writeUnauthorizedResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// writeInvalidRequestResponse はリクエストボディ解析失敗の400レスポンスを書き込む。
func writeInvalidRequestResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidEmail,
		model.ErrCodePasswordTooShort,
		model.ErrCodeTaskTextRequired,
		model.ErrCodeInvalidSessionType,
		model.ErrCodeTaskRequired,
		model.ErrCodeInvalidDuration:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeTaskNotFound, model.ErrCodeSessionNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeSessionAlreadyEnded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/pomoman/internal/metrics"
	"github.com/hitoshi/pomoman/internal/middleware"
)

// HealthChecker はDB疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 監視
	HealthChecker   HealthChecker
	MetricsRecorder middleware.HTTPMetricsRecorder
	MetricsGatherer prometheus.Gatherer

	// ロギング
	Logger *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// タスク
	TaskService TaskServiceInterface

	// ポモドーロ
	PomodoroService PomodoroServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → CORS → SessionMiddleware → RateLimitMiddleware
//
// 認証ルート（/register等）と監視ルート（/health, /metrics）はセッション検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	taskHandler := NewTaskHandler(deps.TaskService)
	pomodoroHandler := NewPomodoroHandler(deps.PomodoroService)

	// --- 認証不要のルート ---

	r.Get("/", handleIndex)
	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)
	r.Post("/logout", authHandler.Logout)
	r.Route("/auth/google", func(r chi.Router) {
		r.Get("/", authHandler.GoogleLogin)
		r.Get("/callback", authHandler.GoogleCallback)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.Middleware())

		// 現在のユーザー情報
		r.Get("/api/user", authHandler.Me)

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
			})
		})

		// ポモドーロセッション管理
		r.Route("/api/pomodoro", func(r chi.Router) {
			r.Post("/start", pomodoroHandler.StartSession)
			r.Post("/end", pomodoroHandler.EndSession)
			r.Get("/statistics", pomodoroHandler.GetStatistics)
		})
	})

	return r
}

// handleIndex はAPIのエンドポイント一覧を返す。
// GET /
func handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Pomodoro API",
		"endpoints": map[string]string{
			"register":   "POST /register",
			"login":      "POST /login",
			"logout":     "POST /logout",
			"google":     "GET /auth/google",
			"user":       "GET /api/user",
			"tasks":      "GET|POST /api/tasks",
			"task":       "PUT|DELETE /api/tasks/{id}",
			"start":      "POST /api/pomodoro/start",
			"end":        "POST /api/pomodoro/end",
			"statistics": "GET /api/pomodoro/statistics",
		},
	})
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check: database unreachable", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
					"success": false,
					"status":  "unhealthy",
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  "ok",
		})
	}
}

// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
	RecordSessionStarted(sessionType string)
	RecordSessionEnded()
	RecordTaskCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	sessionsStarted *prometheus.CounterVec
	sessionsEnded   prometheus.Counter
	tasksCreated    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomoman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pomoman_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomoman_pomodoro_sessions_started_total",
			Help: "開始されたポモドーロセッションの種別ごとの合計数",
		}, []string{"session_type"}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomoman_pomodoro_sessions_ended_total",
			Help: "終了されたポモドーロセッションの合計数",
		}),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomoman_tasks_created_total",
			Help: "作成されたタスクの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.sessionsStarted,
		c.sessionsEnded,
		c.tasksCreated,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordSessionStarted はポモドーロセッションの開始を記録する。
func (c *Collector) RecordSessionStarted(sessionType string) {
	c.sessionsStarted.WithLabelValues(sessionType).Inc()
}

// RecordSessionEnded はポモドーロセッションの終了を記録する。
func (c *Collector) RecordSessionEnded() {
	c.sessionsEnded.Inc()
}

// RecordTaskCreated はタスクの作成を記録する。
func (c *Collector) RecordTaskCreated() {
	c.tasksCreated.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)

package pomodoro

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/repository"
)

// Period は統計の集計期間を表す。
type Period string

const (
	// PeriodDaily は当日0時（UTC）以降の集計。
	PeriodDaily Period = "daily"
	// PeriodWeekly は直近の月曜0時（UTC）以降の集計。
	PeriodWeekly Period = "weekly"
	// PeriodMonthly は当月1日0時（UTC）以降の集計。
	PeriodMonthly Period = "monthly"
)

// unknownTaskLabel はタスクが削除済みの場合に使用するラベル。
const unknownTaskLabel = "不明なタスク"

// fullPomodoroMinutes は「完全なポモドーロ」と判定する最低作業時間（分）。
const fullPomodoroMinutes = 25.0

// TaskStatistics はタスク単位の作業セッション集計を表す。
// TaskTextは集計時点のスナップショットで、タスク削除後は不明ラベルになる。
type TaskStatistics struct {
	TaskID        string
	TaskText      string
	TotalMinutes  float64
	FullPomodoros int
	HalfPomodoros int
	FullMinutes   float64 // 完全なポモドーロ（25分以上）の合計時間
	HalfMinutes   float64 // 不完全なポモドーロ（25分未満）の合計時間
}

// Statistics は期間内のポモドーロ統計を表す。
//
// 生のセッション一覧（Sessions）も含めて返す。クライアントが追加の
// リクエストなしで明細表示や再集計をできるようにするための設計。
type Statistics struct {
	Period                 Period
	TotalWorkMinutes       float64
	TotalShortBreakMinutes float64
	TotalLongBreakMinutes  float64
	TotalPomodoros         int
	FullPomodoros          int
	HalfPomodoros          int
	TaskStatistics         []TaskStatistics
	Sessions               []repository.SessionWithTaskText
}

// ParsePeriod は文字列をPeriodに変換する。
// 未知の値はエラーにせずdailyとして扱う。
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s)
	default:
		return PeriodDaily
	}
}

// WindowStart は指定期間の集計開始時刻（UTC）を返す。
//   - daily:   当日の0時
//   - weekly:  直近の月曜の0時（月曜を週の初めとする）
//   - monthly: 当月1日の0時
func WindowStart(period Period, now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodWeekly:
		// time.Weekdayは日曜=0なので月曜=0に変換する
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -daysSinceMonday)
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return midnight
	}
}

// Statistics は期間内の終了済みセッションを集計して統計を返す。
//
// 集計対象は ended_at >= 期間開始時刻 の終了済みセッションのみ。
// 上限は設けない（現在時刻まで）。
// 作業セッションは実測時間により分類される:
//   - 25分以上: 完全なポモドーロ
//   - 0分超25分未満: 不完全なポモドーロ
//   - 0分: どちらにも数えない（合計セッション数には含む）
func (s *Service) Statistics(ctx context.Context, userID string, period Period) (*Statistics, error) {
	since := WindowStart(period, time.Now())

	sessions, err := s.sessionRepo.ListEndedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list ended sessions: %w", err)
	}

	stats := &Statistics{
		Period:         period,
		TaskStatistics: []TaskStatistics{},
		Sessions:       sessions,
	}

	// タスク別集計はマップで構築し、初出順を保つためキー順も記録する
	taskStats := map[string]*TaskStatistics{}
	taskOrder := []string{}

	for _, session := range sessions {
		switch session.SessionType {
		case model.SessionTypeShortBreak:
			stats.TotalShortBreakMinutes += session.DurationMinutes
			continue
		case model.SessionTypeLongBreak:
			stats.TotalLongBreakMinutes += session.DurationMinutes
			continue
		case model.SessionTypeWork:
			// 以降で集計
		default:
			continue
		}

		duration := session.DurationMinutes
		stats.TotalWorkMinutes += duration
		stats.TotalPomodoros++

		full := duration >= fullPomodoroMinutes
		half := duration > 0 && duration < fullPomodoroMinutes
		if full {
			stats.FullPomodoros++
		}
		if half {
			stats.HalfPomodoros++
		}

		// タスクに紐付かない作業セッションは全体集計のみ
		if session.TaskID == nil {
			continue
		}

		ts, ok := taskStats[*session.TaskID]
		if !ok {
			label := unknownTaskLabel
			if session.TaskText != nil {
				label = *session.TaskText
			}
			ts = &TaskStatistics{
				TaskID:   *session.TaskID,
				TaskText: label,
			}
			taskStats[*session.TaskID] = ts
			taskOrder = append(taskOrder, *session.TaskID)
		}

		ts.TotalMinutes += duration
		if full {
			ts.FullPomodoros++
			ts.FullMinutes += duration
		} else if half {
			ts.HalfPomodoros++
			ts.HalfMinutes += duration
		}
	}

	for _, taskID := range taskOrder {
		stats.TaskStatistics = append(stats.TaskStatistics, *taskStats[taskID])
	}

	return stats, nil
}

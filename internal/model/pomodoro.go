package model

import "time"

// SessionType はポモドーロセッションの種別を表す。
type SessionType string

const (
	// SessionTypeWork は作業セッション。タスクへの紐付けが必須。
	SessionTypeWork SessionType = "work"
	// SessionTypeShortBreak は短い休憩セッション。
	SessionTypeShortBreak SessionType = "shortBreak"
	// SessionTypeLongBreak は長い休憩セッション。
	SessionTypeLongBreak SessionType = "longBreak"
)

// IsValid はセッション種別が定義済みの値かどうかを返す。
func (t SessionType) IsValid() bool {
	switch t {
	case SessionTypeWork, SessionTypeShortBreak, SessionTypeLongBreak:
		return true
	default:
		return false
	}
}

// PomodoroSession はポモドーロの作業・休憩タイマー1回分の記録を表す。
//
// ライフサイクルは2状態のみ:
//   - Open:   開始直後。EndedAtがnil、DurationMinutesは0。
//   - Closed: 終了済み。EndedAtと実測のDurationMinutesが設定される。
//
// 一度Closedになったセッションが再度Openに戻ることはない。
// TaskIDは作業セッションのみ設定され、休憩セッションでは常にnil。
type PomodoroSession struct {
	ID              string
	UserID          string
	TaskID          *string
	SessionType     SessionType
	DurationMinutes float64
	StartedAt       time.Time
	EndedAt         *time.Time
	CreatedAt       time.Time
}

// IsEnded はセッションが終了済み（Closed）かどうかを返す。
func (s *PomodoroSession) IsEnded() bool {
	return s.EndedAt != nil
}

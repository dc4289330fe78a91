// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/pomoman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// AttachGoogleID は既存ユーザーにGoogleアカウントを紐付ける。
	// パスワード登録済みユーザーが初めてGoogleログインした場合に使用する。
	AttachGoogleID(ctx context.Context, userID, googleID string) error
}

// SessionRepository はログインセッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての取得・変更操作は所有ユーザーにスコープされる。
type TaskRepository interface {
	// FindByIDAndUser は指定IDかつ指定ユーザー所有のタスクを取得する。
	// 見つからない場合（他ユーザー所有の場合を含む）はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error)

	// ListByUserID はユーザーのタスク一覧を作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクの本文・完了状態・更新日時を上書きする。
	Update(ctx context.Context, task *model.Task) error

	// DeleteByIDAndUser は指定IDかつ指定ユーザー所有のタスクを削除する。
	// 削除対象が存在しない場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}

// SessionWithTaskText はポモドーロセッションとタスク本文のスナップショットを結合した構造体。
// 統計集計時のタスクラベル表示に使用する。タスクが削除済みの場合TaskTextはnil。
type SessionWithTaskText struct {
	model.PomodoroSession
	TaskText *string
}

// PomodoroSessionRepository はポモドーロセッションの永続化インターフェース。
type PomodoroSessionRepository interface {
	// Create は新規セッションをOpen状態で作成する。
	Create(ctx context.Context, session *model.PomodoroSession) error

	// FindByIDAndUser は指定IDかつ指定ユーザー所有のセッションを取得する。
	// 見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.PomodoroSession, error)

	// Close はセッションに実測時間と終了日時を記録しClosed状態にする。
	Close(ctx context.Context, id string, durationMinutes float64, endedAt time.Time) error

	// ListEndedSince は指定ユーザーの終了済みセッションのうち
	// ended_at >= since のものをタスク本文付きで返す。
	// タスク本文はLEFT JOINで取得し、タスク削除済みの場合はnilになる。
	ListEndedSince(ctx context.Context, userID string, since time.Time) ([]SessionWithTaskText, error)
}

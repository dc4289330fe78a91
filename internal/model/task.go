package model

import "time"

// Task はユーザーのToDoタスクを表す。
// ポモドーロの作業セッションはタスクに紐付けて記録される。
type Task struct {
	ID        string
	UserID    string
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

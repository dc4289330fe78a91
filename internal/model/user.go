// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// パスワード認証ユーザーはPasswordHashを持ち、Google OAuthユーザーはGoogleIDを持つ。
// 両方を持つ場合もあるが、少なくとも一方は必ず設定される。
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	GoogleID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasGoogleAuth はGoogleアカウントが紐付いているかどうかを返す。
func (u *User) HasGoogleAuth() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// HasPassword はパスワードが設定されているかどうかを返す。
// Google OAuthのみで登録したユーザーはパスワードを持たない。
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Session はユーザーのログインセッションを表す。
// ポモドーロの作業タイマー（PomodoroSession）とは別物。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TaskTextSanitizerService はユーザーが入力したタスク本文をサニタイズし、
// フロントエンドでの表示時に持ち込まれる格納型XSSからユーザーを保護する。
// bluemondayライブラリの厳格ポリシーを使用し、一切のHTMLタグを除去する。
package security

import "github.com/microcosm-cc/bluemonday"

// TaskTextSanitizerService はタスク本文のサニタイズ機能のインターフェースを定義する。
// タスクの作成・更新時、保存前に使用される。
type TaskTextSanitizerService interface {
	// Sanitize はタスク本文からすべてのHTMLタグを除去してプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(text string) string
}

// taskTextSanitizer はTaskTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type taskTextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTaskTextSanitizer はTaskTextSanitizerServiceの新しいインスタンスを生成する。
// タスク本文は装飾なしのプレーンテキストとして扱うため、
// タグを一切許可しないStrictPolicyを使用する。
func NewTaskTextSanitizer() *taskTextSanitizer {
	return &taskTextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はタスク本文からすべてのHTMLタグを除去してプレーンテキストを返す。
func (s *taskTextSanitizer) Sanitize(text string) string {
	return s.policy.Sanitize(text)
}

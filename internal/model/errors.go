// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, pomodoro, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodePasswordTooShort    = "PASSWORD_TOO_SHORT"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeTaskTextRequired    = "TASK_TEXT_REQUIRED"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeInvalidSessionType  = "INVALID_SESSION_TYPE"
	ErrCodeTaskRequired        = "TASK_REQUIRED"
	ErrCodeInvalidDuration     = "INVALID_DURATION"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeSessionAlreadyEnded = "SESSION_ALREADY_ENDED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewInvalidEmailError は不正なメールアドレス形式のエラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "有効なメールアドレスを入力してください。",
		Category: "validation",
		Action:   "メールアドレスの形式を確認してください。",
	}
}

// NewPasswordTooShortError はパスワードが短すぎる場合のエラーを生成する。
func NewPasswordTooShortError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordTooShort,
		Message:  "パスワードは6文字以上で入力してください。",
		Category: "validation",
		Action:   "6文字以上のパスワードを設定してください。",
	}
}

// NewEmailTakenError はメールアドレスが登録済みの場合のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報が一致しない場合のエラーを生成する。
// メールアドレスとパスワードのどちらが誤っているかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証リクエストのエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewTaskTextRequiredError はタスク本文が空の場合のエラーを生成する。
func NewTaskTextRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskTextRequired,
		Message:  "タスクの内容を入力してください。",
		Category: "validation",
		Action:   "空でないタスク内容を入力してください。",
	}
}

// NewTaskNotFoundError はタスクが見つからない場合のエラーを生成する。
// 他ユーザーのタスクを指定した場合も存在有無を隠すため同じエラーを返す。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewInvalidSessionTypeError は不正なセッション種別のエラーを生成する。
func NewInvalidSessionTypeError(sessionType string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSessionType,
		Message:  fmt.Sprintf("無効なセッション種別です: %s", sessionType),
		Category: "validation",
		Action:   "セッション種別には work、shortBreak、longBreak のいずれかを指定してください。",
	}
}

// NewTaskRequiredError は作業セッションにタスクが未指定の場合のエラーを生成する。
func NewTaskRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskRequired,
		Message:  "作業セッションにはタスクの指定が必要です。",
		Category: "validation",
		Action:   "task_idを指定してください。",
	}
}

// NewInvalidDurationError は不正なセッション時間のエラーを生成する。
func NewInvalidDurationError(minutes float64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDuration,
		Message:  fmt.Sprintf("無効なセッション時間です: %g分", minutes),
		Category: "validation",
		Action:   "セッション時間には0以上の値を指定してください。",
	}
}

// NewSessionNotFoundError はポモドーロセッションが見つからない場合のエラーを生成する。
func NewSessionNotFoundError(sessionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("指定されたセッションが見つかりません: %s", sessionID),
		Category: "pomodoro",
		Action:   "セッションIDを確認してください。",
	}
}

// NewSessionAlreadyEndedError は終了済みセッションを再度終了しようとした場合のエラーを生成する。
func NewSessionAlreadyEndedError(sessionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSessionAlreadyEnded,
		Message:  fmt.Sprintf("セッションは既に終了しています: %s", sessionID),
		Category: "pomodoro",
		Action:   "新しいセッションを開始してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

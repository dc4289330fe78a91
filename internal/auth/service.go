// Package auth はパスワード認証、Google OAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/pomoman/internal/model"
	"github.com/hitoshi/pomoman/internal/repository"
)

// minPasswordLength は登録時に要求するパスワードの最小文字数。
const minPasswordLength = 6

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	GoogleID string
	Email    string
	Name     string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// NormalizeEmail はメールアドレスを正規化する（前後空白除去＋小文字化）。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail はメールアドレス形式の簡易チェックを行う。
// @と.を含むことのみ検証する。厳密なRFC検証は行わない。
func isValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// Register はメールアドレスとパスワードでユーザーを登録し、セッションを発行する。
// 登録成功後は自動的にログイン状態になる。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = NormalizeEmail(email)

	if !isValidEmail(email) {
		return nil, nil, model.NewInvalidEmailError()
	}
	if len(password) < minPasswordLength {
		return nil, nil, model.NewPasswordTooShortError()
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewEmailTakenError()
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashBytes)

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", email),
	)

	return user, session, nil
}

// Login はメールアドレスとパスワードでログインし、セッションを発行する。
// ユーザーの存在有無とパスワードの誤りは区別せず、同じエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	// Googleのみで登録したユーザーはパスワードログイン不可
	if user == nil || !user.HasPassword() {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, session, nil
}

// GetGoogleLoginURL はGoogle OAuthの認証URLを生成する。
func (s *Service) GetGoogleLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleGoogleCallback はGoogle OAuthコールバックを処理し、セッションを発行する。
// メールアドレスで既存ユーザーを特定する:
//   - 未登録の場合はGoogleID付きで新規作成する。
//   - パスワード登録済みでGoogle未連携の場合はGoogleIDを紐付ける。
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*model.User, *model.Session, error) {
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	email := NormalizeEmail(userInfo.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		// 新規ユーザー: GoogleID付きで作成
		now := time.Now().UTC()
		googleID := userInfo.GoogleID
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			GoogleID:  &googleID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created via google oauth",
			slog.String("user_id", user.ID),
			slog.String("email", email),
		)
	} else if !user.HasGoogleAuth() {
		// 既存のパスワードユーザーにGoogleアカウントを紐付ける
		if err := s.userRepo.AttachGoogleID(ctx, user.ID, userInfo.GoogleID); err != nil {
			return nil, nil, fmt.Errorf("failed to attach google ID: %w", err)
		}
		googleID := userInfo.GoogleID
		user.GoogleID = &googleID
		slog.Info("google account linked to existing user",
			slog.String("user_id", user.ID),
		)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

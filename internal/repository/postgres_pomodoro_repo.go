package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/pomoman/internal/model"
)

// PostgresPomodoroRepo はPostgreSQLを使用したポモドーロセッションリポジトリ。
type PostgresPomodoroRepo struct {
	db *sql.DB
}

// NewPostgresPomodoroRepo はPostgresPomodoroRepoを生成する。
func NewPostgresPomodoroRepo(db *sql.DB) *PostgresPomodoroRepo {
	return &PostgresPomodoroRepo{db: db}
}

// Create は新規セッションをOpen状態で作成する。
func (r *PostgresPomodoroRepo) Create(ctx context.Context, session *model.PomodoroSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pomodoro_sessions
		 (id, user_id, task_id, session_type, duration_minutes, started_at, ended_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.UserID, session.TaskID, string(session.SessionType),
		session.DurationMinutes, session.StartedAt, session.EndedAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pomodoro session: %w", err)
	}
	return nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有のセッションを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresPomodoroRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.PomodoroSession, error) {
	session := &model.PomodoroSession{}
	var sessionType string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, task_id, session_type, duration_minutes, started_at, ended_at, created_at
		 FROM pomodoro_sessions WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&session.ID, &session.UserID, &session.TaskID, &sessionType,
		&session.DurationMinutes, &session.StartedAt, &session.EndedAt, &session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pomodoro session: %w", err)
	}

	session.SessionType = model.SessionType(sessionType)
	return session, nil
}

// Close はセッションに実測時間と終了日時を記録しClosed状態にする。
func (r *PostgresPomodoroRepo) Close(ctx context.Context, id string, durationMinutes float64, endedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE pomodoro_sessions SET duration_minutes = $1, ended_at = $2
		 WHERE id = $3`,
		durationMinutes, endedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to close pomodoro session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pomodoro session not found: %s", id)
	}
	return nil
}

// ListEndedSince は指定ユーザーの終了済みセッションのうち ended_at >= since のものを
// タスク本文付きで返す。タスク削除済みの場合TaskTextはnilになる。
func (r *PostgresPomodoroRepo) ListEndedSince(ctx context.Context, userID string, since time.Time) ([]SessionWithTaskText, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.task_id, s.session_type, s.duration_minutes,
		        s.started_at, s.ended_at, s.created_at, t.text
		 FROM pomodoro_sessions s
		 LEFT JOIN tasks t ON t.id = s.task_id
		 WHERE s.user_id = $1 AND s.ended_at IS NOT NULL AND s.ended_at >= $2
		 ORDER BY s.ended_at ASC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ended sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionWithTaskText{}
	for rows.Next() {
		var s SessionWithTaskText
		var sessionType string
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TaskID, &sessionType, &s.DurationMinutes,
			&s.StartedAt, &s.EndedAt, &s.CreatedAt, &s.TaskText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ended session: %w", err)
		}
		s.SessionType = model.SessionType(sessionType)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ended sessions: %w", err)
	}

	return sessions, nil
}

// compile-time interface check
var _ PomodoroSessionRepository = (*PostgresPomodoroRepo)(nil)

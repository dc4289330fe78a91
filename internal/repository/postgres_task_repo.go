package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pomoman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有のタスクを取得する。
// 見つからない場合（他ユーザー所有の場合を含む）はnilを返す。
func (r *PostgresTaskRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, completed, created_at, updated_at
		 FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&task.ID, &task.UserID, &task.Text, &task.Completed, &task.CreatedAt, &task.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListByUserID はユーザーのタスク一覧を作成日時の降順で返す。
func (r *PostgresTaskRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, text, completed, created_at, updated_at
		 FROM tasks WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		task := &model.Task{}
		if err := rows.Scan(&task.ID, &task.UserID, &task.Text, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, text, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.UserID, task.Text, task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update はタスクの本文・完了状態・更新日時を上書きする。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET text = $1, completed = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		task.Text, task.Completed, task.UpdatedAt, task.ID, task.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}
	return nil
}

// DeleteByIDAndUser は指定IDかつ指定ユーザー所有のタスクを削除する。
// 削除対象が存在しない場合はfalseを返す。
// 紐付くポモドーロセッションのtask_idはそのまま残る（統計では不明タスク扱い）。
func (r *PostgresTaskRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)

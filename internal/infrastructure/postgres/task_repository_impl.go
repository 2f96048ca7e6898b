package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/repository"
)

// invalidTextRepresentation is raised when a bound value cannot be cast to
// its column type, here an id literal that is not a uuid.
const invalidTextRepresentation = "22P02"

// taskMissing maps zero-row results and non-uuid id literals to the same
// outcome. An id that cannot name a row must behave like one that doesn't,
// so clients see 404 either way.
func taskMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

// TaskRepository persists tasks in Postgres. Single-task reads, updates and
// deletes all carry `user_id` in the WHERE clause, so a wrong-owner request
// hits zero rows exactly like a nonexistent id.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, priority, status, deadline, user_id, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, priority, status, deadline, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Description, t.Priority, t.Status, t.Deadline, t.UserID)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		var t entity.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)

	if err := scanTask(row, t); err != nil {
		if taskMissing(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update writes every mutable column; the caller merges partial input into a
// task loaded through GetByIDAndOwner first. The owner clause keeps the write
// atomic with the ownership check.
func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	t.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, deadline = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, t.Title, t.Description, t.Priority, t.Status, t.Deadline, t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		if taskMissing(err) {
			return repository.ErrNotFound
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	if err != nil {
		if taskMissing(err) {
			return repository.ErrNotFound
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row, t *entity.Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.Deadline, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

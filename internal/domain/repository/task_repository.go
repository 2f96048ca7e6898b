package repository

import (
	"context"

	"github.com/hemanthdorepalli/Taskmanager-Backend/internal/domain/entity"
)

// TaskRepository defines task persistence. Every lookup that targets a single
// task takes the owner id alongside the task id; implementations must put both
// in the query predicate so a task owned by someone else is indistinguishable
// from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Task, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}

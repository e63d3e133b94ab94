package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/repository"
)

const taskColumns = `id, user_id, title, description, priority, completed, deadline, completed_at, version, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}
	subs, err := r.loadSubTasks(ctx, []string{task.ID})
	if err != nil {
		return nil, err
	}
	task.SubTasks = subs[task.ID]
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	  AND ($2::boolean IS NULL OR completed = $2)
	  AND ($3::timestamptz IS NULL OR deadline >= $3)
	  AND ($4::timestamptz IS NULL OR deadline <= $4)
	  AND ($5::timestamptz IS NULL OR created_at >= $5 OR completed_at >= $5)
	ORDER BY created_at DESC
	LIMIT $6 OFFSET $7
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID,
		nullBool(filter.Completed),
		nullTimePtr(filter.DeadlineFrom),
		nullTimePtr(filter.DeadlineTo),
		nullTimePtr(filter.ActiveSince),
		limitArg(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		tasks []domain.Task
		ids   []string
	)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs, err := r.loadSubTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].SubTasks = subs[tasks[i].ID]
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, priority, completed, deadline, completed_at, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
	RETURNING version, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Priority),
		task.Completed,
		nullTimePtr(task.Deadline),
		nullTimePtr(task.CompletedAt),
	).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		description = $4,
		priority = $5,
		completed = $6,
		deadline = $7,
		completed_at = $8,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND ($9 = 0 OR version = $9)
	RETURNING version, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		string(task.Priority),
		task.Completed,
		nullTimePtr(task.Deadline),
		nullTimePtr(task.CompletedAt),
		task.Version,
	).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missOrConflict(ctx, task.UserID, task.ID)
	}
	return err
}

func (r *taskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool, completedAt *time.Time) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET completed = $3,
		completed_at = $4,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, userID, completed, nullTimePtr(completedAt)))
	if err != nil {
		return nil, err
	}
	subs, err := r.loadSubTasks(ctx, []string{task.ID})
	if err != nil {
		return nil, err
	}
	task.SubTasks = subs[task.ID]
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) InsertSubTasks(ctx context.Context, taskID string, subTasks []domain.SubTask) ([]domain.SubTask, error) {
	if len(subTasks) == 0 {
		return nil, nil
	}

	const query = `
	INSERT INTO sub_tasks (id, task_id, title, completed, position)
	VALUES ($1, $2, $3, $4, $5)
	`

	out := make([]domain.SubTask, len(subTasks))
	batch := &pgx.Batch{}
	for i, st := range subTasks {
		st.ID = uuid.NewString()
		st.TaskID = taskID
		st.Position = i
		out[i] = st
		batch.Queue(query, st.ID, st.TaskID, st.Title, st.Completed, st.Position)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range out {
		if _, err := results.Exec(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *taskRepository) DeleteSubTasks(ctx context.Context, taskID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sub_tasks WHERE task_id = $1`, taskID)
	return err
}

func (r *taskRepository) SetSubTaskCompleted(ctx context.Context, taskID, subTaskID string, completed bool) error {
	const query = `UPDATE sub_tasks SET completed = $3 WHERE id = $2 AND task_id = $1`
	tag, err := r.pool.Exec(ctx, query, taskID, subTaskID, completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubTaskNotFound
	}
	return nil
}

func (r *taskRepository) loadSubTasks(ctx context.Context, taskIDs []string) (map[string][]domain.SubTask, error) {
	out := make(map[string][]domain.SubTask, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}

	const query = `
	SELECT id, task_id, title, completed, position
	FROM sub_tasks
	WHERE task_id = ANY($1)
	ORDER BY task_id, position
	`
	rows, err := r.pool.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var st domain.SubTask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Completed, &st.Position); err != nil {
			return nil, err
		}
		out[st.TaskID] = append(out[st.TaskID], st)
	}
	return out, rows.Err()
}

func (r *taskRepository) missOrConflict(ctx context.Context, userID, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)`, id, userID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrVersionConflict
	}
	return domain.ErrTaskNotFound
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task        domain.Task
		priority    string
		description *string
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&priority,
		&task.Completed,
		&task.Deadline,
		&task.CompletedAt,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	if description != nil {
		task.Description = *description
	}
	return &task, nil
}

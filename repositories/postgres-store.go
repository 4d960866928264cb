package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/models"
)

// TaskChangesChannel is the NOTIFY channel task writers publish the
// department id of a mutated task on.
const TaskChangesChannel = "task_changes"

const (
	selectTasksSQL = `
		SELECT id, department_id, title, status, priority, category, assigned_to, task_date
		FROM tasks
		WHERE department_id = $1 AND task_date >= $2 AND task_date < $3`

	selectUsersSQL = `
		SELECT id, first_name, last_name, email
		FROM users
		WHERE id = ANY($1)`

	userExistsSQL       = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	departmentExistsSQL = `SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`
)

// PostgresStore reads from a relational copy of the task data. category and
// assigned_to are text[] columns.
type PostgresStore struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewPostgresStore(ctx context.Context, dsn string, queryTimeout time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, queryTimeout: queryTimeout}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *PostgresStore) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, selectTasksSQL, filter.DepartmentID, models.StartOfDay(filter.From), filter.Until())
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var (
			task       models.Task
			status     string
			priority   string
			categories []string
		)
		if err := rows.Scan(&task.ID, &task.DepartmentID, &task.Title, &status, &priority, &categories, &task.AssignedTo, &task.Date); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task.Status = models.TaskStatus(status)
		task.Priority = models.TaskPriority(priority)
		for _, c := range categories {
			task.Category = append(task.Category, models.TaskCategory(c))
		}
		task.Date = task.Date.UTC()
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) FindUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, selectUsersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) UserExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, userExistsSQL, id)
}

func (s *PostgresStore) DepartmentExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, departmentExistsSQL, id)
}

func (s *PostgresStore) exists(ctx context.Context, query, id string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var ok bool
	if err := s.pool.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", id, err)
	}
	return ok, nil
}

// Watch listens on TaskChangesChannel; every payload is a department id.
func (s *PostgresStore) Watch(ctx context.Context, onChange func(departmentID string)) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+TaskChangesChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", TaskChangesChannel, err)
	}
	logging.Logger.Infof("Event ID: PG_LISTEN_STARTED, Description: Listening on channel %s", TaskChangesChannel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("waiting for notification: %w", err)
		}
		onChange(n.Payload)
	}
}

package services

import (
	"context"

	"facility-maintenance/microservices/statistics-service/models"
)

// TaskStore returns the tasks matching a filter. Implementations must treat
// both filter days as inclusive.
type TaskStore interface {
	FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
}

// UserStore resolves user identities. FindUsers silently skips unknown ids.
type UserStore interface {
	FindUsers(ctx context.Context, ids []string) ([]models.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

type DepartmentStore interface {
	DepartmentExists(ctx context.Context, id string) (bool, error)
}

// Store is everything the statistics engine reads.
type Store interface {
	TaskStore
	UserStore
	DepartmentStore
}

// Statistics is the read API of the engine, implemented by StatisticsService
// and by decorators such as the result cache.
type Statistics interface {
	Dashboard(ctx context.Context, w Window, limit int) (*models.DashboardStatistics, error)
	Leaderboard(ctx context.Context, w Window) ([]models.LeaderboardEntry, error)
	// UserStatistic returns nil without error when the user has no task in the window.
	UserStatistic(ctx context.Context, w Window, userID string) (*models.LeaderboardEntry, error)

	ValidateDepartment(ctx context.Context, departmentID string) error
	ValidateUser(ctx context.Context, userID string) error
}

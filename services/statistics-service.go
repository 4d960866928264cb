package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/models"
)

type StatisticsService struct {
	store Store
}

func NewStatisticsService(store Store) *StatisticsService {
	return &StatisticsService{store: store}
}

// windowTasks holds the raw tasks of the windows one request reads.
type windowTasks struct {
	current   []models.Task
	prior     []models.Task
	sixMonths []models.Task
}

// fetchWindows loads the requested windows concurrently. A failing query
// cancels the others and fails the whole request.
func (s *StatisticsService) fetchWindows(ctx context.Context, w Window, withPrior, withSixMonths bool) (*windowTasks, error) {
	var result windowTasks
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := s.findTasks(gctx, "current window", w.Current())
		result.current = tasks
		return err
	})
	if withPrior {
		g.Go(func() error {
			tasks, err := s.findTasks(gctx, "prior window", w.Prior())
			result.prior = tasks
			return err
		})
	}
	if withSixMonths {
		g.Go(func() error {
			tasks, err := s.findTasks(gctx, "six month window", w.SixMonths())
			result.sixMonths = tasks
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *StatisticsService) findTasks(ctx context.Context, op string, filter models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.store.FindTasks(ctx, filter)
	if err != nil {
		return nil, NewStoreUnavailableError("find tasks in "+op, err)
	}
	return tasks, nil
}

// usersByID joins identities for every assignee of tasks. Assignees without an
// identity are simply absent from the map.
func (s *StatisticsService) usersByID(ctx context.Context, departmentID string, tasks []models.Task) (map[string]models.User, error) {
	ids := assigneeIDs(tasks)
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	found, err := s.store.FindUsers(ctx, ids)
	if err != nil {
		return nil, NewStoreUnavailableError("find users", err)
	}
	for _, u := range found {
		users[u.ID] = u
	}
	if missing := len(ids) - len(users); missing > 0 {
		logging.Logger.Debugf("Event ID: LEADERBOARD_ORPHANED_ASSIGNEES, Description: %d assignee(s) without identity in department %s", missing, departmentID)
	}
	return users, nil
}

func (s *StatisticsService) leaderboard(ctx context.Context, w Window, current []models.Task, limit int) ([]models.LeaderboardEntry, error) {
	users, err := s.usersByID(ctx, w.DepartmentID, current)
	if err != nil {
		return nil, err
	}
	return buildLeaderboard(w, current, users, overallProgress(current), limit), nil
}

// Dashboard assembles the status trends, the six month series and the
// leaderboard of one department.
func (s *StatisticsService) Dashboard(ctx context.Context, w Window, limit int) (*models.DashboardStatistics, error) {
	tasks, err := s.fetchWindows(ctx, w, true, true)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.leaderboard(ctx, w, tasks.current, limit)
	if err != nil {
		return nil, err
	}

	chart, series := reshapeSeries(w, countByMonth(tasks.sixMonths))

	logging.Logger.Debugf("Event ID: DASHBOARD_COMPUTED, Description: department=%s date=%s current=%d prior=%d sixMonths=%d",
		w.DepartmentID, w.ReferenceDate.Format(DateLayout), len(tasks.current), len(tasks.prior), len(tasks.sixMonths))

	return &models.DashboardStatistics{
		StatData:          buildStatusStatistics(w, tasks.current, tasks.prior),
		ChartData:         chart,
		SeriesData:        series,
		LastSixMonths:     w.MonthLabels,
		DaysInLast30:      w.DailyLabels,
		Last30DaysOverall: overallProgress(tasks.current),
		Performance:       calculatePerformance(series),
		Leaderboard:       leaderboard,
	}, nil
}

// Leaderboard returns every assignee of the current window, unlimited.
func (s *StatisticsService) Leaderboard(ctx context.Context, w Window) ([]models.LeaderboardEntry, error) {
	tasks, err := s.fetchWindows(ctx, w, false, false)
	if err != nil {
		return nil, err
	}
	return s.leaderboard(ctx, w, tasks.current, 0)
}

func (s *StatisticsService) UserStatistic(ctx context.Context, w Window, userID string) (*models.LeaderboardEntry, error) {
	entries, err := s.Leaderboard(ctx, w)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].UserID == userID {
			return &entries[i], nil
		}
	}
	return nil, nil
}

func (s *StatisticsService) ValidateDepartment(ctx context.Context, departmentID string) error {
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		return NewDepartmentNotFoundError(departmentID)
	}
	ok, err := s.store.DepartmentExists(ctx, departmentID)
	if err != nil {
		return NewStoreUnavailableError("find department", err)
	}
	if !ok {
		return NewDepartmentNotFoundError(departmentID)
	}
	return nil
}

func (s *StatisticsService) ValidateUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return NewUserNotFoundError(userID)
	}
	ok, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return NewStoreUnavailableError("find user", err)
	}
	if !ok {
		return NewUserNotFoundError(userID)
	}
	return nil
}

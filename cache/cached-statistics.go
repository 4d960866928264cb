package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/models"
	"facility-maintenance/microservices/statistics-service/services"
)

// CachedStatistics serves statistics views from a Cache, computing them with
// the wrapped engine on a miss. Cache failures degrade to a direct computation.
type CachedStatistics struct {
	next  services.Statistics
	cache Cache
	ttl   time.Duration
}

func NewCachedStatistics(next services.Statistics, cache Cache, ttl time.Duration) *CachedStatistics {
	return &CachedStatistics{next: next, cache: cache, ttl: ttl}
}

func (c *CachedStatistics) Dashboard(ctx context.Context, w services.Window, limit int) (*models.DashboardStatistics, error) {
	return cached(ctx, c, "dashboard", w, strconv.Itoa(limit), func() (*models.DashboardStatistics, error) {
		return c.next.Dashboard(ctx, w, limit)
	})
}

func (c *CachedStatistics) Leaderboard(ctx context.Context, w services.Window) ([]models.LeaderboardEntry, error) {
	return cached(ctx, c, "leaderboard", w, "all", func() ([]models.LeaderboardEntry, error) {
		return c.next.Leaderboard(ctx, w)
	})
}

func (c *CachedStatistics) UserStatistic(ctx context.Context, w services.Window, userID string) (*models.LeaderboardEntry, error) {
	return cached(ctx, c, "user", w, userID, func() (*models.LeaderboardEntry, error) {
		return c.next.UserStatistic(ctx, w, userID)
	})
}

func (c *CachedStatistics) ValidateDepartment(ctx context.Context, departmentID string) error {
	return c.next.ValidateDepartment(ctx, departmentID)
}

func (c *CachedStatistics) ValidateUser(ctx context.Context, userID string) error {
	return c.next.ValidateUser(ctx, userID)
}

// Invalidate drops every cached view of a department, or of all departments
// when departmentID is empty.
func (c *CachedStatistics) Invalidate(ctx context.Context, departmentID string) error {
	if err := c.cache.Bump(ctx, departmentID); err != nil {
		return fmt.Errorf("failed to invalidate statistics of department %q: %w", departmentID, err)
	}
	return nil
}

// Key builds the cache key of one view:
// statistics:<kind>:<department>:g<generation>:<date>:<variant>.
func Key(kind, departmentID, generation string, w services.Window, variant string) string {
	return fmt.Sprintf("statistics:%s:%s:g%s:%s:%s", kind, departmentID, generation, w.ReferenceDate.Format(services.DateLayout), variant)
}

func cached[T any](ctx context.Context, c *CachedStatistics, kind string, w services.Window, variant string, load func() (T, error)) (T, error) {
	generation, err := c.cache.Generation(ctx, w.DepartmentID)
	if err != nil {
		logging.Logger.Warnf("Event ID: CACHE_GENERATION_FAILED, Description: department=%s: %v", w.DepartmentID, err)
		return load()
	}
	key := Key(kind, w.DepartmentID, generation, w, variant)

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_READ_FAILED, Description: key=%s: %v", key, err)
	} else if ok {
		var value T
		decodeErr := json.Unmarshal(data, &value)
		if decodeErr == nil {
			return value, nil
		}
		logging.Logger.Warnf("Event ID: CACHE_DECODE_FAILED, Description: key=%s: %v", key, decodeErr)
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		logging.Logger.Warnf("Event ID: CACHE_ENCODE_FAILED, Description: key=%s: %v", key, err)
		return value, nil
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		logging.Logger.Warnf("Event ID: CACHE_WRITE_FAILED, Description: key=%s: %v", key, err)
	}
	return value, nil
}

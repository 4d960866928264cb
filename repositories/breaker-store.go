package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/models"
	"facility-maintenance/microservices/statistics-service/services"
)

// BreakerStore guards every read of the wrapped store with one circuit
// breaker. While open, reads fail fast with gobreaker.ErrOpenState.
type BreakerStore struct {
	next services.Store
	cb   *gobreaker.CircuitBreaker
}

func NewStoreBreaker(name string, maxFailures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > maxFailures
		},
		// a caller giving up is not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

func NewBreakerStore(next services.Store, cb *gobreaker.CircuitBreaker) *BreakerStore {
	return &BreakerStore{next: next, cb: cb}
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (s *BreakerStore) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return execute(s.cb, func() ([]models.Task, error) {
		return s.next.FindTasks(ctx, filter)
	})
}

func (s *BreakerStore) FindUsers(ctx context.Context, ids []string) ([]models.User, error) {
	return execute(s.cb, func() ([]models.User, error) {
		return s.next.FindUsers(ctx, ids)
	})
}

func (s *BreakerStore) UserExists(ctx context.Context, id string) (bool, error) {
	return execute(s.cb, func() (bool, error) {
		return s.next.UserExists(ctx, id)
	})
}

func (s *BreakerStore) DepartmentExists(ctx context.Context, id string) (bool, error) {
	return execute(s.cb, func() (bool, error) {
		return s.next.DepartmentExists(ctx, id)
	})
}

// IsBreakerOpen reports whether err was produced by a breaker refusing the call.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

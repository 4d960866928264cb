package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-maintenance/microservices/statistics-service/models"
	"facility-maintenance/microservices/statistics-service/repositories"
)

type recordingInvalidator struct {
	mu          sync.Mutex
	departments []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, departmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departments = append(r.departments, departmentID)
	return nil
}

func (r *recordingInvalidator) seen(departmentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.departments {
		if d == departmentID {
			return true
		}
	}
	return false
}

type brokenWatcher struct{}

func (brokenWatcher) Watch(context.Context, func(string)) error {
	return errors.New("change stream closed")
}

func follow(ctx context.Context, watcher repositories.ChangeWatcher, inv Invalidator, hub *Hub) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Follow(ctx, watcher, inv, hub)
	}()
	return done
}

func TestFollow_ForwardsTaskChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := repositories.NewMemoryStore()
	inv := &recordingInvalidator{}
	done := follow(ctx, store, inv, NewHub("*"))

	task := models.Task{ID: "t1", DepartmentID: "d1", Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}
	require.Eventually(t, func() bool {
		store.PutTask(task)
		return inv.seen("d1")
	}, time.Second, 10*time.Millisecond)

	task.DepartmentID = "d2"
	store.PutTask(task)
	assert.Eventually(t, func() bool { return inv.seen("d2") }, time.Second, 10*time.Millisecond)
	assert.False(t, inv.seen(""))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestFollow_InvalidatesEverythingWhenFeedFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inv := &recordingInvalidator{}
	done := follow(ctx, brokenWatcher{}, inv, nil)

	assert.Eventually(t, func() bool { return inv.seen("") }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return during backoff")
	}
}

func TestFollow_WithoutCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := repositories.NewMemoryStore()
	hub := NewHub("*")
	done := follow(ctx, store, nil, hub)

	store.PutTask(models.Task{ID: "t1", DepartmentID: "d1"})
	cancel()
	<-done
}

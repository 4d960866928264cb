package repositories

import "context"

// ChangeWatcher reports task mutations by department. An empty department id
// means the department could not be determined and every department is
// affected. Watch blocks until ctx is done or the feed fails.
type ChangeWatcher interface {
	Watch(ctx context.Context, onChange func(departmentID string)) error
}

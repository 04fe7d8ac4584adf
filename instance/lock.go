package instance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/packdock/packdock/remote"
)

// LockPath is the advisory lock file guarding against two install/update
// operations running concurrently against the same instance.
const LockPath = ".packdock/lock"

// ErrLocked is returned when another operation holds the instance lock.
var ErrLocked = errors.New("another install or update is already running on this instance")

// Lock is a held advisory lock.
type Lock struct {
	fsys  remote.FS
	token string
}

// AcquireLock takes the advisory instance lock. The check-then-write is not
// atomic over the remote API; the lock is advisory, not a correctness
// guarantee.
func AcquireLock(ctx context.Context, fsys remote.FS) (*Lock, error) {
	if _, err := fsys.Read(ctx, LockPath); err == nil {
		return nil, ErrLocked
	}

	token := uuid.NewString()
	body := fmt.Sprintf("%s %s\n", token, time.Now().UTC().Format(time.RFC3339))
	if err := fsys.Write(ctx, LockPath, []byte(body)); err != nil {
		return nil, fmt.Errorf("failed to take instance lock: %w", err)
	}
	return &Lock{fsys: fsys, token: token}, nil
}

// Release drops the lock. Best-effort; callers log failures and move on.
func (l *Lock) Release(ctx context.Context) error {
	return l.fsys.Delete(ctx, LockPath)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pointward/rewards-backend/internal/model"
)

// ErrConflict reports that a transaction could not commit because of
// concurrent conflicting writes. The whole unit rolled back, so the caller
// may retry from scratch.
var ErrConflict = errors.New("transaction_conflict")

// ErrUnavailable reports that the datastore could not be reached. No state
// was changed.
var ErrUnavailable = errors.New("storage_unavailable")

type AccountRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.Account, error)
	// FindByUIDForUpdate reads the row with an exclusive lock. Inside a
	// transaction this is the read settlement must use before computing the
	// absolute level, so a concurrent credit cannot base its derivation on a
	// stale total.
	FindByUIDForUpdate(ctx context.Context, uid string) (*model.Account, error)
	FindByReferralCode(ctx context.Context, code string) (*model.Account, error)
	Create(ctx context.Context, a *model.Account) error
	// ApplyCredit increments points and totalEarned by amount and sets the
	// absolute level, in one statement.
	ApplyCredit(ctx context.Context, uid string, amount int64, level int) error
	ListByReferrer(ctx context.Context, uid string) ([]model.Account, error)
}

type TaskRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	ListActive(ctx context.Context) ([]model.Task, error)
}

type CompletionRepository interface {
	FindByKey(ctx context.Context, uid string, taskID uint64) (*model.TaskCompletion, error)
	Create(ctx context.Context, c *model.TaskCompletion) error
	// StartIfAvailable flips available -> in_progress. Returns the number of
	// rows changed; 0 means the record was missing or not available.
	StartIfAvailable(ctx context.Context, uid string, taskID uint64, at time.Time) (int64, error)
	// CompleteIfInProgress flips in_progress -> completed and stamps
	// completedAt. 0 rows changed means the precondition did not hold, which
	// is how double settlement is rejected.
	CompleteIfInProgress(ctx context.Context, uid string, taskID uint64, at time.Time) (int64, error)
	// ResetToAvailable clears completedAt/startedAt and reopens the task.
	ResetToAvailable(ctx context.Context, uid string, taskID uint64) (int64, error)
	ListByAccount(ctx context.Context, uid string) ([]model.TaskCompletion, error)
	// SumCompletedPoints totals current task point values over this account's
	// completed records. Completions whose task row no longer exists
	// contribute zero.
	SumCompletedPoints(ctx context.Context, uid string) (int64, error)
}

// Repos bundles the repositories bound to one storage context. Inside
// TxManager.InTransaction every repository operates on the same transaction.
type Repos struct {
	Accounts    AccountRepository
	Tasks       TaskRepository
	Completions CompletionRepository
}

// TxManager runs fn against a transaction-bound Repos. If fn returns an
// error, or the commit fails, none of fn's writes are visible.
type TxManager interface {
	InTransaction(ctx context.Context, fn func(r Repos) error) error
}

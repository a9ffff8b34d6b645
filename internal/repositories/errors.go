package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrTokenNotFound   = errors.New("refresh token not found")
	ErrProfileExists   = errors.New("profile already exists")

	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateBid surfaces the (task_id, user_id) uniqueness constraint.
	ErrDuplicateBid = errors.New("bid already exists for this task and writer")

	// ErrTaskConflict means a conditional update lost a race: the task state
	// changed between read and write.
	ErrTaskConflict = errors.New("task state changed concurrently")

	// ErrPermissionDenied is a store authorization-policy rejection, kept
	// distinct from data errors because the remediation differs.
	ErrPermissionDenied = errors.New("store permission denied")

	// ErrStoreUnavailable is a transient connectivity failure.
	ErrStoreUnavailable = errors.New("store temporarily unavailable")

	errDuplicateKey = errors.New("duplicate key")
)

// classify maps raw gorm/postgres errors onto the repository error kinds.
// notFound names the entity-specific miss to return.
func classify(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %v", errDuplicateKey, err)
		case pgErr.Code == pgerrcode.InsufficientPrivilege:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		case pgerrcode.IsConnectionException(pgErr.Code):
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return err
}

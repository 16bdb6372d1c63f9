package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"eventers-ticketing/failure"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers.
const (
	erDupEntry         = 1062
	erLockWaitTimeout  = 1205
	erLockDeadlock     = 1213
	erRowIsReferenced2 = 1451
)

var (
	errNoTx       = errors.New("no transaction in context")
	errShortWrite = errors.New("short write")
)

// storeError tags a driver error with a failure kind while keeping the
// driver error reachable through Unwrap.
type storeError struct {
	kind error
	err  error
}

func (e *storeError) Error() string {
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *storeError) Unwrap() error {
	return e.err
}

func (e *storeError) Is(target error) bool {
	return target == e.kind
}

func wrap(kind, err error) error {
	return &storeError{kind: kind, err: err}
}

// classify maps errors returned before COMMIT. Nothing has been committed
// at that point, so connection loss, deadlocks and lock-wait timeouts are
// all safe to retry.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrap(failure.ErrStoreFailure, err)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return wrap(failure.ErrBusy, err)
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erLockDeadlock, erLockWaitTimeout:
			return wrap(failure.ErrBusy, err)
		case erDupEntry, erRowIsReferenced2:
			return wrap(failure.ErrConflict, err)
		}
	}
	return wrap(failure.ErrStoreFailure, err)
}

// classifyCommit maps errors returned by COMMIT. A dropped connection there
// leaves the outcome unknown, so it is never reported as retryable.
func classifyCommit(err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return wrap(failure.ErrStoreFailure, err)
	}
	return classify(err)
}

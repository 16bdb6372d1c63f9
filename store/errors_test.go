package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"eventers-ticketing/failure"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadlock", &mysql.MySQLError{Number: erLockDeadlock}, failure.ErrBusy},
		{"lock wait timeout", &mysql.MySQLError{Number: erLockWaitTimeout}, failure.ErrBusy},
		{"duplicate", &mysql.MySQLError{Number: erDupEntry}, failure.ErrConflict},
		{"referenced row", &mysql.MySQLError{Number: erRowIsReferenced2}, failure.ErrConflict},
		{"unknown table", &mysql.MySQLError{Number: 1146}, failure.ErrStoreFailure},
		{"bad conn", driver.ErrBadConn, failure.ErrBusy},
		{"invalid conn", fmt.Errorf("read: %w", mysql.ErrInvalidConn), failure.ErrBusy},
		{"canceled", context.Canceled, failure.ErrStoreFailure},
		{"deadline", context.DeadlineExceeded, failure.ErrStoreFailure},
		{"other", errors.New("syntax error"), failure.ErrStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.want, failure.Kind(got))
			assert.True(t, errors.Is(got, tt.err), "original error stays in the chain")
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify(nil))
}

func TestClassifyCommit(t *testing.T) {
	assert.Equal(t, failure.ErrStoreFailure, failure.Kind(classifyCommit(driver.ErrBadConn)))
	assert.Equal(t, failure.ErrStoreFailure, failure.Kind(classifyCommit(mysql.ErrInvalidConn)))
	assert.Equal(t, failure.ErrBusy, failure.Kind(classifyCommit(&mysql.MySQLError{Number: erLockDeadlock})))
}

package context

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextCarriesCorrelationID(t *testing.T) {
	ctx := NewContext("00000000.00000000")
	assert.Equal(t, "00000000.00000000", GetContextValue(ctx, ContextKeyCorrelationID))
	assert.Equal(t, "", GetContextValue(context.Background(), ContextKeyCorrelationID))
}

func TestNewContextWithTimeOutExpires(t *testing.T) {
	ctx, cancel := NewContextWithTimeOut(NewContext("abc"), 10*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, time.Second)

	<-ctx.Done()
	assert.Equal(t, context.DeadlineExceeded, ctx.Err())
	assert.Equal(t, "abc", GetContextValue(ctx, ContextKeyCorrelationID))
}

func TestCaller(t *testing.T) {
	_, ok := GetCaller(context.Background())
	assert.False(t, ok)

	caller, ok := GetCaller(SetCaller(context.Background(), Caller{UserID: 42, Role: "buyer"}))
	require.True(t, ok)
	assert.Equal(t, Caller{UserID: 42, Role: "buyer"}, caller)
}

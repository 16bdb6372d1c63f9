package user

import (
	"context"
	"errors"
	"eventers-ticketing/auth"
	"eventers-ticketing/clock"
	c "eventers-ticketing/context"
	"eventers-ticketing/failure"
	"eventers-ticketing/model"
	"eventers-ticketing/store/storetest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T) (*User, *storetest.Memory, *auth.Tokens) {
	t.Helper()
	mem := storetest.NewMemory()
	tokens := auth.NewTokens("test-secret", time.Hour, clock.NewSystem())
	u := NewUser(mem, tokens, clock.NewFixed(now))
	u.cost = bcrypt.MinCost
	return u, mem, tokens
}

func TestSignupIssuesToken(t *testing.T) {
	u, mem, tokens := newUser(t)
	ctx := context.Background()

	a, err := u.Signup(ctx, model.SignupRequest{Email: " Asha@Example.com ", Password: "correct horse", Role: model.RoleOrganizer})
	require.NoError(t, err)
	assert.Equal(t, signupMessage, a.Message)

	caller, err := tokens.Verify(a.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOrganizer, caller.Role)

	stored, err := mem.UserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, stored.UserID)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.Equal(t, now, stored.CreatedDate)
}

func TestSignupDuplicateEmail(t *testing.T) {
	u, _, _ := newUser(t)
	ctx := context.Background()
	req := model.SignupRequest{Email: "asha@example.com", Password: "correct horse", Role: model.RoleBuyer}

	_, err := u.Signup(ctx, req)
	require.NoError(t, err)

	req.Email = "ASHA@example.com"
	_, err = u.Signup(ctx, req)
	assert.True(t, errors.Is(err, failure.ErrConflict))
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.SignupRequest
	}{
		{"bad email", model.SignupRequest{Email: "asha", Password: "correct horse", Role: model.RoleBuyer}},
		{"short password", model.SignupRequest{Email: "asha@example.com", Password: "short", Role: model.RoleBuyer}},
		{"unknown role", model.SignupRequest{Email: "asha@example.com", Password: "correct horse", Role: "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, mem, _ := newUser(t)
			_, err := u.Signup(context.Background(), tt.req)
			assert.True(t, errors.Is(err, failure.ErrInvalidRequest))
			assert.Equal(t, 0, mem.Calls("CreateUser"))
		})
	}
}

func TestLogin(t *testing.T) {
	u, _, tokens := newUser(t)
	ctx := context.Background()

	_, err := u.Signup(ctx, model.SignupRequest{Email: "asha@example.com", Password: "correct horse", Role: model.RoleBuyer})
	require.NoError(t, err)

	a, err := u.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, loginMessage, a.Message)

	caller, err := tokens.Verify(a.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleBuyer, caller.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	u, _, _ := newUser(t)
	ctx := context.Background()

	_, err := u.Signup(ctx, model.SignupRequest{Email: "asha@example.com", Password: "correct horse", Role: model.RoleBuyer})
	require.NoError(t, err)

	_, err = u.Login(ctx, model.LoginRequest{Email: "asha@example.com", Password: "battery staple"})
	assert.True(t, errors.Is(err, failure.ErrUnauthorized))

	_, err = u.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.True(t, errors.Is(err, failure.ErrUnauthorized))
}

func TestTickets(t *testing.T) {
	u, mem, _ := newUser(t)
	ctx := context.Background()
	buyer := c.Caller{UserID: 42, Role: model.RoleBuyer}

	id := mem.SeedEvent(model.Event{OrganizerID: 7, Title: "Rooftop Sessions", Capacity: 5})
	err := mem.WithTx(ctx, func(ctx context.Context) error {
		if _, err := mem.GetEventForUpdate(ctx, id); err != nil {
			return err
		}
		return mem.CreateTickets(ctx, []model.Ticket{
			{TicketID: "a", UserID: buyer.UserID, EventID: id},
			{TicketID: "b", UserID: 99, EventID: id},
		})
	})
	require.NoError(t, err)

	tickets, err := u.Tickets(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "a", tickets[0].TicketID)

	_, err = u.Tickets(ctx, c.Caller{UserID: 7, Role: model.RoleOrganizer})
	assert.True(t, errors.Is(err, failure.ErrForbidden))

	_, err = u.Tickets(ctx, c.Caller{})
	assert.True(t, errors.Is(err, failure.ErrUnauthorized))
}

// Package user signs buyers and organizers up, logs them in, and lists what
// they own.
package user

import (
	"context"
	"errors"
	"eventers-ticketing/clock"
	c "eventers-ticketing/context"
	"eventers-ticketing/failure"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	signupMessage = "signup successful"
	loginMessage  = "login successful"
	minPassword   = 8
	maxPassword   = 72 // bcrypt ignores anything longer
)

type Repository interface {
	CreateUser(ctx context.Context, u model.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	TicketsByUser(ctx context.Context, userID int64) ([]model.Ticket, error)
}

type TokenIssuer interface {
	Issue(userID int64, role string) (string, error)
}

func NewUser(repo Repository, tokens TokenIssuer, clk clock.Clock) *User {
	return &User{repo: repo, tokens: tokens, clock: clk, cost: bcrypt.DefaultCost}
}

type User struct {
	repo   Repository
	tokens TokenIssuer
	clock  clock.Clock
	cost   int
}

// Signup creates the account and returns a token for it. A taken email is
// failure.ErrConflict.
func (u *User) Signup(ctx context.Context, req model.SignupRequest) (model.Auth, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return model.Auth{}, failure.Invalid("signup: invalid email address")
	}
	if len(req.Password) < minPassword || len(req.Password) > maxPassword {
		return model.Auth{}, failure.Invalid("signup: password must be %d to %d characters", minPassword, maxPassword)
	}
	if !model.ValidRole(req.Role) {
		return model.Auth{}, failure.Invalid("signup: unknown role %q", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.cost)
	if err != nil {
		return model.Auth{}, fmt.Errorf("signup: unable to hash password: %w", err)
	}

	id, err := u.repo.CreateUser(ctx, model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedDate:  u.clock.Now(),
	})
	if err != nil {
		return model.Auth{}, fmt.Errorf("signup: unable to create user: %w", err)
	}

	token, err := u.tokens.Issue(id, req.Role)
	if err != nil {
		return model.Auth{}, fmt.Errorf("signup: %w", err)
	}

	logger.Infof(ctx, "signup: created %s %d", req.Role, id)
	return model.Auth{Token: token, Message: signupMessage}, nil
}

// Login exchanges credentials for a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (u *User) Login(ctx context.Context, req model.LoginRequest) (model.Auth, error) {
	usr, err := u.repo.UserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return model.Auth{}, fmt.Errorf("login: wrong email or password: %w", failure.ErrUnauthorized)
		}
		return model.Auth{}, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(req.Password)); err != nil {
		return model.Auth{}, fmt.Errorf("login: wrong email or password: %w", failure.ErrUnauthorized)
	}

	token, err := u.tokens.Issue(usr.UserID, usr.Role)
	if err != nil {
		return model.Auth{}, fmt.Errorf("login: %w", err)
	}
	return model.Auth{Token: token, Message: loginMessage}, nil
}

// Tickets returns every ticket held by the caller.
func (u *User) Tickets(ctx context.Context, caller c.Caller) ([]model.Ticket, error) {
	if caller.UserID <= 0 {
		return nil, fmt.Errorf("tickets: no caller identity: %w", failure.ErrUnauthorized)
	}
	if caller.Role != model.RoleBuyer {
		return nil, fmt.Errorf("tickets: role %q holds no tickets: %w", caller.Role, failure.ErrForbidden)
	}

	tickets, err := u.repo.TicketsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("tickets: %w", err)
	}
	return tickets, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package model

import (
	"time"
)

const (
	RoleBuyer     = "buyer"
	RoleOrganizer = "organizer"
)

type User struct {
	UserID       int64     `json:"user_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role,omitempty"`
	CreatedDate  time.Time `json:"created_date,omitempty"`
}

func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleOrganizer
}

package domain

import "time"

type Role string

const (
	RoleAdvertiser Role = "ADVERTISER"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) IsValid() bool {
	return r == RoleAdvertiser || r == RoleAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusDeleted   UserStatus = "DELETED"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusDeleted:
		return true
	}
	return false
}

// User is a registered identity.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
}

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// Actor is the identity performing a request, as asserted by a verified credential.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func (a Actor) Authenticated() bool { return a.UserID != "" }

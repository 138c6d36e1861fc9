package identity

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateEmail and ErrDuplicateUsername are returned by the store when
	// a new account collides with an existing one.
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a clinician account. Every patient, medication and treatment
// record is owned by exactly one user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser holds the fields supplied when an account is created.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Name         string
}

func (u *User) GetID() int64 { return u.ID }

func (u *User) SetID(id int64) { u.ID = id }

// GetOwnerID returns the user's own id; accounts are not tenant scoped.
func (u *User) GetOwnerID() int64 { return u.ID }

func (u *User) SetCreated(t time.Time) { u.CreatedAt = t }

func (u *User) Clone() *User {
	c := *u
	return &c
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

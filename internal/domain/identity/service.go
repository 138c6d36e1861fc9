package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/internal/platform/auth"
)

const minPasswordLength = 6

type Service struct {
	users  Repository
	hasher auth.PasswordHasher
}

func NewService(users Repository, hasher auth.PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	var verr domain.ValidationError
	if in.Username == "" {
		verr.Add("username", "is required")
	}
	if in.Email == "" {
		verr.Add("email", "is required")
	} else if !domain.ValidEmail(in.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if in.Name == "" {
		verr.Add("name", "is required")
	}
	if len(in.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
	})
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateUsername) {
		return nil, fmt.Errorf("%w: %v", ErrUserExists, err)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password both
// yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*User, error) {
	var verr domain.ValidationError
	if !domain.ValidEmail(strings.TrimSpace(in.Email)) {
		verr.Add("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	u, ok := s.users.GetUserByEmail(strings.TrimSpace(in.Email))
	if !ok || !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, bool) {
	return s.users.GetUser(id)
}

package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/internal/platform/auth"
)

// -- Mock Repository --

type mockUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*User), nextID: 1}
}

func (m *mockUserRepo) CreateUser(nu NewUser) (*User, error) {
	for _, u := range m.users {
		if u.Email == nu.Email {
			return nil, ErrDuplicateEmail
		}
		if u.Username == nu.Username {
			return nil, ErrDuplicateUsername
		}
	}
	u := &User{
		ID:           m.nextID,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Name:         nu.Name,
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.users[u.ID] = u
	return u.Clone(), nil
}

func (m *mockUserRepo) GetUser(id int64) (*User, bool) {
	u, ok := m.users[id]
	if !ok {
		return nil, false
	}
	return u.Clone(), true
}

func (m *mockUserRepo) GetUserByEmail(email string) (*User, bool) {
	for _, u := range m.users {
		if u.Email == email {
			return u.Clone(), true
		}
	}
	return nil, false
}

func (m *mockUserRepo) GetUserByUsername(username string) (*User, bool) {
	for _, u := range m.users {
		if u.Username == username {
			return u.Clone(), true
		}
	}
	return nil, false
}

func newTestService() *Service {
	return NewService(newMockUserRepo(), auth.BcryptHasher{Cost: 4})
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username: "dr_house",
		Email:    "house@example.com",
		Password: "vicodin",
		Name:     "Gregory House",
	}
}

func TestService_Register(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected an id")
	}
	if u.PasswordHash == "" || u.PasswordHash == "vicodin" {
		t.Error("expected a bcrypt hash, not the raw password")
	}
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "  " }, "username"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"missing name", func(in *RegisterInput) { in.Name = "" }, "name"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			in := validRegistration()
			tt.edit(&in)

			_, err := svc.Register(context.Background(), in)
			ve, ok := domain.IsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Fields[0].Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Fields[0].Field)
			}
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	dupEmail := validRegistration()
	dupEmail.Username = "someone_else"
	if _, err := svc.Register(context.Background(), dupEmail); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists for duplicate email, got %v", err)
	}

	dupName := validRegistration()
	dupName.Email = "other@example.com"
	_, err := svc.Register(context.Background(), dupName)
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists for duplicate username, got %v", err)
	}
	if !strings.Contains(err.Error(), "username") {
		t.Errorf("expected the cause in the message, got %q", err.Error())
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := newTestService()
	reg, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, err := svc.Authenticate(context.Background(), LoginInput{Email: "house@example.com", Password: "vicodin"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != reg.ID {
		t.Errorf("expected user %d, got %d", reg.ID, u.ID)
	}

	if _, err := svc.Authenticate(context.Background(), LoginInput{Email: "house@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), LoginInput{Email: "nobody@example.com", Password: "vicodin"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), LoginInput{Email: "bad", Password: "x"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestService_Get(t *testing.T) {
	svc := newTestService()
	reg, _ := svc.Register(context.Background(), validRegistration())

	if _, ok := svc.Get(context.Background(), reg.ID); !ok {
		t.Error("expected registered user")
	}
	if _, ok := svc.Get(context.Background(), 999); ok {
		t.Error("expected unknown user to be absent")
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zenithcode/zenith-api/internal/dto"
	"github.com/zenithcode/zenith-api/internal/models"
)

type stubUserRepo struct {
	byEmail map[string]models.User
	created *models.User
	err     error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.err != nil {
		return s.err
	}
	if user.ID == 0 {
		user.ID = 1
	}
	clone := *user
	s.created = &clone
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	if s.created != nil && s.created.ID == id {
		return *s.created, nil
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func newAuthTestService(users *stubUserRepo) AuthService {
	return NewAuthService(users, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), "test-secret", time.Hour)
}

func TestAuthServiceRegisterIssuesToken(t *testing.T) {
	users := &stubUserRepo{byEmail: map[string]models.User{}}
	svc := newAuthTestService(users)

	auth, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.COM",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)
	require.Equal(t, models.RoleStudent, auth.User.Role)
	require.Equal(t, "ada@example.com", users.created.Email)
	require.NotEqual(t, "correct-horse", users.created.PasswordHash)

	parsed, err := jwt.Parse(auth.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleStudent, claims["role"])
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	users := &stubUserRepo{byEmail: map[string]models.User{
		"ada@example.com": {ID: 3, Email: "ada@example.com"},
	}}
	svc := newAuthTestService(users)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceLoginChecksPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &stubUserRepo{byEmail: map[string]models.User{
		"ada@example.com": {ID: 3, Email: "ada@example.com", PasswordHash: string(hash), Role: models.RoleStudent, IsActive: true},
	}}
	svc := newAuthTestService(users)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	auth, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, uint(3), auth.User.ID)
}

func TestAuthServiceLoginRejectsUnknownEmail(t *testing.T) {
	svc := newAuthTestService(&stubUserRepo{byEmail: map[string]models.User{}})

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsDisabledAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &stubUserRepo{byEmail: map[string]models.User{
		"ada@example.com": {ID: 3, Email: "ada@example.com", PasswordHash: string(hash), IsActive: false},
	}}
	svc := newAuthTestService(users)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrAccountDisabled)
}

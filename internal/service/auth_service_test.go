package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(users, testJWTSecret, GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
	}, validate, testLogger())
	return svc, users
}

func TestRegisterIssuesTokenAndDefaults(t *testing.T) {
	svc, users := newAuthFixture(t)

	result, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Sara",
		Email:    "Sara@Example.com",
		Password: "hunter22",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "student", result.User.Role)
	require.Equal(t, "https://randomuser.me/api/portraits/lego/1.jpg", result.User.Avatar)

	token, err := jwt.Parse(result.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "student", claims["role"])

	// Email is normalized and the password never stored in the clear.
	stored, err := users.GetByEmail(context.Background(), "sara@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", stored.Password)
	require.NotEmpty(t, stored.Password)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	payload := dto.RegisterRequest{Name: "Sara", Email: "sara@example.com", Password: "hunter22", Role: models.RoleMentor}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginChecksCredentials(t *testing.T) {
	svc, users := newAuthFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Sara", Email: "sara@example.com", Password: "hunter22", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), dto.LoginRequest{Email: "sara@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "sara@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Accounts created through Google carry no local credential.
	googleID := "google-123"
	oauthOnly := models.User{Name: "Nora", Email: "nora@example.com", GoogleID: &googleID, Role: models.RoleStudent}
	require.NoError(t, users.Create(context.Background(), &oauthOnly))

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nora@example.com", Password: "anything"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGoogleAuthURLCarriesState(t *testing.T) {
	svc, _ := newAuthFixture(t)

	url := svc.GoogleAuthURL("state-token")
	require.Contains(t, url, "client-id")
	require.Contains(t, url, "state=state-token")
	require.Contains(t, url, "accounts.google.com")
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/TinsuJembere/shelearns-api/internal/dto"
	"github.com/TinsuJembere/shelearns-api/internal/models"
	"github.com/TinsuJembere/shelearns-api/internal/repository"
)

const (
	defaultAvatarURL  = "https://randomuser.me/api/portraits/lego/1.jpg"
	authTokenLifetime = 7 * 24 * time.Hour
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

var (
	// ErrEmailTaken indicates the signup email is already registered.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// GoogleOAuthConfig carries the Google sign-in client settings.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// AuthService registers and authenticates accounts, locally or via Google.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	GoogleAuthURL(state string) string
	GoogleExchange(ctx context.Context, code string) (dto.AuthResponse, error)
}

type authService struct {
	users       repository.UserRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	jwtSecret   []byte
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	now         func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, jwtSecret string, googleCfg GoogleOAuthConfig, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		jwtSecret: []byte(jwtSecret),
		oauthConfig: &oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: string(hashed),
		Role:     payload.Role,
		Avatar:   defaultAvatarURL,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account registered")

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if user.Password == "" {
		// OAuth-only account; no local credential to compare against.
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GoogleAuthURL returns the consent-screen URL the client should redirect to.
func (s *authService) GoogleAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// GoogleExchange trades the callback code for a profile and resolves it to an
// account: match by Google id first, then link by email, otherwise create a
// new student account.
func (s *authService) GoogleExchange(ctx context.Context, code string) (dto.AuthResponse, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("google code exchange failed: %w", err)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if info.Email == "" || info.Sub == "" {
		return dto.AuthResponse{}, fmt.Errorf("google userinfo response incomplete")
	}

	if user, err := s.users.GetByGoogleID(ctx, info.Sub); err == nil {
		return s.issue(user)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(info.Email)
	if user, err := s.users.GetByEmail(ctx, email); err == nil {
		googleID := info.Sub
		user.GoogleID = &googleID
		if user.Avatar == "" {
			user.Avatar = info.Picture
		}
		if err := s.users.Update(ctx, &user); err != nil {
			return dto.AuthResponse{}, err
		}
		s.logger.Info().Uint("user_id", user.ID).Msg("google account linked")
		return s.issue(user)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	googleID := info.Sub
	user := models.User{
		Name:     info.Name,
		Email:    email,
		GoogleID: &googleID,
		Role:     models.RoleStudent,
		Avatar:   info.Picture,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("account created via google sign-in")

	return s.issue(user)
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	token.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, fmt.Errorf("failed to decode google userinfo: %w", err)
	}
	return info, nil
}

func (s *authService) issue(user models.User) (dto.AuthResponse, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(authTokenLifetime).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, User: dto.NewAuthUser(user)}, nil
}

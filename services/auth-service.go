package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
	"github.com/HKazz/project-3-back-end/repositories"
	"github.com/HKazz/project-3-back-end/utils"
)

var errBadCredentials = fmt.Errorf("invalid username or password: %w", models.ErrUnauthorized)

type AuthService struct {
	users      repositories.UserRepository
	jwt        *JWTService
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users repositories.UserRepository, jwtService *JWTService, bcryptCost int) *AuthService {
	return &AuthService{users: users, jwt: jwtService, bcryptCost: bcryptCost, now: time.Now}
}

// Register stores a new user under the normalised username with a salted password hash.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("username and password are required: %w", models.ErrInvalidInput)
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, fmt.Errorf("password exceeds %d bytes: %w", utils.MaxPasswordBytes, models.ErrInvalidInput)
	}

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("user with username %q already exists: %w", username, models.ErrConflict)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		Username:     username,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: user %s registered", user.Username)
	return user, nil
}

// Login checks the credentials and issues a session token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	username = models.NormalizeUsername(username)
	if username == "" || password == "" {
		return "", nil, errBadCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: unknown user %s", username)
		return "", nil, errBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	ok, err := utils.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: wrong password for user %s", username)
		return "", nil, errBadCredentials
	}

	token, err := s.jwt.GenerateToken(user.Identity())
	if err != nil {
		return "", nil, err
	}
	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: user %s logged in", user.Username)
	return token, user, nil
}

func (s *AuthService) Authenticate(_ context.Context, token string) (models.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return models.Identity{}, fmt.Errorf("missing token: %w", models.ErrUnauthorized)
	}
	return s.jwt.ParseToken(token)
}

package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/flightdeck-io/flightdeck/internal/models"
	"github.com/flightdeck-io/flightdeck/pkg/crypto"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user service: user not found")
	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("user service: invalid credentials")
	// ErrUserDisabled indicates the account exists but is deactivated.
	ErrUserDisabled = errors.New("user service: user is disabled")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("user service: username already taken")
)

// UserService manages user accounts and credential checks.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a user service once a database handle is supplied.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// CreateUserInput captures the fields of a new account.
type CreateUserInput struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
}

// Create registers a new active user with a bcrypt password hash.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensuredContext(ctx)

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, errors.New("user service: username and password are required")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx = ensuredContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies a username/password pair and returns the account.
// Unknown users and wrong passwords are indistinguishable to callers.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx = ensuredContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", strings.TrimSpace(username)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}
	return &user, nil
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Typed errors surfaced by the account service.
var (
	ErrMissingField       = errors.New("username and password must be provided")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service manages user registration and authentication.
type Service struct {
	db           *gorm.DB
	logger       *zap.Logger
	startingCash decimal.Decimal
}

// NewService creates a new account service.
func NewService(db *gorm.DB, cfg *config.Account, logger *zap.Logger) *Service {
	return &Service{
		db:           db,
		logger:       logger,
		startingCash: decimal.NewFromFloat(cfg.StartingCash),
	}
}

// Register creates a new user with a bcrypt-hashed password and the
// configured starting cash. Usernames are case-sensitive and unique.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingField
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.startingCash,
	}

	// Check-then-insert inside one transaction; the unique index on
	// username backstops a concurrent registration of the same name.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return fmt.Errorf("could not check username: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Registered user", zap.Uint("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Authenticate verifies a username/password pair and returns the user.
// Unknown usernames and wrong passwords are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UsernameAvailable reports whether a username can still be registered.
// Empty names are never available.
func (s *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if len(strings.TrimSpace(username)) < 1 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("could not check username: %w", err)
	}
	return count == 0, nil
}

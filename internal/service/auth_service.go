package service

import (
	"crypto/subtle"
	"errors"
	"regexp"
	"time"

	"github.com/jasobih/gigboard/internal/apperrors"
	"github.com/jasobih/gigboard/internal/models"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/utils"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUsernameAlreadyExists = errors.New("username already registered")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("incorrect username or password")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// AuthService is the identity gate: it issues and validates user
// bearer tokens and checks the out-of-band admin key. The admin key
// is a separate, weaker trust channel by design; it is compared in
// constant time and rotated independently of the JWT secret.
type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	adminAPIKey   string
	environment   string
}

func NewAuthService(
	userRepo *repository.UserRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
	adminAPIKey string,
	environment string,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		adminAPIKey:   adminAPIKey,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
	)

	if err := s.validateRegisterInput(username, email, password); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	existing, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameAlreadyExists
	}

	existing, err = s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to check email existence", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleMember,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
	)

	return user, nil
}

// Login verifies credentials and returns the user with a fresh bearer
// token.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("username", username),
		)
		return nil, "", ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("username", username),
		)
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

// Authenticate resolves a bearer token to its claims.
func (s *AuthService) Authenticate(tokenString string) (*utils.Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrMissingToken
	}

	claims, err := utils.ValidateToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// AuthenticateAdmin checks the shared admin secret in constant time.
func (s *AuthService) AuthenticateAdmin(apiKey string) error {
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.adminAPIKey)) != 1 {
		logger.Log.Warn("Admin authentication failed")
		return apperrors.ErrInvalidAdminKey
	}
	return nil
}

// GetUser returns a user profile by id.
func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Log.Error("Failed to fetch user",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

// UpdateBio stores a new bio for the calling user. Only the owner can
// reach this path; the handler passes the authenticated identity.
func (s *AuthService) UpdateBio(userID uuid.UUID, bio string) (*models.User, error) {
	if len(bio) > 1000 {
		return nil, apperrors.Invalid("bio", "must be at most 1000 characters")
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}

	if err := s.userRepo.UpdateBio(userID, bio); err != nil {
		logger.Log.Error("Failed to update bio",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	user.Bio = bio
	logger.Log.Info("User bio updated", zap.String("user_id", userID.String()))
	return user, nil
}

func (s *AuthService) validateRegisterInput(username, email, password string) error {
	if len(username) < 3 {
		return apperrors.Invalid("username", "must be at least 3 characters")
	}
	if len(username) > 50 {
		return apperrors.Invalid("username", "must be at most 50 characters")
	}

	if !emailRegex.MatchString(email) {
		return apperrors.Invalid("email", "invalid format")
	}
	if len(email) > 100 {
		return apperrors.Invalid("email", "too long")
	}

	if len(password) < 8 {
		return apperrors.Invalid("password", "must be at least 8 characters")
	}
	if len(password) > 128 {
		return apperrors.Invalid("password", "too long")
	}

	return nil
}

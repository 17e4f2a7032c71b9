package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/database/models"
	"github.com/notesapp/notes-api/internal/database/repository"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, email, fullName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *AccessToken, error)
	// RefreshToken issues a new token for the identity in tokenString.
	// The presented token is not revoked and stays valid until it expires.
	RefreshToken(ctx context.Context, tokenString string) (*AccessToken, error)
	Authenticate(tokenString string) (auth.Identity, error)
}

// AccessToken is a signed bearer token and its lifetime in seconds
type AccessToken struct {
	Token     string
	ExpiresIn int64
}

type authService struct {
	userRepo repository.UserRepository
	tokens   auth.TokenService
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	userRepo repository.UserRepository,
	tokens auth.TokenService,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, email, fullName, password string) (*models.User, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, err
	}

	if existingUser != nil {
		s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
		return nil, ErrEmailAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, repository.ErrEmailTaken) {
			s.logger.Warn("⚠️ [AuthService] Email already registered", "email", email)
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [AuthService] Failed to create user", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *AccessToken, error) {
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("⚠️ [AuthService] User not found", "email", email)
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid password", "email", email)
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return nil, nil, err
	}

	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) RefreshToken(ctx context.Context, tokenString string) (*AccessToken, error) {
	s.logger.Info("🔄 [AuthService] Token refresh attempt")

	identity, err := s.Authenticate(tokenString)
	if err != nil {
		s.logger.Warn("⚠️ [AuthService] Invalid token presented for refresh", "error", err)
		return nil, ErrInvalidToken
	}
	if identity.Email == "" {
		s.logger.Warn("⚠️ [AuthService] Token without email presented for refresh", "user_id", identity.UserID)
		return nil, ErrInvalidToken
	}

	token, err := s.issue(identity.UserID, identity.Email)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate new token", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [AuthService] Token refreshed successfully", "user_id", identity.UserID)
	return token, nil
}

// Authenticate validates a bearer token and returns the identity it carries.
// A token whose user id claim is missing or unparseable is rejected.
func (s *authService) Authenticate(tokenString string) (auth.Identity, error) {
	identity, err := s.tokens.Validate(tokenString)
	if err != nil {
		return auth.Identity{}, ErrInvalidToken
	}
	if !identity.IsAuthenticated() {
		return auth.Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

func (s *authService) issue(userID uint, email string) (*AccessToken, error) {
	token, err := s.tokens.Issue(userID, email)
	if err != nil {
		return nil, err
	}

	return &AccessToken{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

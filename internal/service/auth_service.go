package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
)

// AuthService handles user accounts and login
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
	cfg      *config.AuthConfig
	logger   *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, tokens *auth.TokenManager, cfg *config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StorageError{Op: "auth.Login", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}

// Register creates a new staff account
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleTechnician
	}
	if !role.IsValid() {
		return nil, ErrInvalidInput
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StorageError{Op: "auth.Register", Err: err}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:       req.Username,
		FullName:       req.FullName,
		HashedPassword: string(hashed),
		Role:           role,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, &StorageError{Op: "auth.Register", Err: err}
	}

	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return user, nil
}

// ChangePassword verifies the current password and sets a new one
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req *domain.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return &StorageError{Op: "auth.ChangePassword", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.HashedPassword = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return &StorageError{Op: "auth.ChangePassword", Err: err}
	}
	return nil
}

// GetByID returns a user account
func (s *AuthService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &StorageError{Op: "auth.GetByID", Err: err}
	}
	return user, nil
}

// ListUsers returns all staff accounts
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "auth.ListUsers", Err: err}
	}
	return users, nil
}

// EnsureBootstrapAdmin creates the initial admin account if no users
// exist yet. Runs at startup.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return &StorageError{Op: "auth.EnsureBootstrapAdmin", Err: err}
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.cfg.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Username:       "admin",
		FullName:       "Administrator",
		HashedPassword: string(hashed),
		Role:           domain.RoleAdmin,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return &StorageError{Op: "auth.EnsureBootstrapAdmin", Err: err}
	}

	s.logger.Warn("bootstrap admin account created, change its password",
		zap.String("username", admin.Username))
	return nil
}

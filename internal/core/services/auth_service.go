package services

import (
	"context"
	"errors"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/adapters/persistence/repositories"
	"gymcore/internal/config"
	"gymcore/internal/core/domain"
	"gymcore/internal/pkg/jwt"
	"gymcore/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles staff authentication
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// RegisterInput represents register input
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty"`
}

// Register creates a new staff user
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrInvalidPassword
	}

	if exists, err := s.userRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrUserAlreadyExists
	}
	if exists, err := s.userRepo.ExistsByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role != models.RoleAdmin {
		role = models.RoleStaff
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     role,
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput represents login output
type LoginOutput struct {
	AccessToken string               `json:"access_token"`
	User        *models.UserResponse `json:"user"`
}

// Login authenticates a user and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		AccessToken: token,
		User:        user.ToResponse(),
	}, nil
}

// GetProfile returns the authenticated user's profile
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

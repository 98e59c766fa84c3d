package users

import (
	"context"
	"errors"
	"strings"

	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/pkg/constants"
	"renewmart-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail    = errors.New("Invalid email format")
	ErrInvalidPassword = errors.New("Password must be at least 8 characters with a letter, a number and a special character")
	ErrInvalidFullname = errors.New("Fullname may only contain letters, spaces, hyphens and apostrophes")
	ErrInvalidRole     = errors.New("Invalid role")
	ErrEmailTaken      = errors.New("Email already registered")
	ErrUserNotFound    = errors.New("User not found")
)

// Service handles user registration and role administration.
type Service struct {
	DB *gorm.DB
}

type CreateUserInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if !validation.IsValidFullname(in.Fullname) {
		return nil, ErrInvalidFullname
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	role := in.Role
	if role == "" {
		role = constants.Landowner
	}
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Fullname:     in.Fullname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateRole changes a user's role (admin-gated at the route level).
func (s *Service) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error) {
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.ViewUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	return user, nil
}

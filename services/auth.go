package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/renelwllms/erepair1-sub001/models"
	"gorm.io/gorm"
)

// AuthService authenticates users and creates accounts.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Login checks the credentials and stamps the last login time. Unknown emails,
// wrong passwords and inactive accounts all fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	err := db.First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, internalError(err, "failed to load user")
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, newError(KindUnauthenticated, "invalid credentials")
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login", &now).Error; err != nil {
		return nil, internalError(err, "failed to update last login")
	}
	user.LastLogin = &now
	return &user, nil
}

// Me returns the actor's own account.
func (s *AuthService) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthenticated, "account no longer exists")
		}
		return nil, internalError(err, "failed to load user")
	}
	return &user, nil
}

type CreateUserInput struct {
	Email      string      `json:"email" binding:"required,email"`
	Name       string      `json:"name" binding:"required"`
	Phone      string      `json:"phone" binding:"omitempty,phone"`
	Password   string      `json:"password" binding:"required,min=8"`
	Role       models.Role `json:"role" binding:"required"`
	CustomerID *uuid.UUID  `json:"customerId"`
}

// Register creates an account on behalf of an admin.
func (s *AuthService) Register(ctx context.Context, actor *models.Actor, in CreateUserInput) (*models.User, error) {
	if err := authorize(actor, models.CapManageUsers); err != nil {
		return nil, err
	}
	return s.CreateUser(ctx, in)
}

// CreateUser creates an account without an authorization check. It backs the
// bootstrap command and Register.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" {
		return nil, validationError("email", "is required")
	}
	if len(in.Password) < 8 {
		return nil, validationError("password", "must be at least 8 characters")
	}
	if !in.Role.Valid() {
		return nil, validationError("role", "must be one of ADMIN, TECHNICIAN, CUSTOMER")
	}
	if in.Role == models.RoleCustomer && in.CustomerID == nil {
		return nil, validationError("customerId", "is required for customer accounts")
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
		return nil, internalError(err, "failed to check email")
	}
	if existing > 0 {
		return nil, validationError("email", "is already registered")
	}

	user := models.User{
		Email:      in.Email,
		Name:       in.Name,
		Phone:      in.Phone,
		Password:   in.Password,
		Role:       in.Role,
		CustomerID: in.CustomerID,
		IsActive:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, internalError(err, "failed to create user")
	}
	return &user, nil
}

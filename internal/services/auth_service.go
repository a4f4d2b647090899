package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"reverse-market/internal/models"
	"reverse-market/internal/repository"
)

const minPasswordLength = 6

// AuthService handles registration and password login
type AuthService struct {
	repo *repository.Repository
	log  *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo *repository.Repository, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, log: log.Named("auth")}
}

// Registration is a new account form
type Registration struct {
	PhoneNumber string
	Password    string
	FirstName   string
	LastName    string
	Email       *string
	DateOfBirth time.Time
	Gender      string
	City        string
	District    string
	Location    *string
	UserType    models.UserType
	StoreName   *string
}

// Register creates a buyer or seller account. Sellers start unapproved and
// must give a store name; buyers never carry store data.
func (s *AuthService) Register(ctx context.Context, in Registration) (*models.User, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	if phone == "" {
		return nil, invalid("phone_number", "required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !in.UserType.IsValid() {
		return nil, invalid("user_type", "must be 1 (buyer) or 2 (seller)")
	}
	if err := validateBasicProfile(ProfileEdit{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		City:        in.City,
		District:    in.District,
		Gender:      in.Gender,
		DateOfBirth: in.DateOfBirth,
	}); err != nil {
		return nil, err
	}
	if in.UserType == models.UserTypeSeller && isBlank(in.StoreName) {
		return nil, ErrStoreNameRequired
	}

	if _, err := s.repo.GetUserByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		PhoneNumber:     phone,
		PasswordHash:    string(hash),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           normalize(in.Email),
		DateOfBirth:     in.DateOfBirth,
		Gender:          in.Gender,
		City:            strings.TrimSpace(in.City),
		District:        strings.TrimSpace(in.District),
		Location:        normalize(in.Location),
		UserType:        in.UserType,
		IsActive:        true,
		IsStoreApproved: in.UserType == models.UserTypeBuyer,
	}
	if in.UserType == models.UserTypeSeller {
		user.StoreName = normalize(in.StoreName)
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("new user registered", zap.Uint("user_id", user.ID), zap.Stringer("type", user.UserType))
	return user, nil
}

// Login checks a phone number and password. Disabled accounts are refused.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*models.User, error) {
	user, err := s.repo.GetUserByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	s.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return user, nil
}

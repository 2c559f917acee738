// Package service provides the account update rules, delegating persistence
// to a UserRepository.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost used for new passwords.
var PasswordHashCost = bcrypt.DefaultCost

// UserRepository defines the persistence operations required by the user
// service.
type UserRepository interface {
	// GetUser returns the user with the given id or models.ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*models.User, error)
	// UpdateUser applies upd and returns the stored user.
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// UpdateRequest is the body of an account update. Empty fields are left
// unchanged. Field order is the order rules are checked in.
type UpdateRequest struct {
	Password       string `json:"password" validate:"omitempty,min=6"`
	Username       string `json:"username" validate:"omitempty,min=7,max=20,nospace,lowercase,alphanum"`
	Email          string `json:"email" validate:"omitempty,email"`
	ProfilePicture string `json:"profilePicture"`
}

// ValidationError is a rejected update with a message for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// messages maps "<Field>.<tag>" to the text reported to the user.
var messages = map[string]string{
	"Password.min":       "Password must be at least 6 characters",
	"Username.min":       "Username must be between 7 and 20 characters",
	"Username.max":       "Username must be between 7 and 20 characters",
	"Username.nospace":   "Username cannot contain spaces",
	"Username.lowercase": "Username must be lowercase",
	"Username.alphanum":  "Username can only contain letters and numbers",
	"Email.email":        "Invalid email address",
}

// UserService implements account reads and updates.
type UserService struct {
	repo     UserRepository
	validate *validator.Validate
}

// NewUserService constructs a UserService backed by repo.
func NewUserService(repo UserRepository) *UserService {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	return &UserService{repo: repo, validate: v}
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation("nospace", noSpace); err != nil {
		return nil, fmt.Errorf("register nospace: %w", err)
	}
	return v, nil
}

func noSpace(fl validator.FieldLevel) bool {
	return !strings.Contains(fl.Field().String(), " ")
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateUser validates req, hashes a new password and stores the changes.
// A request without changes returns the current user.
func (s *UserService) UpdateUser(ctx context.Context, id string, req UpdateRequest) (*models.User, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	upd := models.UserUpdate{
		Username:       nonEmpty(req.Username),
		Email:          nonEmpty(req.Email),
		ProfilePicture: nonEmpty(req.ProfilePicture),
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordHashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		upd.PasswordHash = &h
	}

	if upd.Empty() {
		return s.repo.GetUser(ctx, id)
	}
	return s.repo.UpdateUser(ctx, id, upd)
}

func (s *UserService) check(req UpdateRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
		return &ValidationError{Message: msg}
	}
	return &ValidationError{Message: fe.Error()}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

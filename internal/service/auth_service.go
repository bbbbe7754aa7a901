package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/internal/repository"
	"go-blindbox-store/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrEmailExists        = fmt.Errorf("%w: email already exists", ErrConflict)
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	// Authenticate resolves a bearer token to the current user row.
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*TokenValidationResponse, error)
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserView `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserView `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

func validationResponse(user *model.User) *TokenValidationResponse {
	return &TokenValidationResponse{
		User:       user.View(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}
}

type authService struct {
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	tokens      *jwt.Manager
	notifier    notify.Notifier
	idleTimeout time.Duration
	log         *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, tokens *jwt.Manager, notifier notify.Notifier, idleTimeout time.Duration, log *zap.Logger) AuthService {
	return &authService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		tokens:      tokens,
		notifier:    notifier,
		idleTimeout: idleTimeout,
		log:         log.Named("auth"),
	}
}

// Register creates a storefront account with the user role and signs it in.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("user", err)
	}

	role, err := s.roleRepo.FindByCode(ctx, model.RoleUser)
	if err != nil {
		return nil, storeErr("role", err)
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		RoleID:      &role.ID,
		IsActive:    true,
		Privileges:  role.Privileges,
	}
	user.Stamp("self")
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, storeErr("user", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.Login(ctx, req.Email, req.Password)
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("user", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.PasswordMatches(password) {
		return nil, ErrInvalidCredentials
	}

	// A new token version ends every other session of this user.
	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, storeErr("session", err)
	}
	now := time.Now()
	user.TokenVersion = version
	user.LastSeenAt = &now

	token, err := s.tokens.Generate(jwt.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		Privileges:   user.PrivilegeCodes(),
		TokenVersion: version,
	})
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", user.RoleCode()))
	return &LoginResponse{
		Token:      token,
		User:       user.View(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("new password must be at least 6 characters")
	}
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return storeErr("user", err)
	}
	if !user.PasswordMatches(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	user.UpdatedBy = user.ID.String()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return storeErr("user", err)
	}
	// sign out every existing session
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
		return storeErr("session", err)
	}
	s.log.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("user", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if s.idleTimeout > 0 {
		if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > s.idleTimeout {
			return nil, ErrSessionTimeout
		}
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	user, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return validationResponse(user), nil
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(ctx, userID); err != nil {
		return storeErr("user", err)
	}

	event := notify.NewEvent(notify.TypeUserStatus, "online", map[string]interface{}{
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": time.Now(),
	})
	s.notifier.Notify(ctx, event)
	return nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("user", err)
	}
	return validationResponse(user), nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session credentials.
type TokenIssuer interface {
	Issue(user *domain.User) (string, time.Time, error)
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthUsecase registers identities and verifies credentials.
type AuthUsecase struct {
	users            domain.UserRepository
	tokens           TokenIssuer
	events           domain.EventPublisher
	clock            clock.Clock
	ids              clock.IDGenerator
	logger           *logger.Logger
	allowAdminSignup bool
	passwordHashCost int
}

type AuthOptions struct {
	AllowAdminSignup bool
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

func NewAuthUsecase(users domain.UserRepository, tokens TokenIssuer, events domain.EventPublisher,
	clk clock.Clock, ids clock.IDGenerator, log *logger.Logger, opts AuthOptions) *AuthUsecase {
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		users:            users,
		tokens:           tokens,
		events:           events,
		clock:            clk,
		ids:              ids,
		logger:           log.Named("AuthUsecase"),
		allowAdminSignup: opts.AllowAdminSignup,
		passwordHashCost: cost,
	}
}

// Register creates an identity and signs a credential for it.
func (uc *AuthUsecase) Register(ctx context.Context, email, password string, asAdmin bool) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthUsecase.Register")
	defer span.End()

	uc.logger.Info("Registering user", zap.String("email", email), zap.Bool("as_admin", asAdmin))

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if asAdmin && !uc.allowAdminSignup {
		uc.logger.Warn("Administrator self-registration refused", zap.String("email", email))
		return nil, fmt.Errorf("%w: administrator registration is disabled", domain.ErrForbidden)
	}

	existing, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrEmailAlreadyExists
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		uc.logger.Error("Failed to look up email", zap.Error(err))
		return nil, upstream("lookup email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	role := domain.RoleAdvertiser
	if asAdmin {
		role = domain.RoleAdmin
	}
	user := &domain.User{
		ID:           uc.ids.NewID(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserStatusActive,
		CreatedAt:    uc.clock.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		uc.logger.Error("Failed to save user", zap.Error(err))
		return nil, upstream("create user", err)
	}

	result, err := uc.issue(user)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, uc.events, uc.logger, "user.registered", map[string]interface{}{
		"user_id":    user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt.Format(time.RFC3339Nano),
	})
	uc.logger.Info("User registered", zap.String("user_id", user.ID))
	return result, nil
}

// Login verifies a password. Unknown emails and wrong passwords are indistinguishable.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthUsecase.Login")
	defer span.End()

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Info("Login failed", zap.String("reason", "unknown email"))
			return nil, domain.ErrInvalidCredentials
		}
		uc.logger.Error("Failed to look up user for login", zap.Error(err))
		return nil, upstream("lookup user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Info("Login failed", zap.String("reason", "password mismatch"), zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		uc.logger.Info("Login refused for inactive account", zap.String("user_id", user.ID), zap.String("status", string(user.Status)))
		return nil, domain.ErrAccountNotActive
	}
	return uc.issue(user)
}

func (uc *AuthUsecase) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := uc.tokens.Issue(user)
	if err != nil {
		uc.logger.Error("Failed to sign token", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

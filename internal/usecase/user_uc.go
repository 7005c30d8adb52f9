package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
)

// UserUsecase is the administrative view of identities.
type UserUsecase struct {
	users    domain.UserRepository
	listings domain.ListingRepository
	logger   *logger.Logger
}

func NewUserUsecase(users domain.UserRepository, listings domain.ListingRepository, log *logger.Logger) *UserUsecase {
	return &UserUsecase{users: users, listings: listings, logger: log.Named("UserUsecase")}
}

// UpdateUserInput carries the admin-editable attributes. Nil members are left unchanged.
type UpdateUserInput struct {
	IsAdmin *bool
	Status  *domain.UserStatus
}

func (uc *UserUsecase) List(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := uc.users.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list users", zap.Error(err))
		return nil, upstream("list users", err)
	}
	return users, nil
}

// Get returns a user to an administrator or to the user themself.
func (uc *UserUsecase) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsAdmin && actor.UserID != id {
		return nil, domain.ErrForbidden
	}
	return uc.find(ctx, id)
}

func (uc *UserUsecase) Update(ctx context.Context, actor domain.Actor, id string, in UpdateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *in.Status)
	}
	user, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.IsAdmin != nil {
		user.Role = domain.RoleAdvertiser
		if *in.IsAdmin {
			user.Role = domain.RoleAdmin
		}
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if err := uc.users.Update(ctx, user); err != nil {
		uc.logger.Error("Failed to update user", zap.String("user_id", id), zap.Error(err))
		return nil, upstream("update user", err)
	}
	uc.logger.Info("User updated",
		zap.String("user_id", id),
		zap.String("role", string(user.Role)),
		zap.String("status", string(user.Status)),
		zap.String("actor_id", actor.UserID))
	return user, nil
}

// Delete hard-deletes a user. It is refused while the user still owns listings.
func (uc *UserUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := uc.find(ctx, id); err != nil {
		return err
	}
	owned, err := uc.listings.CountByOwner(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to count listings", zap.String("user_id", id), zap.Error(err))
		return upstream("count listings", err)
	}
	if owned > 0 {
		return domain.ErrUserHasListings
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserHasListings) {
			return err
		}
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		uc.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return upstream("delete user", err)
	}
	uc.logger.Info("User deleted", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// Promote grants the administrator role by email. Used by the operator CLI.
func (uc *UserUsecase) Promote(ctx context.Context, email string) (*domain.User, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, upstream("lookup user", err)
	}
	if user.IsAdmin() {
		return user, nil
	}
	user.Role = domain.RoleAdmin
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, upstream("update user", err)
	}
	uc.logger.Info("User promoted to administrator", zap.String("user_id", user.ID))
	return user, nil
}

func (uc *UserUsecase) find(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		uc.logger.Error("Failed to get user", zap.String("user_id", id), zap.Error(err))
		return nil, upstream("get user", err)
	}
	return user, nil
}

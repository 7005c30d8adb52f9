package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewUserRepository(db *gorm.DB, appLogger *logger.Logger) *UserRepository {
	return &UserRepository{db: db, logger: appLogger.Named("PostgresUserRepository")}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	id, ok := parseID(user.ID)
	if !ok {
		return fmt.Errorf("%w: malformed user id %q", domain.ErrInvalidInput, user.ID)
	}
	m := toUserModel(user, id)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if pgCode(err) == uniqueViolation {
			return domain.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to insert user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var models []userModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	users := make([]*domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	uid, ok := parseID(user.ID)
	if !ok {
		return domain.ErrUserNotFound
	}
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"status":        string(user.Status),
	})
	if res.Error != nil {
		if pgCode(res.Error) == uniqueViolation {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	uid, ok := parseID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	res := r.db.WithContext(ctx).Delete(&userModel{}, "id = ?", uid)
	if res.Error != nil {
		if pgCode(res.Error) == foreignKeyViolation {
			return domain.ErrUserHasListings
		}
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

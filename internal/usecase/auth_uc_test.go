package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthUsecase(users *MockUserRepository, tokens *MockTokenIssuer, events *MockEventPublisher, allowAdmin bool) *AuthUsecase {
	return NewAuthUsecase(users, tokens, events, clock.Fixed(), clock.NewSequentialIDs("user"), logger.NewNop(),
		AuthOptions{AllowAdminSignup: allowAdmin, HashCost: bcrypt.MinCost})
}

func TestAuthUsecase_Register(t *testing.T) {
	ctx := context.Background()
	expires := clock.Fixed().Now().Add(time.Hour)

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		events := new(MockEventPublisher)
		uc := newAuthUsecase(users, tokens, events, false)

		users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrUserNotFound).Once()
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "a@x.com" && u.ID == "user-1" &&
				u.Role == domain.RoleAdvertiser && u.Status == domain.UserStatusActive &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
		})).Return(nil).Once()
		tokens.On("Issue", mock.AnythingOfType("*domain.User")).Return("signed", expires, nil).Once()
		events.On("Publish", mock.Anything, "user.registered", mock.Anything).Return(nil).Once()

		res, err := uc.Register(ctx, "a@x.com", "secret1", false)

		require.NoError(t, err)
		assert.Equal(t, "signed", res.Token)
		assert.Equal(t, expires, res.ExpiresAt)
		assert.Equal(t, "user-1", res.User.ID)
		assert.NotEqual(t, "secret1", res.User.PasswordHash)
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("duplicate email detected on lookup", func(t *testing.T) {
		users := new(MockUserRepository)
		uc := newAuthUsecase(users, new(MockTokenIssuer), new(MockEventPublisher), false)

		users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{ID: "u-0", Email: "a@x.com"}, nil).Once()

		_, err := uc.Register(ctx, "a@x.com", "other", false)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.ErrorIs(t, err, domain.ErrConflict)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email detected by store", func(t *testing.T) {
		users := new(MockUserRepository)
		uc := newAuthUsecase(users, new(MockTokenIssuer), new(MockEventPublisher), false)

		users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrUserNotFound).Once()
		users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailAlreadyExists).Once()

		_, err := uc.Register(ctx, "a@x.com", "other", false)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("admin registration disabled", func(t *testing.T) {
		users := new(MockUserRepository)
		uc := newAuthUsecase(users, new(MockTokenIssuer), new(MockEventPublisher), false)

		_, err := uc.Register(ctx, "boss@x.com", "secret1", true)

		assert.ErrorIs(t, err, domain.ErrForbidden)
		users.AssertExpectations(t)
	})

	t.Run("admin registration enabled", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		events := new(MockEventPublisher)
		uc := newAuthUsecase(users, tokens, events, true)

		users.On("GetByEmail", mock.Anything, "boss@x.com").Return(nil, domain.ErrUserNotFound).Once()
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.Role == domain.RoleAdmin })).Return(nil).Once()
		tokens.On("Issue", mock.Anything).Return("signed", expires, nil).Once()
		events.On("Publish", mock.Anything, "user.registered", mock.Anything).Return(errors.New("nats down")).Once()

		res, err := uc.Register(ctx, "boss@x.com", "secret1", true)

		require.NoError(t, err, "event failures do not fail registration")
		assert.True(t, res.User.IsAdmin())
	})

	t.Run("missing password", func(t *testing.T) {
		uc := newAuthUsecase(new(MockUserRepository), new(MockTokenIssuer), new(MockEventPublisher), false)
		_, err := uc.Register(ctx, "a@x.com", "", false)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("store failure", func(t *testing.T) {
		users := new(MockUserRepository)
		uc := newAuthUsecase(users, new(MockTokenIssuer), new(MockEventPublisher), false)
		users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connection reset")).Once()

		_, err := uc.Register(ctx, "a@x.com", "secret1", false)

		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	expires := clock.Fixed().Now().Add(time.Hour)

	active := &domain.User{ID: "u-1", Email: "a@x.com", PasswordHash: string(hash), Role: domain.RoleAdvertiser, Status: domain.UserStatusActive}
	suspended := &domain.User{ID: "u-2", Email: "s@x.com", PasswordHash: string(hash), Role: domain.RoleAdvertiser, Status: domain.UserStatusSuspended}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		uc := newAuthUsecase(users, tokens, new(MockEventPublisher), false)

		users.On("GetByEmail", mock.Anything, "a@x.com").Return(active, nil).Once()
		tokens.On("Issue", active).Return("signed", expires, nil).Once()

		res, err := uc.Login(ctx, "a@x.com", "secret1")

		require.NoError(t, err)
		assert.Equal(t, "signed", res.Token)
		assert.Equal(t, active, res.User)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		users := new(MockUserRepository)
		uc := newAuthUsecase(users, new(MockTokenIssuer), new(MockEventPublisher), false)

		users.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domain.ErrUserNotFound).Once()
		users.On("GetByEmail", mock.Anything, "a@x.com").Return(active, nil).Once()

		_, errUnknown := uc.Login(ctx, "nobody@x.com", "secret1")
		_, errWrong := uc.Login(ctx, "a@x.com", "wrong")

		assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("inactive account", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		uc := newAuthUsecase(users, tokens, new(MockEventPublisher), false)

		users.On("GetByEmail", mock.Anything, "s@x.com").Return(suspended, nil).Once()

		_, err := uc.Login(ctx, "s@x.com", "secret1")

		assert.ErrorIs(t, err, domain.ErrAccountNotActive)
		tokens.AssertNotCalled(t, "Issue", mock.Anything)
	})

	t.Run("inactive account with wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		uc := newAuthUsecase(users, new(MockTokenIssuer), new(MockEventPublisher), false)

		users.On("GetByEmail", mock.Anything, "s@x.com").Return(suspended, nil).Once()

		_, err := uc.Login(ctx, "s@x.com", "wrong")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

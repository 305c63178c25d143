package service

import (
	"context"
	"testing"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc        *AuthServiceImpl
	userRepo   *mocks.MockUserRepository
	walletRepo *mocks.MockWalletRepository
	hashSvc    *mocks.MockHashService
	tokenSvc   *mocks.MockTokenService
	ctrl       *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		hashSvc:    mocks.NewMockHashService(ctrl),
		tokenSvc:   mocks.NewMockTokenService(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.walletRepo, d.hashSvc, d.tokenSvc, zerolog.Nop())
	return d
}

func TestAuthService_Register(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	expiry := time.Now().Add(24 * time.Hour)

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("hunter2!").Return("$argon2id$...", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "alice", u.Username)
			assert.Equal(t, "Alice", u.DisplayName)
			assert.Equal(t, "$argon2id$...", u.PasswordHash)
			return nil
		})
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, w *domain.Wallet) error {
			assert.Equal(t, int64(0), w.Balance)
			return nil
		})
	d.tokenSvc.EXPECT().Generate(gomock.Any()).Return("signed.jwt", expiry, nil)

	result, err := d.svc.Register(ctx, ports.RegisterParams{
		Username:    "alice",
		Password:    "hunter2!",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", result.AccessToken)
	assert.Equal(t, expiry, result.ExpiresAt)
	assert.Equal(t, "alice", result.User.Username)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	existing := &domain.User{ID: uuid.New(), Username: "alice"}
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(existing, nil)

	_, err := d.svc.Register(ctx, ports.RegisterParams{Username: "alice", Password: "x"})
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Register_DefaultsDisplayName(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "bob").Return(nil, nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("h", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "bob", u.DisplayName)
			return nil
		})
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.tokenSvc.EXPECT().Generate(gomock.Any()).Return("t", time.Now(), nil)

	_, err := d.svc.Register(ctx, ports.RegisterParams{Username: "bob", Password: "x"})
	require.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "stored-hash"}
	expiry := time.Now().Add(24 * time.Hour)

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("hunter2!", "stored-hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(user.ID).Return("signed.jwt", expiry, nil)

	result, err := d.svc.Login(ctx, "alice", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", result.AccessToken)
	assert.Equal(t, user, result.User)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	d.userRepo.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

	_, err := d.svc.Login(context.Background(), "ghost", "x")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "stored-hash"}
	d.userRepo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("wrong", "stored-hash").Return(false, nil)

	_, err := d.svc.Login(context.Background(), "alice", "wrong")
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_GetUser_NotFound(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	id := uuid.New()
	d.userRepo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := d.svc.GetUser(context.Background(), id)
	assertAppError(t, err, "PAY_004")
}

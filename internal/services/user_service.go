package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/events"
	"github.com/Gopher0727/Accounts/internal/models"
	"github.com/Gopher0727/Accounts/internal/repositories"
	"github.com/Gopher0727/Accounts/internal/storage"
	"github.com/Gopher0727/Accounts/internal/utils"
	"github.com/Gopher0727/Accounts/middleware/jwt"
	logger "github.com/Gopher0727/Accounts/middleware/log"
	"github.com/Gopher0727/Accounts/utils/snowflake"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type UserService struct {
	db     *gorm.DB
	users  *repositories.UserRepository
	ids    snowflake.IDGenerator
	tokens *jwt.TokenManager
	notifier
}

func NewUserService(db *gorm.DB, ids snowflake.IDGenerator, tokens *jwt.TokenManager, publisher events.Publisher, pool *utils.WorkerPool, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserService{
		db:       db,
		users:    repositories.NewUserRepository(db),
		ids:      ids,
		tokens:   tokens,
		notifier: notifier{publisher: publisher, pool: pool, logger: log},
	}
}

// Register 注册人类账号
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if !utils.ValidateUserName(username) {
		return nil, fmt.Errorf("%w: must be %d-%d characters without control characters",
			errs.ErrInvalidUsername, utils.MinUserNameLen, utils.MaxUserNameLen)
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("%w: must be at least %d characters and at most %d bytes",
			errs.ErrWeakPassword, utils.MinPasswordLen, utils.MaxPasswordBytes)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate user id: %w", err)
	}

	var user *models.User
	err = storage.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		user, err = repositories.NewAccountTx(tx).RegisterUser(ctx, id, username, hash)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", zap.Uint64("user_id", user.ID))
	s.notify(ctx, events.AccountEvent{Type: events.UserCreated, AccountID: user.ID, Username: user.Username})
	return &LoginResponse{User: *user, Token: token}, nil
}

// Login 登录；用户名不存在与密码错误返回同一个错误
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByUserName(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidPassword
		}
		return nil, err
	}

	hash, err := s.users.GetPasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidPassword
		}
		return nil, err
	}
	if !utils.CheckPassword(hash, req.Password) {
		return nil, errs.ErrInvalidPassword
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{User: *user, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Exists reports whether the account behind a token still exists.
func (s *UserService) Exists(ctx context.Context, id uint64) (bool, error) {
	return s.users.ExistsByID(ctx, id)
}

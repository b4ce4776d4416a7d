package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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
	"github.com/Gopher0727/Accounts/utils/ratelimit"
	"github.com/Gopher0727/Accounts/utils/snowflake"
)

// CreateBotPayload 创建机器人请求
type CreateBotPayload struct {
	Username string `json:"username" binding:"required"`
}

// CreateUserResponse is returned once, at creation; the token is not stored.
type CreateUserResponse struct {
	ID    uint64 `json:"id"`
	Token string `json:"token"`
}

// DeleteBotPayload 删除机器人请求，需要所有者密码
type DeleteBotPayload struct {
	Password string `json:"password" binding:"required"`
}

// RetryAfterError carries the wait imposed by the rate limiter.
type RetryAfterError struct {
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RetryAfterError) Unwrap() error {
	return errs.ErrRateLimited
}

type BotService struct {
	db      *gorm.DB
	users   *repositories.UserRepository
	bots    *repositories.BotRepository
	ids     snowflake.IDGenerator
	tokens  *jwt.TokenManager
	limiter ratelimit.Limiter
	rule    ratelimit.Rule
	notifier
	// newStore opens the account store on a transaction; replaced in tests.
	newStore func(tx *gorm.DB) repositories.AccountStore
}

type BotServiceConfig struct {
	DB        *gorm.DB
	IDs       snowflake.IDGenerator
	Tokens    *jwt.TokenManager
	Limiter   ratelimit.Limiter
	Rule      ratelimit.Rule
	Publisher events.Publisher
	Pool      *utils.WorkerPool
	Logger    *logger.Logger
}

func NewBotService(cfg BotServiceConfig) *BotService {
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.Unlimited{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &BotService{
		db:       cfg.DB,
		users:    repositories.NewUserRepository(cfg.DB),
		bots:     repositories.NewBotRepository(cfg.DB),
		ids:      cfg.IDs,
		tokens:   cfg.Tokens,
		limiter:  cfg.Limiter,
		rule:     cfg.Rule,
		notifier: notifier{publisher: cfg.Publisher, pool: cfg.Pool, logger: cfg.Logger},
		newStore: func(tx *gorm.DB) repositories.AccountStore { return repositories.NewAccountTx(tx) },
	}
}

// CreateBot 创建机器人账号
// 校验用户名，按所有者限流，分配 ID，在事务中写入用户和机器人记录，提交后签发令牌并发布事件
func (s *BotService) CreateBot(ctx context.Context, ownerID uint64, payload CreateBotPayload) (*CreateUserResponse, error) {
	username := strings.TrimSpace(payload.Username)
	if !utils.ValidateUserName(username) {
		return nil, fmt.Errorf("%w: must be %d-%d characters without control characters",
			errs.ErrInvalidUsername, utils.MinUserNameLen, utils.MaxUserNameLen)
	}

	decision, err := s.limiter.Allow(ctx, ratelimit.BotCreateKey(ownerID), s.rule)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &RetryAfterError{RetryAfter: decision.RetryAfter}
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bot id: %w", err)
	}

	var bot *models.Bot
	err = storage.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		bot, err = s.newStore(tx).RegisterBot(ctx, id, ownerID, username)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateBotToken(bot.ID(), username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue bot token: %w", err)
	}

	s.logger.InfoContext(ctx, "bot created",
		zap.Uint64("bot_id", bot.ID()),
		zap.Uint64("owner_id", ownerID),
		zap.String("username", username),
	)
	s.notify(ctx, events.AccountEvent{Type: events.BotCreated, AccountID: bot.ID(), OwnerID: ownerID, Username: username})

	return &CreateUserResponse{ID: bot.ID(), Token: token}, nil
}

// DeleteBot 删除机器人，需要所有者密码。非所有者看到的是 ErrNotFound。
func (s *BotService) DeleteBot(ctx context.Context, ownerID, botID uint64, payload DeleteBotPayload) error {
	hash, err := s.users.GetPasswordHash(ctx, ownerID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrInvalidPassword
		}
		return err
	}
	if !utils.CheckPassword(hash, payload.Password) {
		return errs.ErrInvalidPassword
	}

	owned, err := s.bots.GetBotOwner(ctx, botID)
	if err != nil {
		return err
	}
	if owned.OwnerID != ownerID {
		return fmt.Errorf("bot %d: %w", botID, errs.ErrNotFound)
	}

	err = storage.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return s.newStore(tx).DeleteBot(ctx, botID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "bot deleted", zap.Uint64("bot_id", botID), zap.Uint64("owner_id", ownerID))
	s.notify(ctx, events.AccountEvent{Type: events.BotDeleted, AccountID: botID, OwnerID: ownerID})
	return nil
}

// GetBot returns the bot with its full user record.
func (s *BotService) GetBot(ctx context.Context, botID uint64) (*models.Bot, error) {
	return s.bots.GetBot(ctx, botID)
}

// ListBots 获取所有者的全部机器人
func (s *BotService) ListBots(ctx context.Context, ownerID uint64) ([]models.Bot, error) {
	return s.bots.ListByOwner(ctx, ownerID)
}

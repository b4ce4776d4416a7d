package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/models"
)

// AccountStore creates and destroys accounts inside a caller-held transaction.
// Callers commit on success and roll back on any error; the store never does.
type AccountStore interface {
	// RegisterUser inserts a human account. A username collision yields
	// *errs.AlreadyTakenError.
	RegisterUser(ctx context.Context, id uint64, username, passwordHash string) (*models.User, error)

	// RegisterBot inserts the user row (flagged as a bot) and the bot row. No
	// validation is done here. A username collision yields *errs.AlreadyTakenError
	// and leaves the transaction to be rolled back.
	RegisterBot(ctx context.Context, id, ownerID uint64, username string) (*models.Bot, error)

	// DeleteBot deletes the user row; the bot row goes with it through the
	// foreign key cascade. Unknown ids are not an error.
	DeleteBot(ctx context.Context, id uint64) error
}

// AccountTx is the AccountStore bound to one open transaction.
type AccountTx struct {
	tx *gorm.DB
}

var _ AccountStore = (*AccountTx)(nil)

// NewAccountTx wraps a transaction opened with storage.WithTransaction.
func NewAccountTx(tx *gorm.DB) *AccountTx {
	return &AccountTx{tx: tx}
}

// MaxDiscriminator is the largest discriminator the database assigns.
const MaxDiscriminator = 9999

// The discriminator is assigned by the database in the same statement, folded
// from the snowflake id into 1..MaxDiscriminator.
// ON CONFLICT (username) turns a taken username into an empty result instead of
// an error; a duplicate id still fails on the primary key.
const insertUserSQL = `
INSERT INTO users (id, username, discriminator, flags, password)
VALUES (?, ?, CAST(? AS BIGINT) % 9999 + 1, ?, ?)
ON CONFLICT (username) DO NOTHING
RETURNING id, username, discriminator, avatar, banner, bio, flags`

func (s *AccountTx) insertUser(ctx context.Context, id uint64, username string, flags models.UserFlags, passwordHash *string) (*models.User, error) {
	var users []models.User
	result := s.tx.WithContext(ctx).Raw(insertUserSQL, id, strings.TrimSpace(username), id, flags, passwordHash).Scan(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert user %d: %w", id, result.Error)
	}
	if len(users) == 0 {
		return nil, errs.UsernameTaken()
	}
	return &users[0], nil
}

// RegisterUser 在当前事务中创建普通用户
//
// Parameters:
//   - ctx: 请求上下文
//   - id: 预先分配的 snowflake ID
//   - username: 用户名，首尾空白会被去除
//   - passwordHash: bcrypt 哈希
//
// Returns:
//   - *models.User: 数据库返回的完整用户记录
//   - error: 用户名已被占用时为 *errs.AlreadyTakenError
func (s *AccountTx) RegisterUser(ctx context.Context, id uint64, username, passwordHash string) (*models.User, error) {
	return s.insertUser(ctx, id, username, 0, &passwordHash)
}

// RegisterBot 在当前事务中创建机器人账号（用户行 + 机器人行）
//
// Parameters:
//   - ctx: 请求上下文
//   - id: 预先分配的 snowflake ID，用户行和机器人行共用
//   - ownerID: 所有者的用户 ID
//   - username: 用户名，首尾空白会被去除
//
// Returns:
//   - *models.Bot: 带完整用户记录的机器人
//   - error: 用户名已被占用时为 *errs.AlreadyTakenError，调用方需回滚事务
func (s *AccountTx) RegisterBot(ctx context.Context, id, ownerID uint64, username string) (*models.Bot, error) {
	user, err := s.insertUser(ctx, id, username, models.UserFlagBot, nil)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithContext(ctx).Exec("INSERT INTO bots (id, owner_id) VALUES (?, ?)", id, ownerID).Error; err != nil {
		return nil, fmt.Errorf("failed to insert bot %d for owner %d: %w", id, ownerID, err)
	}

	return &models.Bot{User: models.Full(*user), OwnerID: ownerID}, nil
}

// DeleteBot 删除机器人的用户行，机器人行通过外键级联删除。
// 不存在的 ID 不视为错误。
//
// Parameters:
//   - ctx: 请求上下文
//   - id: 机器人 ID
//
// Returns:
//   - error: 数据库错误
func (s *AccountTx) DeleteBot(ctx context.Context, id uint64) error {
	if err := s.tx.WithContext(ctx).Exec("DELETE FROM users WHERE id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete bot %d: %w", id, err)
	}
	return nil
}

package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/models"
)

type BotRepository struct {
	db *gorm.DB
}

func NewBotRepository(db *gorm.DB) *BotRepository {
	return &BotRepository{db: db}
}

func (r *BotRepository) WithTx(tx *gorm.DB) *BotRepository {
	return &BotRepository{db: tx}
}

type botRow struct {
	models.User
	OwnerID uint64 `gorm:"column:owner_id"`
}

func (r *BotRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bots AS b").
		Select("u.id, u.username, u.discriminator, u.avatar, u.banner, u.bio, u.flags, b.owner_id").
		Joins("JOIN users AS u ON u.id = b.id")
}

type ownerRow struct {
	ID      uint64 `gorm:"column:id"`
	OwnerID uint64 `gorm:"column:owner_id"`
}

// GetBot 获取机器人及其完整用户信息
func (r *BotRepository) GetBot(ctx context.Context, id uint64) (*models.Bot, error) {
	var row botRow
	if err := r.joined(ctx).Where("b.id = ?", id).Take(&row).Error; err != nil {
		return nil, notFound(err, "bot %d", id)
	}
	return &models.Bot{User: models.Full(row.User), OwnerID: row.OwnerID}, nil
}

// GetBotOwner reads only the bots row; the user is returned as a partial.
func (r *BotRepository) GetBotOwner(ctx context.Context, id uint64) (*models.Bot, error) {
	var row ownerRow
	err := r.db.WithContext(ctx).Table("bots").Select("id, owner_id").Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, notFound(err, "bot %d", id)
	}
	return &models.Bot{User: models.Partial(row.ID), OwnerID: row.OwnerID}, nil
}

// ListByOwner 获取用户拥有的全部机器人
func (r *BotRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]models.Bot, error) {
	var rows []botRow
	if err := r.joined(ctx).Where("b.owner_id = ?", ownerID).Order("u.id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list bots of %d: %w", ownerID, err)
	}

	bots := make([]models.Bot, 0, len(rows))
	for _, row := range rows {
		bots = append(bots, models.Bot{User: models.Full(row.User), OwnerID: row.OwnerID})
	}
	return bots, nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/models"
)

type GuildRepository struct {
	db *gorm.DB
}

func NewGuildRepository(db *gorm.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) WithTx(tx *gorm.DB) *GuildRepository {
	return &GuildRepository{db: tx}
}

// CreateGuild 创建 Guild 并将所有者添加为成员
// Call it inside storage.WithTransaction so the guild and the membership land together.
func (r *GuildRepository) CreateGuild(ctx context.Context, guild *models.Guild) error {
	db := r.db.WithContext(ctx)
	err := db.Exec(
		"INSERT INTO guilds (id, name, description, icon, banner, owner_id, flags, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		guild.ID, guild.Name, guild.Description, guild.Icon, guild.Banner, guild.OwnerID, guild.Flags, guild.CreatedAt,
	).Error
	if err != nil {
		return fmt.Errorf("failed to create guild %d: %w", guild.ID, err)
	}
	return r.AddMember(ctx, guild.ID, guild.OwnerID, guild.CreatedAt)
}

// GetPartialGuild 获取 Guild 的精简信息（含成员数）
func (r *GuildRepository) GetPartialGuild(ctx context.Context, id uint64) (*models.PartialGuild, error) {
	var guild models.PartialGuild
	err := r.db.WithContext(ctx).
		Table("guilds").
		Select("id, name, description, icon, banner, owner_id, flags, (SELECT COUNT(*) FROM members m WHERE m.guild_id = guilds.id) AS member_count").
		Where("id = ?", id).
		Take(&guild).Error
	if err != nil {
		return nil, notFound(err, "guild %d", id)
	}
	return &guild, nil
}

// GetGuild 获取 Guild 完整信息
func (r *GuildRepository) GetGuild(ctx context.Context, id uint64) (*models.Guild, error) {
	var guild models.Guild
	err := r.db.WithContext(ctx).
		Table("guilds").
		Select("id, name, description, icon, banner, owner_id, flags, created_at").
		Where("id = ?", id).
		Take(&guild).Error
	if err != nil {
		return nil, notFound(err, "guild %d", id)
	}
	return &guild, nil
}

// AddMember 向 Guild 添加成员，已是成员时不做任何事
func (r *GuildRepository) AddMember(ctx context.Context, guildID, userID uint64, joinedAt time.Time) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO members (guild_id, user_id, joined_at) VALUES (?, ?, ?) ON CONFLICT (guild_id, user_id) DO NOTHING",
		guildID, userID, joinedAt,
	).Error
	if err != nil {
		return fmt.Errorf("failed to add member %d to guild %d: %w", userID, guildID, err)
	}
	return nil
}

// IsMember 检查用户是否是 Guild 成员
func (r *GuildRepository) IsMember(ctx context.Context, guildID, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("members").
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Count(&count).Error
	return count > 0, err
}

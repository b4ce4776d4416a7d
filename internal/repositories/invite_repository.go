package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/models"
)

const inviteColumns = "code, inviter_id, guild_id, channel_id, created_at, uses, max_uses, max_age"

type InviteRepository struct {
	db     *gorm.DB
	guilds *GuildRepository
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db, guilds: NewGuildRepository(db)}
}

func (r *InviteRepository) WithTx(tx *gorm.DB) *InviteRepository {
	return NewInviteRepository(tx)
}

// CreateInvite 创建邀请码
func (r *InviteRepository) CreateInvite(ctx context.Context, invite *models.Invite) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO invites ("+inviteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		invite.Code, invite.InviterID, invite.GuildID, invite.ChannelID,
		invite.CreatedAt, invite.Uses, invite.MaxUses, invite.MaxAge,
	).Error
	if err != nil {
		return fmt.Errorf("failed to create invite %q: %w", invite.Code, err)
	}
	return nil
}

// GetInvite 根据邀请码获取邀请信息。withGuild 为 true 时附带 Guild 精简信息。
func (r *InviteRepository) GetInvite(ctx context.Context, code string, withGuild bool) (*models.Invite, error) {
	var invite models.Invite
	err := r.db.WithContext(ctx).Table("invites").Select(inviteColumns).Where("code = ?", code).Take(&invite).Error
	if err != nil {
		return nil, notFound(err, "invite %q", code)
	}

	if withGuild {
		guild, err := r.guilds.GetPartialGuild(ctx, invite.GuildID)
		if err != nil {
			return nil, err
		}
		invite.Guild = guild
	}
	return &invite, nil
}

// UseInvite consumes one use of the invite. Expired or exhausted invites
// yield errs.ErrInviteUnusable; the use counter only moves while the invite is usable.
func (r *InviteRepository) UseInvite(ctx context.Context, code string, now time.Time) (*models.Invite, error) {
	invite, err := r.GetInvite(ctx, code, false)
	if err != nil {
		return nil, err
	}
	if !invite.Usable(now) {
		return nil, fmt.Errorf("invite %q: %w", code, errs.ErrInviteUnusable)
	}

	result := r.db.WithContext(ctx).Exec(
		"UPDATE invites SET uses = uses + 1 WHERE code = ? AND (max_uses = 0 OR uses < max_uses)",
		code,
	)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to use invite %q: %w", code, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("invite %q: %w", code, errs.ErrInviteUnusable)
	}

	invite.Uses++
	return invite, nil
}

// ListGuildInvites 获取 Guild 的全部邀请，Guild 字段留空
func (r *InviteRepository) ListGuildInvites(ctx context.Context, guildID uint64) ([]models.Invite, error) {
	var invites []models.Invite
	err := r.db.WithContext(ctx).
		Table("invites").
		Select(inviteColumns).
		Where("guild_id = ?", guildID).
		Order("created_at").
		Find(&invites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invites of guild %d: %w", guildID, err)
	}
	return invites, nil
}

// DeleteInvite 删除邀请码，不存在时不报错
func (r *InviteRepository) DeleteInvite(ctx context.Context, code string) error {
	if err := r.db.WithContext(ctx).Exec("DELETE FROM invites WHERE code = ?", code).Error; err != nil {
		return fmt.Errorf("failed to delete invite %q: %w", code, err)
	}
	return nil
}

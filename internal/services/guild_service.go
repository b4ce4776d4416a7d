package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/models"
	"github.com/Gopher0727/Accounts/internal/repositories"
	"github.com/Gopher0727/Accounts/internal/storage"
	"github.com/Gopher0727/Accounts/internal/utils"
	"github.com/Gopher0727/Accounts/utils/snowflake"
)

var (
	ErrUserNotMember      = errors.New("user is not a member of the guild")
	ErrCannotRevokeInvite = errors.New("only the guild owner or the inviter can revoke an invite")
)

// inviteCodeAttempts bounds retries on the rare code collision.
const inviteCodeAttempts = 3

type GuildService struct {
	db      *gorm.DB
	guilds  *repositories.GuildRepository
	invites *repositories.InviteRepository
	ids     snowflake.IDGenerator
	now     func() time.Time
}

func NewGuildService(db *gorm.DB, ids snowflake.IDGenerator) *GuildService {
	return &GuildService{
		db:      db,
		guilds:  repositories.NewGuildRepository(db),
		invites: repositories.NewInviteRepository(db),
		ids:     ids,
		now:     time.Now,
	}
}

type CreateGuildRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Public      bool    `json:"public"`
}

// CreateInviteRequest 创建邀请请求；0 表示不限次数或永不过期
type CreateInviteRequest struct {
	ChannelID *uint64 `json:"channel_id"`
	MaxUses   uint32  `json:"max_uses"`
	MaxAge    uint32  `json:"max_age"`
}

// CreateGuild 创建 Guild，所有者自动成为成员
func (s *GuildService) CreateGuild(ctx context.Context, ownerID uint64, req CreateGuildRequest) (*models.Guild, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: guild name must not be empty", errs.ErrInvalidName)
	}
	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate guild id: %w", err)
	}

	var flags models.GuildFlags
	if req.Public {
		flags |= models.GuildFlagPublic
	}
	guild := &models.Guild{
		PartialGuild: models.PartialGuild{
			ID:          id,
			Name:        name,
			Description: req.Description,
			OwnerID:     ownerID,
			Flags:       flags,
		},
		CreatedAt: s.now().UTC(),
	}

	err = storage.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return s.guilds.WithTx(tx).CreateGuild(ctx, guild)
	})
	if err != nil {
		return nil, err
	}
	return guild, nil
}

// CreateInvite 为 Guild 创建邀请码，只有成员可以创建
func (s *GuildService) CreateInvite(ctx context.Context, userID, guildID uint64, req CreateInviteRequest) (*models.Invite, error) {
	guild, err := s.guilds.GetPartialGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	member, err := s.guilds.IsMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrUserNotMember
	}

	invite := &models.Invite{
		InviterID: userID,
		Guild:     guild,
		GuildID:   guildID,
		ChannelID: req.ChannelID,
		CreatedAt: s.now().UTC(),
		MaxUses:   req.MaxUses,
		MaxAge:    req.MaxAge,
	}
	for attempt := 1; ; attempt++ {
		invite.Code, err = utils.GenerateInviteCode()
		if err != nil {
			return nil, err
		}
		err = s.invites.CreateInvite(ctx, invite)
		if err == nil || attempt == inviteCodeAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// GetInvite 查询邀请码，附带 Guild 精简信息
func (s *GuildService) GetInvite(ctx context.Context, code string) (*models.Invite, error) {
	return s.invites.GetInvite(ctx, code, true)
}

// UseInvite 使用邀请码加入 Guild。已是成员时不消耗次数。
func (s *GuildService) UseInvite(ctx context.Context, userID uint64, code string) (*models.Invite, error) {
	var invite *models.Invite
	err := storage.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		found, err := s.invites.WithTx(tx).GetInvite(ctx, code, true)
		if err != nil {
			return err
		}
		member, err := s.guilds.WithTx(tx).IsMember(ctx, found.GuildID, userID)
		if err != nil {
			return err
		}
		if member {
			invite = found
			return nil
		}

		used, err := s.invites.WithTx(tx).UseInvite(ctx, code, s.now().UTC())
		if err != nil {
			return err
		}
		used.Guild = found.Guild
		invite = used
		return s.guilds.WithTx(tx).AddMember(ctx, found.GuildID, userID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// ListInvites 列出 Guild 的邀请，只有成员可以查看
func (s *GuildService) ListInvites(ctx context.Context, userID, guildID uint64) ([]models.Invite, error) {
	member, err := s.guilds.IsMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrUserNotMember
	}
	return s.invites.ListGuildInvites(ctx, guildID)
}

// RevokeInvite 删除邀请码，只有 Guild 所有者或邀请创建者可以操作
func (s *GuildService) RevokeInvite(ctx context.Context, userID uint64, code string) error {
	return storage.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		invite, err := s.invites.WithTx(tx).GetInvite(ctx, code, true)
		if err != nil {
			return err
		}
		if invite.InviterID != userID && (invite.Guild == nil || invite.Guild.OwnerID != userID) {
			return ErrCannotRevokeInvite
		}
		return s.invites.WithTx(tx).DeleteInvite(ctx, code)
	})
}

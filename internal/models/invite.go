package models

import "time"

// Invite 服务器邀请
type Invite struct {
	Code      string `gorm:"column:code;primaryKey" json:"code"`
	InviterID uint64 `gorm:"column:inviter_id" json:"inviter_id"`
	// Guild is nil when the invite is fetched in the context of its guild.
	Guild     *PartialGuild `gorm:"-" json:"guild"`
	GuildID   uint64        `gorm:"column:guild_id" json:"guild_id"`
	ChannelID *uint64       `gorm:"column:channel_id" json:"channel_id"`
	CreatedAt time.Time     `gorm:"column:created_at" json:"created_at"`
	Uses      uint32        `gorm:"column:uses" json:"uses"`
	// 0 means unlimited.
	MaxUses uint32 `gorm:"column:max_uses" json:"max_uses"`
	// Seconds counted from CreatedAt; 0 means the invite never expires.
	MaxAge uint32 `gorm:"column:max_age" json:"max_age"`
}

func (Invite) TableName() string {
	return "invites"
}

// ExpiresAt returns nil for invites without a max age.
func (i Invite) ExpiresAt() *time.Time {
	if i.MaxAge == 0 {
		return nil
	}
	at := i.CreatedAt.Add(time.Duration(i.MaxAge) * time.Second)
	return &at
}

func (i Invite) Exhausted() bool {
	return i.MaxUses != 0 && i.Uses >= i.MaxUses
}

func (i Invite) Expired(now time.Time) bool {
	at := i.ExpiresAt()
	return at != nil && !now.Before(*at)
}

// Usable reports whether the invite can still be redeemed at now.
func (i Invite) Usable(now time.Time) bool {
	return !i.Exhausted() && !i.Expired(now)
}

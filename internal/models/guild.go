package models

import (
	"database/sql/driver"
	"time"

	"github.com/Gopher0727/Accounts/internal/bitflags"
)

// GuildFlags 服务器标记位，按 64 位存储
type GuildFlags int64

const (
	GuildFlagPublic GuildFlags = 1 << iota
	GuildFlagVerified
)

func (f GuildFlags) Has(flag GuildFlags) bool {
	return bitflags.Has(f, flag)
}

func (f GuildFlags) Value() (driver.Value, error) {
	return bitflags.Value64(f)
}

func (f *GuildFlags) Scan(src any) error {
	return bitflags.Scan64(f, src)
}

func (f GuildFlags) MarshalJSON() ([]byte, error) {
	return bitflags.MarshalJSON64(f)
}

func (f *GuildFlags) UnmarshalJSON(data []byte) error {
	return bitflags.UnmarshalJSON64(f, data)
}

// PartialGuild 服务器的精简信息，嵌入到邀请等实体中
type PartialGuild struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Name        string     `gorm:"column:name" json:"name"`
	Description *string    `gorm:"column:description" json:"description"`
	Icon        *string    `gorm:"column:icon" json:"icon"`
	Banner      *string    `gorm:"column:banner" json:"banner"`
	OwnerID     uint64     `gorm:"column:owner_id" json:"owner_id"`
	Flags       GuildFlags `gorm:"column:flags" json:"flags"`
	MemberCount *uint32    `gorm:"column:member_count;->" json:"member_count,omitempty"`
}

func (PartialGuild) TableName() string {
	return "guilds"
}

type Guild struct {
	PartialGuild
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Guild) TableName() string {
	return "guilds"
}

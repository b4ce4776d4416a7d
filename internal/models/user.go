package models

import (
	"database/sql/driver"

	"github.com/Gopher0727/Accounts/internal/bitflags"
)

// UserFlags 用户标记位
type UserFlags uint32

const (
	// UserFlagBot marks a bot account owned by another user.
	UserFlagBot UserFlags = 1 << iota
	UserFlagVerified
	UserFlagStaff
)

var userFlagNames = map[UserFlags]string{
	UserFlagBot:      "BOT",
	UserFlagVerified: "VERIFIED",
	UserFlagStaff:    "STAFF",
}

func (f UserFlags) Has(flag UserFlags) bool {
	return bitflags.Has(f, flag)
}

func (f UserFlags) String() string {
	return bitflags.Describe(f, userFlagNames)
}

func (f UserFlags) Value() (driver.Value, error) {
	return bitflags.Value32(f)
}

func (f *UserFlags) Scan(src any) error {
	return bitflags.Scan32(f, src)
}

func (f UserFlags) MarshalJSON() ([]byte, error) {
	return bitflags.MarshalJSON32(f)
}

func (f *UserFlags) UnmarshalJSON(data []byte) error {
	return bitflags.UnmarshalJSON32(f, data)
}

// User 用户模型
type User struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Username      string    `gorm:"column:username" json:"username"`
	Discriminator uint16    `gorm:"column:discriminator" json:"discriminator"`
	Avatar        *string   `gorm:"column:avatar" json:"avatar"`
	Banner        *string   `gorm:"column:banner" json:"banner"`
	Bio           *string   `gorm:"column:bio" json:"bio"`
	Flags         UserFlags `gorm:"column:flags" json:"flags"`
}

func (User) TableName() string {
	return "users"
}

// IsBot reports whether the account carries the bot flag.
func (u User) IsBot() bool {
	return u.Flags.Has(UserFlagBot)
}

func (u User) UserID() uint64 {
	return u.ID
}

func (User) isMaybePartialUser() {}

package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinUserNameLen = 2
	MaxUserNameLen = 32
	MinPasswordLen = 8
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72

	inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	InviteCodeLen  = 8
)

// HashPassword 使用 bcrypt 对密码进行哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword 验证密码
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidateUserName 验证用户名：去除首尾空白后 2-32 个字符，不含控制字符
func ValidateUserName(username string) bool {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < MinUserNameLen || n > MaxUserNameLen || !utf8.ValidString(username) {
		return false
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidatePassword 验证密码强度（至少8个字符，且不超过 bcrypt 的 72 字节上限）
func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLen && len(password) <= MaxPasswordBytes
}

// GenerateInviteCode 生成随机邀请码，去掉了容易混淆的字符
func GenerateInviteCode() (string, error) {
	limit := big.NewInt(int64(len(inviteAlphabet)))
	var b strings.Builder
	b.Grow(InviteCodeLen)
	for range InviteCodeLen {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/models"
)

const userColumns = "id, username, discriminator, avatar, banner, bio, flags"

type passwordRow struct {
	Password *string `gorm:"column:password"`
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository reading through tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select(userColumns).Where("id = ?", id).Take(&user).Error
	if err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &user, nil
}

// GetByUserName 根据用户名获取用户
func (r *UserRepository) GetByUserName(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select(userColumns).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return &user, nil
}

// GetPasswordHash returns the stored bcrypt hash. Accounts without a password
// (bots) report errs.ErrNotFound.
func (r *UserRepository) GetPasswordHash(ctx context.Context, id uint64) (string, error) {
	var row passwordRow
	err := r.db.WithContext(ctx).Table("users").Select("password").Where("id = ?", id).Take(&row).Error
	if err != nil {
		return "", notFound(err, "user %d", id)
	}
	if row.Password == nil {
		return "", fmt.Errorf("user %d has no password: %w", id, errs.ErrNotFound)
	}
	return *row.Password, nil
}

// ExistsByID 检查用户是否存在
func (r *UserRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, errs.ErrNotFound)...)
	}
	return fmt.Errorf("failed to get "+format+": %w", append(args, err)...)
}

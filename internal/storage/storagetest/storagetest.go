// Package storagetest opens throwaway databases with the production schema.
package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Gopher0727/Accounts/internal/storage"
)

// NewSQLite returns an in-memory database. The pool is pinned to one
// connection so the database lives as long as the test and concurrent
// transactions are serialised.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(storage.SQLiteDSN("file::memory:")), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, storage.EnsureSchema(db))
	return db
}

// SeedUser inserts a human account row directly.
func SeedUser(t testing.TB, db *gorm.DB, id uint64, username, passwordHash string) {
	t.Helper()
	err := db.Exec(
		"INSERT INTO users (id, username, discriminator, flags, password) VALUES (?, ?, ?, 0, ?)",
		id, username, 1, passwordHash,
	).Error
	require.NoError(t, err)
}

// SeedGuild inserts a guild owned by ownerID and makes the owner a member.
func SeedGuild(t testing.TB, db *gorm.DB, id, ownerID uint64, name string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		"INSERT INTO guilds (id, name, owner_id, flags, created_at) VALUES (?, ?, ?, 0, ?)",
		id, name, ownerID, now,
	).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO members (guild_id, user_id, joined_at) VALUES (?, ?, ?)",
		id, ownerID, now,
	).Error)
}

// Count returns the number of rows in table matching the optional where clause.
func Count(t testing.TB, db *gorm.DB, table, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

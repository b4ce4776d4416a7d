package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gopher0727/Accounts/internal/events"
	"github.com/Gopher0727/Accounts/internal/storage/storagetest"
	"github.com/Gopher0727/Accounts/internal/utils"
	"github.com/Gopher0727/Accounts/middleware/jwt"
	"github.com/Gopher0727/Accounts/utils/snowflake"
)

const (
	ownerID       uint64 = 1
	ownerPassword        = "owner-password"
)

// recorder keeps published events in order.
type recorder struct {
	mu     sync.Mutex
	events []events.AccountEvent
}

func (r *recorder) Publish(_ context.Context, e events.AccountEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) All() []events.AccountEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.AccountEvent(nil), r.events...)
}

func newIDs(t *testing.T) *snowflake.Generator {
	t.Helper()
	ids, err := snowflake.NewGenerator(snowflake.Config{WorkerID: 1})
	require.NoError(t, err)
	return ids
}

func newTokens() *jwt.TokenManager {
	return jwt.NewTokenManager("test-secret", 24, 168)
}

// seedOwner creates the human owner with a real bcrypt hash.
func seedOwner(t *testing.T, db *gorm.DB) {
	t.Helper()
	hash, err := utils.HashPassword(ownerPassword)
	require.NoError(t, err)
	storagetest.SeedUser(t, db, ownerID, "owner", hash)
}

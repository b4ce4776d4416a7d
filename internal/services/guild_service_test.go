package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/Accounts/internal/errs"
	"github.com/Gopher0727/Accounts/internal/models"
	"github.com/Gopher0727/Accounts/internal/storage/storagetest"
)

func TestGuildService_InviteFlow(t *testing.T) {
	db := storagetest.NewSQLite(t)
	seedOwner(t, db)
	storagetest.SeedUser(t, db, 2, "guest", "hash")
	storagetest.SeedUser(t, db, 3, "late", "hash")
	svc := NewGuildService(db, newIDs(t))
	ctx := context.Background()

	guild, err := svc.CreateGuild(ctx, ownerID, CreateGuildRequest{Name: " gophers ", Public: true})
	require.NoError(t, err)
	assert.Equal(t, "gophers", guild.Name)
	assert.True(t, guild.Flags.Has(models.GuildFlagPublic))

	_, err = svc.CreateInvite(ctx, 2, guild.ID, CreateInviteRequest{})
	assert.ErrorIs(t, err, ErrUserNotMember)

	invite, err := svc.CreateInvite(ctx, ownerID, guild.ID, CreateInviteRequest{MaxUses: 1})
	require.NoError(t, err)
	assert.Len(t, invite.Code, 8)
	require.NotNil(t, invite.Guild)

	fetched, err := svc.GetInvite(ctx, invite.Code)
	require.NoError(t, err)
	require.NotNil(t, fetched.Guild)
	require.NotNil(t, fetched.Guild.MemberCount)
	assert.Equal(t, uint32(1), *fetched.Guild.MemberCount)

	used, err := svc.UseInvite(ctx, 2, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), used.Uses)
	assert.Equal(t, int64(2), storagetest.Count(t, db, "members", "guild_id = ?", guild.ID))

	// Members re-using an invite do not consume it.
	_, err = svc.UseInvite(ctx, 2, invite.Code)
	require.NoError(t, err)

	_, err = svc.UseInvite(ctx, 3, invite.Code)
	assert.ErrorIs(t, err, errs.ErrInviteUnusable)
	assert.Equal(t, int64(2), storagetest.Count(t, db, "members", "guild_id = ?", guild.ID))

	invites, err := svc.ListInvites(ctx, 2, guild.ID)
	require.NoError(t, err)
	assert.Len(t, invites, 1)
}

func TestGuildService_ExpiredInvite(t *testing.T) {
	db := storagetest.NewSQLite(t)
	seedOwner(t, db)
	storagetest.SeedUser(t, db, 2, "guest", "hash")
	svc := NewGuildService(db, newIDs(t))
	ctx := context.Background()

	guild, err := svc.CreateGuild(ctx, ownerID, CreateGuildRequest{Name: "gophers"})
	require.NoError(t, err)
	invite, err := svc.CreateInvite(ctx, ownerID, guild.ID, CreateInviteRequest{MaxAge: 60})
	require.NoError(t, err)

	svc.now = func() time.Time { return invite.CreatedAt.Add(time.Minute) }
	_, err = svc.UseInvite(ctx, 2, invite.Code)
	assert.ErrorIs(t, err, errs.ErrInviteUnusable)

	_, err = svc.UseInvite(ctx, 2, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGuildService_CreateGuildRequiresName(t *testing.T) {
	db := storagetest.NewSQLite(t)
	seedOwner(t, db)
	_, err := NewGuildService(db, newIDs(t)).CreateGuild(context.Background(), ownerID, CreateGuildRequest{Name: "   "})
	assert.ErrorIs(t, err, errs.ErrInvalidName)
}

func TestGuildService_RevokeInvite(t *testing.T) {
	db := storagetest.NewSQLite(t)
	seedOwner(t, db)
	storagetest.SeedUser(t, db, 2, "member", "hash")
	storagetest.SeedUser(t, db, 3, "outsider", "hash")
	svc := NewGuildService(db, newIDs(t))
	ctx := context.Background()

	guild, err := svc.CreateGuild(ctx, ownerID, CreateGuildRequest{Name: "gophers"})
	require.NoError(t, err)
	ownerInvite, err := svc.CreateInvite(ctx, ownerID, guild.ID, CreateInviteRequest{})
	require.NoError(t, err)
	_, err = svc.UseInvite(ctx, 2, ownerInvite.Code)
	require.NoError(t, err)
	memberInvite, err := svc.CreateInvite(ctx, 2, guild.ID, CreateInviteRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RevokeInvite(ctx, 3, memberInvite.Code), ErrCannotRevokeInvite)
	assert.ErrorIs(t, svc.RevokeInvite(ctx, 2, ownerInvite.Code), ErrCannotRevokeInvite)

	// The inviter and the guild owner may both revoke.
	require.NoError(t, svc.RevokeInvite(ctx, 2, memberInvite.Code))
	require.NoError(t, svc.RevokeInvite(ctx, ownerID, ownerInvite.Code))
	assert.Equal(t, int64(0), storagetest.Count(t, db, "invites", "guild_id = ?", guild.ID))

	assert.ErrorIs(t, svc.RevokeInvite(ctx, ownerID, ownerInvite.Code), errs.ErrNotFound)
}

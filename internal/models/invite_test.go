package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvite_Usable(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		invite Invite
		now    time.Time
		want   bool
	}{
		{"unlimited and never expiring", Invite{CreatedAt: created, Uses: 1000}, created.Add(24 * 365 * time.Hour), true},
		{"uses below max", Invite{CreatedAt: created, Uses: 2, MaxUses: 3}, created, true},
		{"uses at max", Invite{CreatedAt: created, Uses: 3, MaxUses: 3}, created, false},
		{"before expiry", Invite{CreatedAt: created, MaxAge: 60}, created.Add(59 * time.Second), true},
		{"at expiry instant", Invite{CreatedAt: created, MaxAge: 60}, created.Add(60 * time.Second), false},
		{"after expiry", Invite{CreatedAt: created, MaxAge: 60}, created.Add(time.Hour), false},
		{"both limits satisfied", Invite{CreatedAt: created, MaxAge: 60, Uses: 1, MaxUses: 2}, created.Add(time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.invite.Usable(tt.now))
		})
	}
}

func TestInvite_ExpiresAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, Invite{CreatedAt: created}.ExpiresAt())

	at := Invite{CreatedAt: created, MaxAge: 3600}.ExpiresAt()
	require.NotNil(t, at)
	assert.Equal(t, created.Add(time.Hour), *at)
}

func TestInvite_JSONShape(t *testing.T) {
	channel := uint64(5)
	invite := Invite{
		Code:      "abc123",
		InviterID: 1,
		GuildID:   2,
		ChannelID: &channel,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxUses:   10,
	}

	data, err := json.Marshal(invite)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": "abc123",
		"inviter_id": 1,
		"guild": null,
		"guild_id": 2,
		"channel_id": 5,
		"created_at": "2024-01-01T00:00:00Z",
		"uses": 0,
		"max_uses": 10,
		"max_age": 0
	}`, string(data))

	invite.Guild = &PartialGuild{ID: 2, Name: "Lounge", OwnerID: 1, Flags: GuildFlagPublic}
	data, err = json.Marshal(invite)
	require.NoError(t, err)

	var decoded Invite
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Guild)
	assert.Equal(t, "Lounge", decoded.Guild.Name)
	assert.True(t, decoded.Guild.Flags.Has(GuildFlagPublic))
}

func TestGuildFlags_KeepsHighBits(t *testing.T) {
	flags := GuildFlagPublic | GuildFlags(1)<<40 | GuildFlags(-1<<63)

	v, err := flags.Value()
	require.NoError(t, err)
	var scanned GuildFlags
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, flags, scanned)

	data, err := json.Marshal(flags)
	require.NoError(t, err)
	var decoded GuildFlags
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, flags, decoded)
	assert.True(t, decoded.Has(GuildFlagPublic))
}

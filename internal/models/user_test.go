package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFlags(t *testing.T) {
	flags := UserFlagBot | UserFlagStaff
	assert.True(t, flags.Has(UserFlagBot))
	assert.False(t, flags.Has(UserFlagVerified))
	assert.Equal(t, "BOT|STAFF", flags.String())
	assert.Equal(t, "BOT|0x80000000", (UserFlagBot | 1<<31).String())
}

func TestUserFlags_RoundTripKeepsUnknownBits(t *testing.T) {
	flags := UserFlagBot | UserFlags(1<<20)

	data, err := json.Marshal(flags)
	require.NoError(t, err)
	assert.Equal(t, "1048577", string(data))

	var decoded UserFlags
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, flags, decoded)
	assert.True(t, decoded.Has(UserFlagBot))

	stored, err := flags.Value()
	require.NoError(t, err)
	var scanned UserFlags
	require.NoError(t, scanned.Scan(stored))
	assert.Equal(t, flags, scanned)
}

func TestUser_IsBot(t *testing.T) {
	assert.True(t, User{Flags: UserFlagBot}.IsBot())
	assert.False(t, User{Flags: UserFlagVerified}.IsBot())
}

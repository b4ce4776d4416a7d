package models

import (
	"encoding/json"
)

// Bot 机器人账号
//
// The embedded user is flattened into the bot object on the wire, next to
// owner_id. A partial user contributes only its id.
type Bot struct {
	User    MaybePartialUser
	OwnerID uint64
}

// ID is the bot's user id, shared by the users and bots rows.
func (b Bot) ID() uint64 {
	if b.User == nil {
		return 0
	}
	return b.User.UserID()
}

func (b Bot) MarshalJSON() ([]byte, error) {
	user, err := normalize(b.User)
	if err != nil {
		return nil, err
	}
	switch u := user.(type) {
	case User:
		return json.Marshal(struct {
			User
			OwnerID uint64 `json:"owner_id"`
		}{u, b.OwnerID})
	case PartialUser:
		return json.Marshal(struct {
			ID      uint64 `json:"id"`
			OwnerID uint64 `json:"owner_id"`
		}{u.ID, b.OwnerID})
	}
	panic("unreachable: normalize returned an unknown variant")
}

func (b *Bot) UnmarshalJSON(data []byte) error {
	var owner struct {
		OwnerID uint64 `json:"owner_id"`
	}
	if err := json.Unmarshal(data, &owner); err != nil {
		return err
	}
	user, err := UnmarshalMaybePartialUser(data)
	if err != nil {
		return err
	}
	b.User = user
	b.OwnerID = owner.OwnerID
	return nil
}

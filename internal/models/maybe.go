package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNilUser = errors.New("maybe-partial user is nil")

// MaybePartialUser is either a full User or a PartialUser carrying only the id.
// The set of variants is closed: User and PartialUser are the only implementations.
type MaybePartialUser interface {
	UserID() uint64
	isMaybePartialUser()
}

// PartialUser references a user by id without the fetched record.
type PartialUser struct {
	ID uint64 `json:"id"`
}

func (p PartialUser) UserID() uint64 {
	return p.ID
}

func (PartialUser) isMaybePartialUser() {}

// Full wraps a record that was just fetched or inserted.
func Full(u User) MaybePartialUser {
	return u
}

// Partial wraps a bare identifier.
func Partial(id uint64) MaybePartialUser {
	return PartialUser{ID: id}
}

// AsFull returns the full record if m holds one.
func AsFull(m MaybePartialUser) (User, bool) {
	switch v := m.(type) {
	case User:
		return v, true
	case *User:
		if v != nil {
			return *v, true
		}
	}
	return User{}, false
}

// normalize resolves pointer variants and rejects nil.
func normalize(m MaybePartialUser) (MaybePartialUser, error) {
	switch v := m.(type) {
	case User, PartialUser:
		return v, nil
	case *User:
		if v == nil {
			return nil, ErrNilUser
		}
		return *v, nil
	case *PartialUser:
		if v == nil {
			return nil, ErrNilUser
		}
		return *v, nil
	case nil:
		return nil, ErrNilUser
	default:
		return nil, fmt.Errorf("unknown maybe-partial user variant %T", m)
	}
}

// MarshalMaybePartialUser encodes the active variant: every user field for a
// full user, only the id for a partial one.
func MarshalMaybePartialUser(m MaybePartialUser) ([]byte, error) {
	v, err := normalize(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalMaybePartialUser decodes a full user when the object carries a
// username and a partial user otherwise.
func UnmarshalMaybePartialUser(data []byte) (MaybePartialUser, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["username"]; ok {
		var u User
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if _, ok := probe["id"]; !ok {
		return nil, errors.New("maybe-partial user: missing id")
	}
	var p PartialUser
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

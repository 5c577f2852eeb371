// Package domain holds the game entities: users, rooms, categories and boards.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username string) (*User, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	id := UserID(uuid.NewString())
	return &User{ID: id, Username: name}, nil
}

func (u *User) SetUsername(username string) error {
	name, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	u.Username = name
	return nil
}

func normalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if len(name) == 0 {
		return "", ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return name, nil
}

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            string         `bun:"id,pk" json:"id"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName     string         `bun:"first_name" json:"first_name,omitempty"`
	LastName      string         `bun:"last_name" json:"last_name,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"-"`
	Metadata      map[string]any `bun:"metadata,type:json" json:"metadata,omitempty"`
	LoggedInAt    *time.Time     `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

// BeforeAppendModel assigns an ID to new records and bumps timestamps
func (u *User) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now()
	switch query.(type) {
	case *bun.InsertQuery:
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.CreatedAt == nil {
			u.CreatedAt = &now
		}
		u.UpdatedAt = &now
	case *bun.UpdateQuery:
		u.UpdatedAt = &now
	}
	return nil
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// NewIdentityFromUser returns an Identity adapter for the provided user.
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return userIdentity{user: user}
}

type userIdentity struct {
	user *User
}

func (u userIdentity) ID() string {
	return u.user.ID
}

func (u userIdentity) Username() string {
	return u.user.Username
}

func (u userIdentity) Email() string {
	return u.user.Email
}

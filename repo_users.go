package auth

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the bun backed user store
type Users interface {
	UserFinder

	CreateSchema(ctx context.Context) error
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a Users store on top of db
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) CreateSchema(ctx context.Context) error {
	_, err := a.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return internalError(err, "failed to create users table")
	}
	return nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil {
		return nil, errors.New("user is required", errors.CategoryBadInput)
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, internalError(err, "failed to register user")
	}
	return user, nil
}

func (a *users) FindUserByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, nil
	}

	record := new(User)
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	return found(record, err, "failed to find user by id")
}

// FindUserByIdentifier matches on email when the identifier parses as an
// address and on username otherwise.
func (a *users) FindUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}

	column := "username"
	if addr, err := mail.ParseAddress(identifier); err == nil {
		column = "email"
		identifier = strings.ToLower(addr.Address)
	}

	record := new(User)
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), identifier).
		Limit(1).
		Scan(ctx)

	return found(record, err, "failed to find user by identifier")
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	if user == nil {
		return nil
	}

	now := time.Now()
	user.LoggedInAt = &now

	_, err := a.db.NewUpdate().
		Model(user).
		Column("loggedin_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return internalError(err, "failed to track login")
	}
	return nil
}

func found(record *User, err error, msg string) (*User, error) {
	if err == nil {
		return record, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, internalError(err, msg)
}

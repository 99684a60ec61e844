// Package store persists the TeamTrack aggregates in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamtrack/teamtrack/internal/crypto"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when users.email would no longer be unique.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInUse is returned when a row cannot be deleted because others reference it.
	ErrInUse = errors.New("referenced by other rows")
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a DBTX that can open transactions.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// classify maps PostgreSQL errors onto the package sentinels. Anything it
// does not recognise is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == "users_email_key" {
				return fmt.Errorf("%w: %s", ErrDuplicateEmail, pgErr.Detail)
			}
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}

type base struct {
	db     DB
	cipher *crypto.Cipher
}

func (b *base) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, b.db, fn)
}

// Stores bundles every entity store over one pool.
type Stores struct {
	Users   *UserStore
	Players *PlayerStore
	Coaches *CoachStore
	Teams   *TeamStore
	Games   *GameStore
}

// New wires all stores. cipher may be nil to store phone numbers in clear.
func New(db DB, cipher *crypto.Cipher) *Stores {
	b := &base{db: db, cipher: cipher}
	teams := &TeamStore{base: b}
	return &Stores{
		Users:   &UserStore{base: b},
		Players: &PlayerStore{base: b},
		Coaches: &CoachStore{base: b},
		Teams:   teams,
		Games:   &GameStore{base: b, teams: teams},
	}
}

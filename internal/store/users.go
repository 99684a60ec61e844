package store

import (
	"context"
	"fmt"

	"github.com/teamtrack/teamtrack/internal/domain"
)

const userColumns = `u.id, u.first_name, u.last_name, u.email, u.phone_number, u.password, u.role`

// UserStore provides database operations for users.
type UserStore struct {
	*base
}

// scanUser reads userColumns, opening the sealed phone number.
func (b *base) scanUser(scan func(dest ...any) error, extra ...any) (*domain.User, error) {
	u := &domain.User{}
	var phone, role string
	dest := append(extra, &u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &u.Password, &role)
	if err := scan(dest...); err != nil {
		return nil, err
	}
	opened, err := b.cipher.Open(phone)
	if err != nil {
		return nil, fmt.Errorf("opening phone number of user %d: %w", u.ID, err)
	}
	u.PhoneNumber = opened
	u.Role = domain.Role(role)
	return u, nil
}

// insertUser runs on db so it can join a caller's transaction.
func (b *base) insertUser(ctx context.Context, db DBTX, in *domain.User) (*domain.User, error) {
	phone, err := b.cipher.Seal(in.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("sealing phone number: %w", err)
	}

	var id int64
	err = db.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, phone_number, password, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		in.FirstName, in.LastName, in.Email, phone, in.Password, string(in.Role),
	).Scan(&id)
	if err != nil {
		return nil, classify(err)
	}

	out := *in
	out.ID = id
	return &out, nil
}

// Create inserts a user whose password is already hashed.
func (s *UserStore) Create(ctx context.Context, in *domain.User) (*domain.User, error) {
	u, err := s.insertUser(ctx, s.db, in)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.scanUser(func(dest ...any) error {
		return s.db.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", classify(err))
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.scanUser(func(dest ...any) error {
		return s.db.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1)`, email,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", classify(err))
	}
	return u, nil
}

// List returns all users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := s.scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update overwrites every column of the user row. Callers carry the stored
// password over themselves.
func (s *UserStore) Update(ctx context.Context, in *domain.User) (*domain.User, error) {
	phone, err := s.cipher.Seal(in.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("sealing phone number: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users
		 SET first_name = $2, last_name = $3, email = $4, phone_number = $5, password = $6, role = $7
		 WHERE id = $1`,
		in.ID, in.FirstName, in.LastName, in.Email, phone, in.Password, string(in.Role),
	)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", classify(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("updating user: %w", ErrNotFound)
	}

	out := *in
	return &out, nil
}

// Count is used by the seeder to decide whether the database is empty.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopora/user-service/internal/domain/entity"
	"github.com/shopora/user-service/internal/domain/repository"
)

const uniqueViolation = "23505"

// UserRepository is the pgx-backed implementation of
// repository.UserRepository. Users live in the users table; addresses are a
// child table ordered by seq so appends preserve insertion order.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, is_activated, profile_photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Password, u.Name, string(u.Role), u.IsActivated, u.ProfilePhoto)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT id, email, password_hash, name, role, is_activated, profile_photo, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT id, email, password_hash, name, role, is_activated, profile_photo, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var role string

	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &role,
		&u.IsActivated, &u.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)

	addrs, err := r.loadAddresses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Addresses = addrs
	return u, nil
}

func (r *UserRepository) loadAddresses(ctx context.Context, userID string) ([]entity.Address, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT country, city, line, pincode, address_type, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY seq
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Address
	for rows.Next() {
		var a entity.Address
		if err := rows.Scan(&a.Country, &a.City, &a.Line, &a.Pincode, &a.AddressType, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *UserRepository) SetActivated(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET is_activated = TRUE, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetProfilePhoto(ctx context.Context, id, photoURL string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET profile_photo = $1, updated_at = now()
		WHERE id = $2
	`, photoURL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AppendAddress(ctx context.Context, id string, addr entity.Address) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO addresses (user_id, seq, country, city, line, pincode, address_type)
		SELECT u.id, COALESCE((SELECT MAX(a.seq) FROM addresses a WHERE a.user_id = u.id), 0) + 1,
		       $2, $3, $4, $5, $6
		FROM users u
		WHERE u.id = $1
	`, id, addr.Country, addr.City, addr.Line, addr.Pincode, addr.AddressType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const userCols = `id, email, password_hash, role, full_name, address, location_x, location_y, created_at`

func (r *Repo) Insert(ctx context.Context, u *User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, password_hash, role, full_name, address, location_x, location_y)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FullName, u.Address, u.LocX, u.LocY,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: email already exists", apperr.ErrConflict)
	}
	return err
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.DB.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email=$1`, email))
}

func (r *Repo) FindByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(r.DB.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

// Location dipakai order service saat menghitung estimasi antar.
func (r *Repo) Location(ctx context.Context, userID string) (x, y int, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT location_x, location_y FROM users WHERE id=$1`, userID).Scan(&x, &y)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return x, y, err
}

func (r *Repo) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE users SET full_name=$2, address=$3, location_x=$4, location_y=$5 WHERE id=$1`,
		userID, p.FullName, p.Address, p.LocX, p.LocY,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) UpdatePassword(ctx context.Context, userID, hash string) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE users SET password_hash=$2 WHERE id=$1`, userID, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) scanOne(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.FullName, &u.Address, &u.LocX, &u.LocY, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	return u, err
}

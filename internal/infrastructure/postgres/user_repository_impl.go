package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptofolio/internal/domain/entity"
	"cryptofolio/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.AvatarURL)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	return r.getOne(`WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(email string) (*entity.User, error) {
	return r.getOne(`WHERE email = $1`, email)
}

func (r *UserRepository) GetByResetTokenHash(hash string) (*entity.User, error) {
	return r.getOne(`WHERE reset_token_hash = $1`, hash)
}

func (r *UserRepository) getOne(where string, arg any) (*entity.User, error) {
	ctx := context.Background()
	u := &entity.User{}

	var resetHash sql.NullString
	var resetExpires sql.NullTime

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, avatar_url,
		       reset_token_hash, reset_token_expires_at, created_at, updated_at
		FROM users
	`+where, arg)

	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL,
		&resetHash, &resetExpires, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if resetHash.Valid {
		u.ResetTokenHash = resetHash.String
	}
	if resetExpires.Valid {
		u.ResetTokenExpires = resetExpires.Time
	}

	return u, nil
}

// Update writes the whole user row, password and reset-token state
// included, so consuming a reset token and setting the new password is
// one statement.
func (r *UserRepository) Update(u *entity.User) error {
	ctx := context.Background()
	u.UpdatedAt = time.Now()

	var resetHash sql.NullString
	var resetExpires sql.NullTime
	if u.ResetTokenHash != "" {
		resetHash = sql.NullString{String: u.ResetTokenHash, Valid: true}
	}
	if !u.ResetTokenExpires.IsZero() {
		resetExpires = sql.NullTime{Time: u.ResetTokenExpires, Valid: true}
	}

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, avatar_url = $4,
		    reset_token_hash = $5, reset_token_expires_at = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Password, u.Name, u.AvatarURL, resetHash, resetExpires, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

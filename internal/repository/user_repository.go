package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub/internal/models"
	"coursehub/internal/workflow"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, display_name, role, profile_status, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.Role,
		&u.ProfileStatus,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, display_name, role, profile_status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.Role,
		user.ProfileStatus,
	)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, &workflow.NotFoundError{Entity: workflow.EntityAccount, ID: email}
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, &workflow.NotFoundError{Entity: workflow.EntityAccount, ID: id}
		}
		return models.User{}, err
	}
	return user, nil
}

// SetProfileStatusIf performs the conditional update backing validated
// transitions. A false return means the row exists but its status moved on.
func (r *UserRepository) SetProfileStatusIf(ctx context.Context, id string, from, to models.AccountStatus) (bool, error) {
	const query = `
		UPDATE users SET profile_status = $3, updated_at = NOW()
		WHERE id = $1 AND profile_status = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// ListPendingInstructors feeds the admin review queue, oldest first.
func (r *UserRepository) ListPendingInstructors(ctx context.Context) ([]models.User, error) {
	const query = `
		SELECT ` + userColumns + ` FROM users
		WHERE role = 'instructor' AND profile_status = 'pending'
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, rut, password_hash, rol, must_change_password, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByRut(ctx context.Context, rut string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE rut = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, rut))
}

// ListByRole returns every user with the given role. The user synchronizer
// relies on this full scan instead of per-RUT lookups: the distinct seller
// set of one import can run into the hundreds.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE rol = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.Rut,
			&user.PasswordHash,
			&user.Rol,
			&user.MustChangePassword,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, rut, password_hash, rol, must_change_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Rut,
		user.PasswordHash,
		user.Rol,
		user.MustChangePassword,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}

// CreateBatch inserts all users in a single multi-row statement. Either the
// whole batch lands or none of it does; callers that need per-user isolation
// fall back to Create.
func (r *UserRepository) CreateBatch(ctx context.Context, users []types.User) ([]types.User, error) {
	if len(users) == 0 {
		return nil, nil
	}

	now := time.Now()
	query := `INSERT INTO users (id, rut, password_hash, rol, must_change_password, created_at, updated_at) VALUES `
	args := make([]any, 0, len(users)*7)
	for i := range users {
		if users[i].ID == "" {
			users[i].ID = uuid.NewString()
		}
		users[i].CreatedAt = now
		users[i].UpdatedAt = now

		if i > 0 {
			query += ", "
		}
		query += placeholders(i*7, 7)
		args = append(args,
			users[i].ID,
			users[i].Rut,
			users[i].PasswordHash,
			users[i].Rol,
			users[i].MustChangePassword,
			users[i].CreatedAt,
			users[i].UpdatedAt,
		)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return users, nil
}

// UpdatePassword replaces the password hash and clears the
// must-change-password flag.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $1,
			must_change_password = FALSE,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Rut,
		&user.PasswordHash,
		&user.Rol,
		&user.MustChangePassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventscape/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `user_id, email, password_hash, display_name, notification_setting, created_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var displayName sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &displayName, &u.NotificationSetting, &u.CreatedAt); err != nil {
		return nil, err
	}
	if displayName.Valid {
		u.DisplayName = &displayName.String
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, display_name, notification_setting)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.DisplayName, u.NotificationSetting).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if errors.Is(translateError(err), domain.ErrConflict) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *userRepository) ListRecent(ctx context.Context, limit int) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	var setClauses []string
	var args []any
	n := 1
	if upd.DisplayName != nil {
		setClauses = append(setClauses, fmt.Sprintf("display_name = $%d", n))
		args = append(args, *upd.DisplayName)
		n++
	}
	if upd.NotificationSetting != nil {
		setClauses = append(setClauses, fmt.Sprintf("notification_setting = $%d", n))
		args = append(args, string(*upd.NotificationSetting))
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE user_id = $%d
		RETURNING `+userColumns, strings.Join(setClauses, ", "), n)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

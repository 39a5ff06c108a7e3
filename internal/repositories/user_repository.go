package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() (*sql.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, intconfig.ErrNoDatabase
}

// FindByLogin looks a user up by email or username.
func (r UserRepository) FindByLogin(ctx context.Context, login string) (models.User, error) {
	db, err := r.db()
	if err != nil {
		return models.User{}, err
	}

	login = strings.TrimSpace(login)
	var u models.User
	err = db.QueryRowContext(ctx, `
		SELECT id, name, username, email, password_hash, role, status, created_at
		FROM users
		WHERE email = ? OR username = ?
		LIMIT 1
	`, login, login).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r UserRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	db, err := r.db()
	if err != nil {
		return false, err
	}

	var n int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM users
		WHERE email = ? OR username = ?
	`, email, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return n > 0, nil
}

// Create inserts u as an active user and returns it with its new ID.
func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	db, err := r.db()
	if err != nil {
		return models.User{}, err
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.Status = "active"

	res, err := db.ExecContext(ctx, `
		INSERT INTO users (name, username, email, password_hash, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, u.Name, u.Username, u.Email, u.PasswordHash, u.Role, u.Status)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID, _ = res.LastInsertId()
	return u, nil
}

package store

import (
	"context"
	"fmt"
	"time"
)

const userColumns = `id, name, role, org_id, created_at`

// CreateUser inserts a user. CreatedAt is set when zero.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, string(u.Role), u.OrgID, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns a single user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return &u, nil
}

// ListUsers returns the users of an organization, or all users when orgID is empty.
func (s *Store) ListUsers(ctx context.Context, orgID string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if orgID != "" {
		query += ` WHERE org_id = ?`
		args = append(args, orgID)
	}
	query += ` ORDER BY name`

	var users []User
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/store"
)

const userColumns = `id, created_at, updated_at, name, username, email, image, github_id`

var userFields = map[string]column{
	domain.UserFieldName:     {name: "name", nullable: true},
	domain.UserFieldUsername: {name: "username", nullable: true},
	domain.UserFieldEmail:    {name: "email", nullable: true},
	domain.UserFieldImage:    {name: "image", nullable: true},
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
		updatedAt string
		name      sql.NullString
		username  sql.NullString
		email     sql.NullString
		image     sql.NullString
	)

	if err := row.Scan(&u.ID, &createdAt, &updatedAt, &name, &username, &email, &image, &u.GitHubID); err != nil {
		return nil, err
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	u.Name = name.String
	u.Username = username.String
	u.Email = email.String
	u.Image = image.String
	return &u, nil
}

// UpsertGitHubUser creates the user on first sign-in or refreshes the profile
// fields GitHub owns (name, image) on later sign-ins. Username and email are
// only filled when still empty so user edits are preserved.
func (s *Store) UpsertGitHubUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	now := formatTime(time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, name, username, email, image, github_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (github_id) DO UPDATE SET
			updated_at = excluded.updated_at,
			name = COALESCE(excluded.name, users.name),
			image = COALESCE(excluded.image, users.image),
			username = COALESCE(users.username, excluded.username),
			email = COALESCE(users.email, excluded.email)`,
		u.ID,
		now,
		now,
		nullString(u.Name),
		nullString(u.Username),
		nullString(u.Email),
		nullString(u.Image),
		u.GitHubID,
	)
	if err != nil {
		return nil, translateError(err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE github_id = ?`, u.GitHubID)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// UpdateUserFields writes the given profile fields and returns the updated user.
func (s *Store) UpdateUserFields(ctx context.Context, id string, fields store.Fields) (*domain.User, error) {
	if err := s.updateFields(ctx, "users", userFields, id, fields); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

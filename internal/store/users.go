package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jlcaburian/bodega/internal/model"
)

const userColumns = `id, name, username, password_hash, role, picture_mime, created_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var pictureMime sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Role,
		&pictureMime, &u.CreatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	u.PictureMime = pictureMime.String
	return u, nil
}

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db *sql.DB, name, username, passwordHash, role string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, username, password_hash, role) VALUES (?, ?, ?, ?)`,
		name, username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns an active user by username.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND deleted_at IS NULL`, username,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserRole updates a user's role.
func UpdateUserRole(ctx context.Context, db *sql.DB, id int64, role string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return nil
}

// UpdateUserProfile updates a user's display name and username.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id int64, name, username string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, username = ? WHERE id = ? AND deleted_at IS NULL`,
		name, username, id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user. Movement logs referencing the user
// are kept; only the account goes away.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// SetUserPicture sets a user's profile picture.
func SetUserPicture(ctx context.Context, db *sql.DB, id int64, picture []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET picture = ?, picture_mime = ? WHERE id = ? AND deleted_at IS NULL`,
		picture, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting user picture: %w", err)
	}
	return nil
}

// GetUserPicture returns a user's profile picture data and MIME type.
func GetUserPicture(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var picture []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT picture, picture_mime FROM users WHERE id = ?`, id,
	).Scan(&picture, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user picture: %w", err)
	}
	return picture, mime.String, nil
}

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/jlcaburian/bodega/internal/model"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	// Try to generate and insert first (safe against races).
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}

// GetSystemSettings returns the branding singleton, creating it with
// defaults on first access. The same INSERT OR IGNORE + re-SELECT
// pattern keeps concurrent first reads from racing.
func GetSystemSettings(ctx context.Context, db *sql.DB) (*model.SystemSettings, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO system_settings (id, name) VALUES (1, 'System')`,
	)
	if err != nil {
		return nil, fmt.Errorf("initializing system settings: %w", err)
	}

	s := &model.SystemSettings{}
	var mime sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT name, image_mime, updated_at FROM system_settings WHERE id = 1`,
	).Scan(&s.Name, &mime, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting system settings: %w", err)
	}
	s.ImageMime = mime.String
	return s, nil
}

// UpdateSystemSettings updates the display name of the singleton row.
func UpdateSystemSettings(ctx context.Context, db *sql.DB, name string) (*model.SystemSettings, error) {
	if _, err := GetSystemSettings(ctx, db); err != nil {
		return nil, err
	}
	_, err := db.ExecContext(ctx,
		`UPDATE system_settings SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("updating system settings: %w", err)
	}
	return GetSystemSettings(ctx, db)
}

// SetSystemImage replaces the branding image.
func SetSystemImage(ctx context.Context, db *sql.DB, image []byte, mime string) error {
	if _, err := GetSystemSettings(ctx, db); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`UPDATE system_settings SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		image, mime,
	)
	if err != nil {
		return fmt.Errorf("setting system image: %w", err)
	}
	return nil
}

// GetSystemImage returns the branding image data and MIME type.
func GetSystemImage(ctx context.Context, db *sql.DB) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM system_settings WHERE id = 1`,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting system image: %w", err)
	}
	return image, mime.String, nil
}

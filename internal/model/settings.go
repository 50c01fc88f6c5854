package model

import "time"

// SystemSettings is the singleton branding row, created lazily on first
// access.
type SystemSettings struct {
	Name      string    `json:"name"`
	ImageMime string    `json:"image_mime,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

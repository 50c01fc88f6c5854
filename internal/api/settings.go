package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/jlcaburian/bodega/internal/imaging"
	"github.com/jlcaburian/bodega/internal/store"
)

// SettingsHandler handles the system branding endpoints.
type SettingsHandler struct {
	DB *sql.DB
}

type updateSettingsRequest struct {
	Name string `json:"name"`
}

// Get handles GET /api/settings. Public: the login screen needs the
// branding before authentication.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := store.GetSystemSettings(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if len(req.Name) > 255 {
		jsonError(w, http.StatusBadRequest, "name must be at most 255 characters")
		return
	}

	settings, err := store.UpdateSystemSettings(r.Context(), h.DB, req.Name)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	slog.Info("system settings updated", "name", settings.Name)
	jsonResponse(w, http.StatusOK, settings)
}

// UploadImage handles PUT /api/settings/image.
func (h *SettingsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetSystemImage(r.Context(), h.DB, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/settings/image.
func (h *SettingsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetSystemImage(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

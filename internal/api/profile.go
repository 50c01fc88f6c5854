package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/jlcaburian/bodega/internal/imaging"
	"github.com/jlcaburian/bodega/internal/store"
)

// ProfileHandler handles the authenticated user's own profile.
type ProfileHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type deleteProfileRequest struct {
	Password string `json:"password"`
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		jsonError(w, http.StatusBadRequest, "username required")
		return
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, req.Name, req.Username); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UploadPicture handles PUT /api/profile/picture.
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("picture")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "picture file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetUserPicture(r.Context(), h.DB, claims.UserID, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save picture")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "picture uploaded"})
}

// GetPicture handles GET /api/users/{id}/picture.
func (h *ProfileHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	data, mime, err := store.GetUserPicture(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get picture")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no picture")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Delete handles DELETE /api/profile: password-confirmed account
// deletion. The account is soft-deleted and the current token revoked;
// movement logs authored by the user remain.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req deleteProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "password is incorrect")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, claims.UserID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
			slog.Error("failed to revoke token after account deletion", "error", err)
		}
	}

	slog.Info("account deleted", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

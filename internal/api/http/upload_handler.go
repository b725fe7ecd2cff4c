package http

import (
	"io"
	"net/http"
	"path"
	"strings"

	"rentnest-backend/internal/domain"

	"github.com/gorilla/mux"
)

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type newUploadRequest struct {
	Filename string `json:"filename" validate:"required"`
}

type newUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// ownsKey reports whether key lives under the user's document prefix.
func ownsKey(userID, key string) bool {
	return userID != "" && strings.HasPrefix(path.Clean(key), path.Join("kyc", userID)+"/")
}

// NewUpload allocates a document key the caller can PUT bytes to.
func (h *Handler) NewUpload(w http.ResponseWriter, r *http.Request) {
	var req newUploadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	key := h.documents.NewKey(userID(r), req.Filename)
	writeJSON(w, http.StatusCreated, newUploadResponse{Key: key, UploadURL: h.documents.UploadURL(key)})
}

// PutUpload stores a verification document under the caller's prefix
func (h *Handler) PutUpload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !ownsKey(userID(r), key) {
		writeError(w, domain.ErrForbidden)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !allowedDocumentTypes[contentType] {
		writeError(w, domain.Invalid("unsupported content type %q", contentType))
		return
	}

	n, err := h.documents.Save(r.Context(), key, r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "size": n})
}

// GetUpload streams a document back to its owner or an admin
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !ownsKey(userID(r), key) && callerRole(r) != domain.UserRoleSuperAdmin {
		writeError(w, domain.ErrForbidden)
		return
	}

	file, err := h.documents.Open(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	// Determine content type from file extension
	contentType := "application/octet-stream"
	switch path.Ext(key) {
	case ".pdf":
		contentType = "application/pdf"
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")

	io.Copy(w, file)
}

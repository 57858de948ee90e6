// internal/profile/handlers.go
package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
	"github.com/koinoniahq/koinonia-backend/internal/common/utils"
)

// Handlers exposes the profile service over HTTP.
type Handlers struct {
	service       *Service
	maxUploadSize int64
}

// NewHandlers creates the profile HTTP handlers.
func NewHandlers(service *Service, maxUploadSize int64) *Handlers {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &Handlers{service: service, maxUploadSize: maxUploadSize}
}

// GetOwn handles GET /profile. First access creates the row.
func (h *Handlers) GetOwn(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetOrCreateOwn(r.Context())
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, profile, http.StatusOK)
}

// GetByUsername handles GET /profiles/{username}
func (h *Handlers) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	profile, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, profile, http.StatusOK)
}

// Update handles PUT /profile
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.service.Update(r.Context(), &req)
	if err != nil {
		if apperrors.IsAuth(err) || apperrors.IsNotFound(err) || errors.Is(err, apperrors.ErrWrite) {
			utils.ErrorFromTaxonomy(w, err)
		} else {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.SuccessResponse(w, profile, http.StatusOK)
}

// UploadAvatar handles POST /profile/avatar with a multipart "avatar" part.
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		utils.ErrorResponse(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.ErrorResponse(w, "Avatar file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	profile, err := h.service.UploadAvatar(r.Context(), header.Filename, file)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, profile, http.StatusOK)
}

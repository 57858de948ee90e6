// internal/devotionals/handlers.go
package devotionals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
	"github.com/koinoniahq/koinonia-backend/internal/common/utils"
)

// Handlers exposes the devotionals service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates the devotionals HTTP handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// List handles GET /devotionals?limit=N
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	devotionals, err := h.service.List(r.Context(), limit)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, devotionals, http.StatusOK)
}

// Today handles GET /devotionals/today
func (h *Handlers) Today(w http.ResponseWriter, r *http.Request) {
	devotional, err := h.service.Today(r.Context())
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, devotional, http.StatusOK)
}

// Create handles POST /devotionals
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDevotionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	devotional, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if apperrors.IsAuth(err) || errors.Is(err, apperrors.ErrWrite) {
			utils.ErrorFromTaxonomy(w, err)
		} else {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.SuccessResponse(w, devotional, http.StatusCreated)
}

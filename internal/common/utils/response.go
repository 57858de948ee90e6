// internal/common/utils/response.go
// Standardized API responses ensure consistency across all endpoints

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
)

// Response is the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   message,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(Response{
		Success: true,
		Message: message,
	})
}

// ErrorFromTaxonomy maps a service error onto the HTTP status it deserves.
// Auth -> 401, forbidden -> 403, not found -> 404, everything else -> 500.
func ErrorFromTaxonomy(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsAuth(err):
		ErrorResponse(w, "Please sign in", http.StatusUnauthorized)
	case apperrors.IsForbidden(err):
		ErrorResponse(w, "You do not own this resource", http.StatusForbidden)
	case apperrors.IsNotFound(err):
		ErrorResponse(w, "Not found", http.StatusNotFound)
	default:
		ErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

// internal/posts/handlers.go
package posts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
	"github.com/koinoniahq/koinonia-backend/internal/common/utils"
)

// Handlers exposes the posts service over HTTP.
type Handlers struct {
	service       *Service
	maxUploadSize int64
}

// NewHandlers creates the posts HTTP handlers. maxUploadSize caps the
// multipart form memory for post creation.
func NewHandlers(service *Service, maxUploadSize int64) *Handlers {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &Handlers{service: service, maxUploadSize: maxUploadSize}
}

// GetFeed handles GET /posts
func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetFeed(r.Context())
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, posts, http.StatusOK)
}

// GetPost handles GET /posts/{id}
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	post, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, post, http.StatusOK)
}

// CreatePost handles POST /posts. Accepts multipart/form-data with title,
// content, and zero or more "files" parts, or a plain JSON body for posts
// without attachments.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := h.decodeCreateRequest(r)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer cleanup()

	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		if apperrors.IsAuth(err) || errors.Is(err, apperrors.ErrUpload) || errors.Is(err, apperrors.ErrWrite) {
			utils.ErrorFromTaxonomy(w, err)
		} else {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.SuccessResponse(w, post, http.StatusCreated)
}

func (h *Handlers) decodeCreateRequest(r *http.Request) (*CreatePostRequest, func(), error) {
	noop := func() {}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return nil, noop, fmt.Errorf("invalid multipart form: %v", err)
		}

		req := &CreatePostRequest{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
		}

		var closers []io.Closer
		cleanup := func() {
			for _, c := range closers {
				c.Close()
			}
		}
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				cleanup()
				return nil, noop, fmt.Errorf("open upload %q: %v", fh.Filename, err)
			}
			closers = append(closers, f)
			req.Files = append(req.Files, FileUpload{Name: fh.Filename, Content: f})
		}
		return req, cleanup, nil
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, noop, fmt.Errorf("invalid request body: %v", err)
	}
	return &req, noop, nil
}

// GetLiked handles GET /posts/{id}/liked
func (h *Handlers) GetLiked(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	liked, err := h.service.IsLiked(r.Context(), postID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, map[string]bool{"liked": liked}, http.StatusOK)
}

// ToggleLike handles POST /posts/{id}/like and returns the new state.
func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	liked, err := h.service.ToggleLike(r.Context(), postID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, map[string]bool{"liked": liked}, http.StatusOK)
}

// ListComments handles GET /posts/{id}/comments
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	comments, err := h.service.ListComments(r.Context(), postID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, comments, http.StatusOK)
}

// AddComment handles POST /posts/{id}/comments
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), postID, &req)
	if err != nil {
		if apperrors.IsAuth(err) || errors.Is(err, apperrors.ErrWrite) {
			utils.ErrorFromTaxonomy(w, err)
		} else {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.SuccessResponse(w, comment, http.StatusCreated)
}

// UpdateComment handles PUT /comments/{id}
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), commentID, &req)
	if err != nil {
		if apperrors.IsAuth(err) || apperrors.IsForbidden(err) || apperrors.IsNotFound(err) ||
			errors.Is(err, apperrors.ErrWrite) || errors.Is(err, apperrors.ErrFetch) {
			utils.ErrorFromTaxonomy(w, err)
		} else {
			utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	utils.SuccessResponse(w, comment, http.StatusOK)
}

// DeleteComment handles DELETE /comments/{id}
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]

	if err := h.service.DeleteComment(r.Context(), commentID); err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.MessageResponse(w, "Comment deleted", http.StatusOK)
}

// internal/profile/service.go
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
	"github.com/koinoniahq/koinonia-backend/internal/common/utils"
	"github.com/koinoniahq/koinonia-backend/internal/storage"
)

const uniqueViolation = "23505"

// Service implements profile get-or-create and editing.
type Service struct {
	repo  Repository
	blobs storage.BlobStore
}

// NewService wires the profile service.
func NewService(repo Repository, blobs storage.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// GetOrCreateOwn returns the caller's profile, creating a minimal row on
// first access. The initial username is the local part of the account email;
// on a collision a short random suffix disambiguates.
func (s *Service) GetOrCreateOwn(ctx context.Context) (*Profile, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetByID(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	username := usernameFromEmail(identity.Email)
	profile = &Profile{ID: identity.UserID, Username: username, MinistryRoles: pq.StringArray{}}

	err = s.repo.Create(ctx, profile)
	if isUniqueViolation(err) {
		profile.Username = fmt.Sprintf("%s_%s", username, uuid.New().String()[:8])
		err = s.repo.Create(ctx, profile)
	}
	if isUniqueViolation(err) {
		// The id itself conflicted: a concurrent first request won the insert.
		existing, getErr := s.repo.GetByID(ctx, identity.UserID)
		if getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}
	return profile, nil
}

// GetByUsername looks up a public profile.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	profile, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	return profile, nil
}

// Update edits the caller's own profile.
func (s *Service) Update(ctx context.Context, req *UpdateProfileRequest) (*Profile, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.Update(ctx, identity.UserID, req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}
	return profile, nil
}

// UploadAvatar stores a new avatar blob and points the caller's profile at
// it. The previous avatar blob is deleted best-effort.
func (s *Service) UploadAvatar(ctx context.Context, name string, content io.Reader) (*Profile, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, identity.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	key := storage.NewObjectKey(name)
	url, err := s.blobs.Upload(ctx, storage.BucketAvatars, key, storage.ContentTypeFor(name), content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpload, err)
	}

	if err := s.repo.UpdateAvatar(ctx, identity.UserID, url); err != nil {
		if delErr := s.blobs.Delete(ctx, url); delErr != nil {
			log.Printf("failed to clean up avatar %s: %v", url, delErr)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}

	if current.AvatarURL != "" {
		if delErr := s.blobs.Delete(ctx, current.AvatarURL); delErr != nil {
			log.Printf("failed to delete old avatar %s: %v", current.AvatarURL, delErr)
		}
	}

	current.AvatarURL = url
	return current, nil
}

// usernameFromEmail derives a starting username from the account email,
// "jane@example.com" becomes "jane". An empty email gets a random handle.
func usernameFromEmail(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	if local == "" {
		return "user_" + uuid.New().String()[:8]
	}
	return local
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

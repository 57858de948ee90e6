package profile

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
)

type fakeRepo struct {
	mu       sync.Mutex
	byID     map[string]Profile
	taken    map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]Profile), taken: make(map[string]bool)}
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Username == username {
			p := p
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeRepo) Create(_ context.Context, profile *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken[profile.Username] {
		return &pq.Error{Code: "23505"}
	}
	r.taken[profile.Username] = true
	r.byID[profile.ID] = *profile
	return nil
}

func (r *fakeRepo) Update(_ context.Context, id string, req *UpdateProfileRequest) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	p.FullName = req.FullName
	p.Bio = req.Bio
	p.Location = req.Location
	p.ChurchName = req.ChurchName
	p.MinistryRoles = req.MinistryRoles
	p.FavoriteBibleVerse = req.FavoriteBibleVerse
	p.WebsiteURL = req.WebsiteURL
	r.byID[id] = p
	return &p, nil
}

func (r *fakeRepo) UpdateAvatar(_ context.Context, id, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.AvatarURL = avatarURL
	r.byID[id] = p
	return nil
}

type fakeBlobs struct {
	uploaded []string
	deleted  []string
}

func (b *fakeBlobs) Upload(_ context.Context, bucket, key, _ string, _ io.Reader) (string, error) {
	url := "https://blobs.test/" + bucket + "/" + key
	b.uploaded = append(b.uploaded, url)
	return url, nil
}

func (b *fakeBlobs) Delete(_ context.Context, publicURL string) error {
	b.deleted = append(b.deleted, publicURL)
	return nil
}

func authedCtx(userID, email string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: userID, Email: email})
}

func TestGetOrCreateOwnDerivesUsernameFromEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeBlobs{})

	profile, err := svc.GetOrCreateOwn(authedCtx("u1", "jane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "jane", profile.Username)
}

func TestGetOrCreateOwnIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeBlobs{})
	ctx := authedCtx("u1", "jane@example.com")

	first, err := svc.GetOrCreateOwn(ctx)
	require.NoError(t, err)
	second, err := svc.GetOrCreateOwn(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Username, second.Username)
	assert.Len(t, repo.byID, 1)
}

func TestGetOrCreateOwnDisambiguatesTakenUsername(t *testing.T) {
	repo := newFakeRepo()
	repo.taken["jane"] = true
	svc := NewService(repo, &fakeBlobs{})

	profile, err := svc.GetOrCreateOwn(authedCtx("u2", "jane@another.org"))
	require.NoError(t, err)
	assert.NotEqual(t, "jane", profile.Username)
	assert.Contains(t, profile.Username, "jane_")
}

func TestGetOrCreateOwnRequiresIdentity(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeBlobs{})

	_, err := svc.GetOrCreateOwn(context.Background())
	assert.True(t, apperrors.IsAuth(err))
}

func TestGetByUsernameNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeBlobs{})

	_, err := svc.GetByUsername(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateOwnProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeBlobs{})
	ctx := authedCtx("u1", "jane@example.com")

	_, err := svc.GetOrCreateOwn(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, &UpdateProfileRequest{
		FullName:      "Jane Doe",
		ChurchName:    "Grace Chapel",
		MinistryRoles: []string{"worship", "youth"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.FullName)
	assert.Equal(t, "Grace Chapel", updated.ChurchName)
}

func TestUploadAvatarReplacesOldBlob(t *testing.T) {
	repo := newFakeRepo()
	blobs := &fakeBlobs{}
	svc := NewService(repo, blobs)
	ctx := authedCtx("u1", "jane@example.com")

	_, err := svc.GetOrCreateOwn(ctx)
	require.NoError(t, err)

	first, err := svc.UploadAvatar(ctx, "me.png", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AvatarURL)

	second, err := svc.UploadAvatar(ctx, "me2.png", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.AvatarURL, second.AvatarURL)
	assert.Contains(t, blobs.deleted, first.AvatarURL)
}

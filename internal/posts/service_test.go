package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
	"github.com/koinoniahq/koinonia-backend/internal/cache"
	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
)

type fakeRepo struct {
	mu sync.Mutex

	posts    []Post
	comments map[string]Comment
	likes    map[string]bool

	listCalls     int
	createPostErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		comments: make(map[string]Comment),
		likes:    make(map[string]bool),
	}
}

func likeKey(postID, userID string) string { return postID + "|" + userID }

func (r *fakeRepo) ListPosts(_ context.Context) ([]Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	return append([]Post{}, r.posts...), nil
}

func (r *fakeRepo) GetPost(_ context.Context, postID string) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == postID {
			p := p
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeRepo) CreatePost(_ context.Context, post *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createPostErr != nil {
		return r.createPostErr
	}
	post.CreatedAt = time.Now()
	r.posts = append(r.posts, *post)
	return nil
}

func (r *fakeRepo) IsLiked(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.likes[likeKey(postID, userID)], nil
}

func (r *fakeRepo) InsertLike(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.likes[likeKey(postID, userID)] = true
	return nil
}

func (r *fakeRepo) DeleteLike(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes, likeKey(postID, userID))
	return nil
}

func (r *fakeRepo) ListComments(_ context.Context, postID string) ([]Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comments := []Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (r *fakeRepo) CreateComment(_ context.Context, comment *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeRepo) GetComment(_ context.Context, commentID string) (*Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r *fakeRepo) UpdateComment(_ context.Context, commentID, userID, content string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok || c.UserID != userID {
		return 0, nil
	}
	c.Content = content
	c.UpdatedAt = time.Now().Add(time.Millisecond)
	r.comments[commentID] = c
	return 1, nil
}

func (r *fakeRepo) DeleteComment(_ context.Context, commentID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok || c.UserID != userID {
		return 0, nil
	}
	delete(r.comments, commentID)
	return 1, nil
}

// fakeBlobs fails any upload whose object key ends in ".bad" and records
// every upload and delete.
type fakeBlobs struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (b *fakeBlobs) Upload(_ context.Context, bucket, key, _ string, _ io.Reader) (string, error) {
	if strings.HasSuffix(key, ".bad") {
		return "", errors.New("simulated upload failure")
	}
	url := fmt.Sprintf("https://blobs.test/%s/%s", bucket, key)
	b.mu.Lock()
	b.uploaded = append(b.uploaded, url)
	b.mu.Unlock()
	return url, nil
}

func (b *fakeBlobs) Delete(_ context.Context, publicURL string) error {
	b.mu.Lock()
	b.deleted = append(b.deleted, publicURL)
	b.mu.Unlock()
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeBlobs, *cache.MemoryStore) {
	repo := newFakeRepo()
	blobs := &fakeBlobs{}
	store := cache.NewMemoryStore()
	svc := NewService(repo, blobs, store, ServiceOptions{MaxAttachments: 3})
	return svc, repo, blobs, store
}

func authedCtx(userID string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{
		UserID: userID,
		Email:  userID + "@example.com",
	})
}

func TestCreatePostUploadsAndInserts(t *testing.T) {
	svc, repo, blobs, _ := newTestService()

	req := &CreatePostRequest{
		Title:   "Sunday reflections",
		Content: "What a service #Blessed #Grateful",
		Files: []FileUpload{
			{Name: "one.jpg", Content: strings.NewReader("a")},
			{Name: "two.png", Content: strings.NewReader("b")},
		},
	}

	post, err := svc.CreatePost(authedCtx("user-1"), req)
	require.NoError(t, err)

	assert.Equal(t, "user-1", post.UserID)
	assert.Equal(t, []string{"Blessed", "Grateful"}, post.Hashtags)
	require.Len(t, post.Attachments, 2)
	assert.Equal(t, "one.jpg", post.Attachments[0].Name)
	assert.Equal(t, "two.png", post.Attachments[1].Name)
	assert.Len(t, blobs.uploaded, 2)
	assert.Empty(t, blobs.deleted)
	assert.Len(t, repo.posts, 1)
}

func TestCreatePostRequiresIdentity(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.CreatePost(context.Background(), &CreatePostRequest{
		Title:   "anon",
		Content: "should fail",
	})

	assert.True(t, apperrors.IsAuth(err))
	assert.Empty(t, repo.posts)
}

func TestCreatePostAllOrNothingOnUploadFailure(t *testing.T) {
	svc, repo, blobs, _ := newTestService()

	req := &CreatePostRequest{
		Title:   "mixed upload",
		Content: "some of these will not make it",
		Files: []FileUpload{
			{Name: "ok.jpg", Content: strings.NewReader("a")},
			{Name: "broken.bad", Content: strings.NewReader("b")},
		},
	}

	_, err := svc.CreatePost(authedCtx("user-1"), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpload))

	assert.Empty(t, repo.posts, "no post row after a failed upload")
	assert.ElementsMatch(t, blobs.uploaded, blobs.deleted,
		"every blob uploaded before the failure gets cleaned up")
}

func TestCreatePostCleansUpWhenInsertFails(t *testing.T) {
	svc, repo, blobs, _ := newTestService()
	repo.createPostErr = errors.New("db down")

	req := &CreatePostRequest{
		Title:   "doomed",
		Content: "uploads succeed then the insert fails",
		Files: []FileUpload{
			{Name: "one.jpg", Content: strings.NewReader("a")},
		},
	}

	_, err := svc.CreatePost(authedCtx("user-1"), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrWrite))
	assert.ElementsMatch(t, blobs.uploaded, blobs.deleted)
}

func TestCreatePostRejectsTooManyAttachments(t *testing.T) {
	svc, _, blobs, _ := newTestService()

	files := make([]FileUpload, 4)
	for i := range files {
		files[i] = FileUpload{Name: fmt.Sprintf("f%d.jpg", i), Content: strings.NewReader("x")}
	}

	_, err := svc.CreatePost(authedCtx("user-1"), &CreatePostRequest{
		Title:   "too many",
		Content: "x",
		Files:   files,
	})

	require.Error(t, err)
	assert.Empty(t, blobs.uploaded)
}

func TestCreatePostInvalidatesFeedCache(t *testing.T) {
	svc, _, _, store := newTestService()
	ctx := authedCtx("user-1")

	store.Set(ctx, cache.FeedKey, []byte("[]"), 0)

	_, err := svc.CreatePost(ctx, &CreatePostRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, ok := store.Get(ctx, cache.FeedKey)
	assert.False(t, ok)
}

func TestGetFeedCachesResult(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.posts = []Post{{ID: "p1", Title: "hello", Attachments: AttachmentList{}, Hashtags: []string{}}}

	first, err := svc.GetFeed(context.Background())
	require.NoError(t, err)
	second, err := svc.GetFeed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls, "second read comes from cache")
}

func TestGetPostNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetPost(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestToggleLikeInvolution(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := authedCtx("user-1")

	liked, err := svc.ToggleLike(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, liked)

	assert.False(t, repo.likes[likeKey("p1", "user-1")])
}

func TestToggleLikeInvalidatesCaches(t *testing.T) {
	svc, _, _, store := newTestService()
	ctx := authedCtx("user-1")

	store.Set(ctx, cache.FeedKey, []byte("[]"), 0)
	store.Set(ctx, cache.LikedKey("p1", "user-1"), []byte("0"), 0)

	_, err := svc.ToggleLike(ctx, "p1")
	require.NoError(t, err)

	_, ok := store.Get(ctx, cache.FeedKey)
	assert.False(t, ok)
	_, ok = store.Get(ctx, cache.LikedKey("p1", "user-1"))
	assert.False(t, ok)
}

func TestToggleLikeRequiresIdentity(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.ToggleLike(context.Background(), "p1")
	assert.True(t, apperrors.IsAuth(err))
}

func TestIsLikedAnonymousIsFalse(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.likes[likeKey("p1", "user-1")] = true

	liked, err := svc.IsLiked(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestIsLikedReadThrough(t *testing.T) {
	svc, repo, _, store := newTestService()
	ctx := authedCtx("user-1")
	repo.likes[likeKey("p1", "user-1")] = true

	liked, err := svc.IsLiked(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, liked)

	data, ok := store.Get(ctx, cache.LikedKey("p1", "user-1"))
	require.True(t, ok)
	assert.Equal(t, "1", string(data))
}

func TestAddCommentInvalidatesCommentAndFeedCaches(t *testing.T) {
	svc, repo, _, store := newTestService()
	ctx := authedCtx("user-1")

	store.Set(ctx, cache.FeedKey, []byte("[]"), 0)
	store.Set(ctx, cache.CommentsKey("p1"), []byte("[]"), 0)

	comment, err := svc.AddComment(ctx, "p1", &CommentRequest{Content: "Amen"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", comment.UserID)
	assert.Len(t, repo.comments, 1)

	_, ok := store.Get(ctx, cache.FeedKey)
	assert.False(t, ok)
	_, ok = store.Get(ctx, cache.CommentsKey("p1"))
	assert.False(t, ok)
}

func TestAddCommentRejectsBlankContent(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.AddComment(authedCtx("user-1"), "p1", &CommentRequest{Content: "   "})
	require.Error(t, err)
	assert.Empty(t, repo.comments)
}

func TestUpdateCommentByOwner(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := authedCtx("user-1")

	created, err := svc.AddComment(ctx, "p1", &CommentRequest{Content: "first draft"})
	require.NoError(t, err)

	updated, err := svc.UpdateComment(ctx, created.ID, &CommentRequest{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.True(t, updated.Edited())
}

func TestUpdateCommentByNonOwnerForbidden(t *testing.T) {
	svc, repo, _, _ := newTestService()

	created, err := svc.AddComment(authedCtx("user-1"), "p1", &CommentRequest{Content: "mine"})
	require.NoError(t, err)

	_, err = svc.UpdateComment(authedCtx("user-2"), created.ID, &CommentRequest{Content: "stolen"})
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, "mine", repo.comments[created.ID].Content)
}

func TestUpdateCommentNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.UpdateComment(authedCtx("user-1"), "missing", &CommentRequest{Content: "x"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteCommentByOwner(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := authedCtx("user-1")

	created, err := svc.AddComment(ctx, "p1", &CommentRequest{Content: "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComment(ctx, created.ID))
	assert.Empty(t, repo.comments)
}

func TestDeleteCommentByNonOwnerForbidden(t *testing.T) {
	svc, repo, _, _ := newTestService()

	created, err := svc.AddComment(authedCtx("user-1"), "p1", &CommentRequest{Content: "mine"})
	require.NoError(t, err)

	err = svc.DeleteComment(authedCtx("user-2"), created.ID)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Len(t, repo.comments, 1)
}

// internal/posts/service.go
package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
	"github.com/koinoniahq/koinonia-backend/internal/cache"
	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
	"github.com/koinoniahq/koinonia-backend/internal/common/utils"
	"github.com/koinoniahq/koinonia-backend/internal/storage"
)

// Service implements the feed synchronization layer: feed reads, post
// creation with attachment upload orchestration, like toggling, and comment
// CRUD. Consistency after a mutation comes from invalidating the dependent
// cache keys and re-fetching, not from updating cached views in place.
type Service struct {
	repo  Repository
	blobs storage.BlobStore
	cache cache.Store

	cacheTTL       time.Duration
	maxAttachments int
}

// ServiceOptions tune the service; zero values fall back to defaults.
type ServiceOptions struct {
	CacheTTL       time.Duration
	MaxAttachments int
}

// NewService wires the posts service. The cache handle is injected; there is
// no package-level cache.
func NewService(repo Repository, blobs storage.BlobStore, cacheStore cache.Store, opts ServiceOptions) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.MaxAttachments <= 0 {
		opts.MaxAttachments = 10
	}
	return &Service{
		repo:           repo,
		blobs:          blobs,
		cache:          cacheStore,
		cacheTTL:       opts.CacheTTL,
		maxAttachments: opts.MaxAttachments,
	}
}

// GetFeed returns every post, newest first. Read-through cached under the
// feed key; a single repository attempt, no retry.
func (s *Service) GetFeed(ctx context.Context) ([]Post, error) {
	if data, ok := s.cache.Get(ctx, cache.FeedKey); ok {
		var posts []Post
		if err := json.Unmarshal(data, &posts); err == nil {
			feedCacheTotal.WithLabelValues("hit").Inc()
			return posts, nil
		}
	}
	feedCacheTotal.WithLabelValues("miss").Inc()

	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	if data, err := json.Marshal(posts); err == nil {
		s.cache.Set(ctx, cache.FeedKey, data, s.cacheTTL)
	}
	return posts, nil
}

// GetPost returns a single post with its derived counts.
func (s *Service) GetPost(ctx context.Context, postID string) (*Post, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	return post, nil
}

// CreatePost uploads every attachment, derives hashtags from the body, and
// inserts a single post row. Creation is all-or-nothing at the upload stage:
// any upload failure fails the whole operation, and blobs uploaded before
// the failure are deleted best-effort.
func (s *Service) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Files) > s.maxAttachments {
		return nil, fmt.Errorf("maximum %d attachments allowed per post", s.maxAttachments)
	}

	attachments, err := s.uploadAll(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:          uuid.New().String(),
		UserID:      identity.UserID,
		Title:       req.Title,
		Content:     req.Content,
		Attachments: attachments,
		Hashtags:    ExtractHashtags(req.Content),
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		s.deleteBlobs(ctx, attachments)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}

	postsCreatedTotal.Inc()
	s.cache.Invalidate(ctx, cache.FeedKey)
	return post, nil
}

// uploadAll pushes every file to the blob store concurrently and joins on
// completion. Results keep the caller's file order.
func (s *Service) uploadAll(ctx context.Context, files []FileUpload) (AttachmentList, error) {
	attachments := make(AttachmentList, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			key := storage.NewObjectKey(f.Name)
			contentType := storage.ContentTypeFor(f.Name)

			url, err := s.blobs.Upload(gctx, storage.BucketPostAttachments, key, contentType, f.Content)
			if err != nil {
				return fmt.Errorf("upload %q: %v", f.Name, err)
			}
			attachments[i] = Attachment{URL: url, Type: contentType, Name: f.Name}
			attachmentsUploadedTotal.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.deleteBlobs(ctx, attachments)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpload, err)
	}
	return attachments, nil
}

// deleteBlobs is the compensating cleanup for a failed creation. Failures
// here only get logged; orphan sweeping is an offline concern.
func (s *Service) deleteBlobs(ctx context.Context, attachments AttachmentList) {
	for _, a := range attachments {
		if a.URL == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, a.URL); err != nil {
			log.Printf("failed to clean up attachment %s: %v", a.URL, err)
		}
	}
}

// IsLiked reports whether the calling user has liked the post. Anonymous
// callers are never "liking". Read-through cached per (post, user).
func (s *Service) IsLiked(ctx context.Context, postID string) (bool, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return false, nil
	}

	key := cache.LikedKey(postID, identity.UserID)
	if data, ok := s.cache.Get(ctx, key); ok {
		return string(data) == "1", nil
	}

	liked, err := s.repo.IsLiked(ctx, postID, identity.UserID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	val := []byte("0")
	if liked {
		val = []byte("1")
	}
	s.cache.Set(ctx, key, val, s.cacheTTL)
	return liked, nil
}

// ToggleLike reads the caller's current like row and performs the inverse
// action. Two racing toggles from the same user are best-effort, not
// linearizable; the primary key keeps the row set consistent either way.
func (s *Service) ToggleLike(ctx context.Context, postID string) (bool, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return false, err
	}

	liked, err := s.repo.IsLiked(ctx, postID, identity.UserID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	if liked {
		if err := s.repo.DeleteLike(ctx, postID, identity.UserID); err != nil {
			return false, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
		}
		likesToggledTotal.WithLabelValues("unlike").Inc()
	} else {
		if err := s.repo.InsertLike(ctx, postID, identity.UserID); err != nil {
			return false, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
		}
		likesToggledTotal.WithLabelValues("like").Inc()
	}

	s.cache.Invalidate(ctx, cache.LikedKey(postID, identity.UserID), cache.FeedKey)
	return !liked, nil
}

// ListComments returns a post's comments oldest first, read-through cached
// per post.
func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	key := cache.CommentsKey(postID)
	if data, ok := s.cache.Get(ctx, key); ok {
		var comments []Comment
		if err := json.Unmarshal(data, &comments); err == nil {
			return comments, nil
		}
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	if data, err := json.Marshal(comments); err == nil {
		s.cache.Set(ctx, key, data, s.cacheTTL)
	}
	return comments, nil
}

// AddComment inserts a comment owned by the caller. The feed cache is
// invalidated too because comment counts are derived from comment rows.
func (s *Service) AddComment(ctx context.Context, postID string, req *CommentRequest) (*Comment, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.New("comment content cannot be empty")
	}

	comment := &Comment{
		ID:      uuid.New().String(),
		PostID:  postID,
		UserID:  identity.UserID,
		Content: req.Content,
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}

	commentsTotal.WithLabelValues("created").Inc()
	s.cache.Invalidate(ctx, cache.CommentsKey(postID), cache.FeedKey)
	return comment, nil
}

// UpdateComment edits a comment body. Ownership is checked explicitly
// before the mutation: editing someone else's comment is a forbidden
// outcome, distinct from not-found.
func (s *Service) UpdateComment(ctx context.Context, commentID string, req *CommentRequest) (*Comment, error) {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.New("comment content cannot be empty")
	}

	comment, err := s.getOwnedComment(ctx, commentID, identity.UserID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateComment(ctx, commentID, identity.UserID, req.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}
	if rows == 0 {
		// Deleted between the ownership check and the update.
		return nil, apperrors.ErrNotFound
	}

	commentsTotal.WithLabelValues("updated").Inc()
	s.cache.Invalidate(ctx, cache.CommentsKey(comment.PostID))

	updated, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	return updated, nil
}

// DeleteComment removes a comment, same ownership semantics as update.
func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		return err
	}

	comment, err := s.getOwnedComment(ctx, commentID, identity.UserID)
	if err != nil {
		return err
	}

	rows, err := s.repo.DeleteComment(ctx, commentID, identity.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	commentsTotal.WithLabelValues("deleted").Inc()
	s.cache.Invalidate(ctx, cache.CommentsKey(comment.PostID), cache.FeedKey)
	return nil
}

func (s *Service) getOwnedComment(ctx context.Context, commentID, userID string) (*Comment, error) {
	comment, err := s.repo.GetComment(ctx, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	if comment.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return comment, nil
}

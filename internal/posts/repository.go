// internal/posts/repository.go
package posts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the store surface the posts service depends on.
type Repository interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, postID string) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error

	IsLiked(ctx context.Context, postID, userID string) (bool, error)
	InsertLike(ctx context.Context, postID, userID string) error
	DeleteLike(ctx context.Context, postID, userID string) error

	ListComments(ctx context.Context, postID string) ([]Comment, error)
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, commentID string) (*Comment, error)
	UpdateComment(ctx context.Context, commentID, userID, content string) (int64, error)
	DeleteComment(ctx context.Context, commentID, userID string) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a PostgreSQL-backed posts repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const postColumns = `
	p.id, p.user_id, p.title, p.content, p.created_at,
	COALESCE(p.attachments, '[]'::jsonb) AS attachments,
	COALESCE(p.hashtags, '{}') AS hashtags,
	pr.username,
	COALESCE(pr.avatar_url, '') AS avatar_url,
	COUNT(DISTINCT l.user_id) AS like_count,
	COUNT(DISTINCT c.id) AS comment_count`

// ListPosts returns every post, newest first, with joined author info and
// like/comment counts derived from the related rows.
func (r *postgresRepository) ListPosts(ctx context.Context) ([]Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN profiles pr ON p.user_id = pr.id
		LEFT JOIN likes l ON p.id = l.post_id
		LEFT JOIN comments c ON p.id = c.post_id
		GROUP BY p.id, pr.id, pr.username, pr.avatar_url
		ORDER BY p.created_at DESC`, postColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

func (r *postgresRepository) GetPost(ctx context.Context, postID string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN profiles pr ON p.user_id = pr.id
		LEFT JOIN likes l ON p.id = l.post_id
		LEFT JOIN comments c ON p.id = c.post_id
		WHERE p.id = $1
		GROUP BY p.id, pr.id, pr.username, pr.avatar_url`, postColumns)

	row := r.db.QueryRowContext(ctx, query, postID)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// rowScanner lets scanPost work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*Post, error) {
	post := Post{Author: &AuthorInfo{}}
	var hashtags pq.StringArray

	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.Attachments,
		&hashtags,
		&post.Author.Username,
		&post.Author.AvatarURL,
		&post.LikeCount,
		&post.CommentCount,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}

	post.Author.ID = post.UserID
	post.Hashtags = []string(hashtags)
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	if post.Attachments == nil {
		post.Attachments = AttachmentList{}
	}

	return &post, nil
}

func (r *postgresRepository) CreatePost(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, user_id, title, content, attachments, hashtags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		post.ID, post.UserID, post.Title, post.Content,
		post.Attachments, pq.Array(post.Hashtags),
	).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postgresRepository) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	var liked bool
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`
	err := r.db.GetContext(ctx, &liked, query, postID, userID)
	return liked, err
}

// InsertLike is idempotent: the (post_id, user_id) primary key plus
// ON CONFLICT DO NOTHING guarantee at most one row per pair.
func (r *postgresRepository) InsertLike(ctx context.Context, postID, userID string) error {
	query := `INSERT INTO likes (post_id, user_id, created_at)
		  VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, postID, userID)
	return err
}

func (r *postgresRepository) DeleteLike(ctx context.Context, postID, userID string) error {
	query := `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, postID, userID)
	return err
}

// ListComments returns a post's comments oldest first, the opposite of the
// feed's ordering.
func (r *postgresRepository) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
		       pr.username,
		       COALESCE(pr.avatar_url, '') AS avatar_url
		FROM comments c
		JOIN profiles pr ON c.user_id = pr.id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment := Comment{Author: &AuthorInfo{}}
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.UserID,
			&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
			&comment.Author.Username, &comment.Author.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comment.Author.ID = comment.UserID
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

func (r *postgresRepository) CreateComment(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		comment.ID, comment.PostID, comment.UserID, comment.Content,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetComment(ctx context.Context, commentID string) (*Comment, error) {
	var comment Comment
	query := `
		SELECT id, post_id, user_id, content, created_at, updated_at
		FROM comments WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, commentID).Scan(
		&comment.ID, &comment.PostID, &comment.UserID,
		&comment.Content, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment filters on both comment id and owner id; the returned row
// count lets the service distinguish "gone" from "done". The service checks
// ownership explicitly before calling, this filter is the second line.
func (r *postgresRepository) UpdateComment(ctx context.Context, commentID, userID, content string) (int64, error) {
	query := `UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
	res, err := r.db.ExecContext(ctx, query, content, commentID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *postgresRepository) DeleteComment(ctx context.Context, commentID, userID string) (int64, error) {
	query := `DELETE FROM comments WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, commentID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// internal/posts/models.go
package posts

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Post is a feed entry with its joined author and derived counts.
// like_count and comment_count reflect the true number of related rows at
// read time; they are never stored on the post row.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Always materialized as sequences, never null.
	Attachments AttachmentList `json:"attachments"`
	Hashtags    []string       `json:"hashtags"`

	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`

	Author *AuthorInfo `json:"author,omitempty"`
}

// AuthorInfo is the profile slice joined onto posts and comments.
type AuthorInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Attachment is a stored binary referenced by URL from its parent post.
// Created only at post-creation time, never mutated afterward.
type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// AttachmentList stores attachments as a JSONB column. A NULL column
// normalizes to an empty list at the store boundary.
type AttachmentList []Attachment

// Scan implements sql.Scanner for AttachmentList.
func (a *AttachmentList) Scan(value interface{}) error {
	if value == nil {
		*a = AttachmentList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected attachments column type %T", value)
	}
	if len(bytes) == 0 {
		*a = AttachmentList{}
		return nil
	}
	if err := json.Unmarshal(bytes, a); err != nil {
		return fmt.Errorf("malformed attachments column: %w", err)
	}
	if *a == nil {
		*a = AttachmentList{}
	}
	return nil
}

// Value implements driver.Valuer for AttachmentList.
func (a AttachmentList) Value() (driver.Value, error) {
	if a == nil {
		a = AttachmentList{}
	}
	return json.Marshal(a)
}

// Comment belongs to one post and is mutable only by its author.
// updated_at equals created_at until the first edit; the view layer uses
// that to show the "(edited)" marker.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *AuthorInfo `json:"author,omitempty"`
}

// Edited reports whether the comment has been modified since creation.
func (c *Comment) Edited() bool {
	return c.UpdatedAt.After(c.CreatedAt)
}

// FileUpload is one attachment binary handed to post creation.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// CreatePostRequest carries the post-creation inputs.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`

	Files []FileUpload `json:"-"`
}

// CommentRequest carries a comment body for create and update.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

package posts

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var postRowColumns = []string{
	"id", "user_id", "title", "content", "created_at",
	"attachments", "hashtags", "username", "avatar_url",
	"like_count", "comment_count",
}

func TestListPostsOrdersNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	newer := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`ORDER BY p\.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow("p2", "u1", "second", "body", newer, []byte("[]"), []byte("{Hope}"), "jane", "", 3, 1).
			AddRow("p1", "u1", "first", "body", older, []byte("[]"), []byte("{}"), "jane", "", 0, 0))

	posts, err := repo.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "p2", posts[0].ID)
	assert.True(t, posts[0].CreatedAt.After(posts[1].CreatedAt))
	assert.Equal(t, []string{"Hope"}, posts[0].Hashtags)
	assert.Equal(t, AttachmentList{}, posts[0].Attachments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCommentsOrdersOldestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	first := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	mock.ExpectQuery(`ORDER BY c\.created_at ASC`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "post_id", "user_id", "content", "created_at", "updated_at",
			"username", "avatar_url",
		}).
			AddRow("c1", "p1", "u1", "amen", first, first, "jane", "").
			AddRow("c2", "p1", "u2", "praying", second, second, "sam", ""))

	comments, err := repo.ListComments(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, "c1", comments[0].ID)
	assert.True(t, comments[0].CreatedAt.Before(comments[1].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

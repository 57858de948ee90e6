// internal/profile/repository.go
package profile

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the store surface the profile service depends on.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByUsername(ctx context.Context, username string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, id string, req *UpdateProfileRequest) (*Profile, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a PostgreSQL-backed profile repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
	id, username,
	COALESCE(full_name, '') AS full_name,
	COALESCE(avatar_url, '') AS avatar_url,
	COALESCE(bio, '') AS bio,
	COALESCE(location, '') AS location,
	COALESCE(church_name, '') AS church_name,
	COALESCE(ministry_roles, '{}') AS ministry_roles,
	COALESCE(favorite_bible_verse, '') AS favorite_bible_verse,
	COALESCE(website_url, '') AS website_url,
	created_at, updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	var profile Profile
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE username = $1`, profileColumns)
	if err := r.db.GetContext(ctx, &profile, query, username); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresRepository) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (id, username, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, profile.ID, profile.Username).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, id string, req *UpdateProfileRequest) (*Profile, error) {
	query := fmt.Sprintf(`
		UPDATE profiles
		SET full_name = $1, bio = $2, location = $3, church_name = $4,
		    ministry_roles = $5, favorite_bible_verse = $6, website_url = $7,
		    updated_at = NOW()
		WHERE id = $8
		RETURNING %s`, profileColumns)

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query,
		req.FullName, req.Bio, req.Location, req.ChurchName,
		pq.Array(req.MinistryRoles), req.FavoriteBibleVerse, req.WebsiteURL,
		id,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *postgresRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	query := `UPDATE profiles SET avatar_url = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, avatarURL, id)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

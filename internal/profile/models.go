// internal/profile/models.go
package profile

import (
	"time"

	"github.com/lib/pq"
)

// Profile is a user's public identity. One row per user, keyed by the same
// id the session token carries.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	FullName  string    `json:"full_name,omitempty" db:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio       string    `json:"bio,omitempty" db:"bio"`
	Location  string    `json:"location,omitempty" db:"location"`

	ChurchName         string         `json:"church_name,omitempty" db:"church_name"`
	MinistryRoles      pq.StringArray `json:"ministry_roles" db:"ministry_roles"`
	FavoriteBibleVerse string         `json:"favorite_bible_verse,omitempty" db:"favorite_bible_verse"`
	WebsiteURL         string         `json:"website_url,omitempty" db:"website_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	FullName           string   `json:"full_name" validate:"max=100"`
	Bio                string   `json:"bio" validate:"max=500"`
	Location           string   `json:"location" validate:"max=100"`
	ChurchName         string   `json:"church_name" validate:"max=200"`
	MinistryRoles      []string `json:"ministry_roles"`
	FavoriteBibleVerse string   `json:"favorite_bible_verse" validate:"max=200"`
	WebsiteURL         string   `json:"website_url" validate:"omitempty,url"`
}

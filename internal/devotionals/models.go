// internal/devotionals/models.go
package devotionals

import "time"

// Devotional is one dated scripture reading with a short reflection.
// One devotional per calendar day.
type Devotional struct {
	ID         string    `json:"id" db:"id"`
	Verse      string    `json:"verse" db:"verse"`
	Reference  string    `json:"reference" db:"reference"`
	Reflection string    `json:"reflection" db:"reflection"`
	Date       time.Time `json:"date" db:"date"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CreateDevotionalRequest carries a new devotional entry.
type CreateDevotionalRequest struct {
	Verse      string `json:"verse" validate:"required"`
	Reference  string `json:"reference" validate:"required,max=100"`
	Reflection string `json:"reflection" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
}

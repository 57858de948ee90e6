// internal/devotionals/service.go
package devotionals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
	"github.com/koinoniahq/koinonia-backend/internal/cache"
	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
	"github.com/koinoniahq/koinonia-backend/internal/common/utils"
)

const (
	todayKey    = "devotionals:today"
	defaultList = 30
)

// Service serves the daily devotional reading.
type Service struct {
	repo     Repository
	cache    cache.Store
	cacheTTL time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewService wires the devotionals service.
func NewService(repo Repository, cacheStore cache.Store, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{repo: repo, cache: cacheStore, cacheTTL: cacheTTL, now: time.Now}
}

// List returns recent devotionals, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Devotional, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultList
	}
	devotionals, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	return devotionals, nil
}

// Today returns the devotional for the current day, falling back to the most
// recent earlier entry when today has none.
func (s *Service) Today(ctx context.Context) (*Devotional, error) {
	if data, ok := s.cache.Get(ctx, todayKey); ok {
		var devotional Devotional
		if err := json.Unmarshal(data, &devotional); err == nil {
			return &devotional, nil
		}
	}

	day := s.now().UTC().Truncate(24 * time.Hour)
	devotional, err := s.repo.MostRecentOnOrBefore(ctx, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	if data, err := json.Marshal(devotional); err == nil {
		s.cache.Set(ctx, todayKey, data, s.cacheTTL)
	}
	return devotional, nil
}

// Create adds a devotional entry. Requires a signed-in caller; entries come
// from the staff tooling, not the public app.
func (s *Service) Create(ctx context.Context, req *CreateDevotionalRequest) (*Devotional, error) {
	if _, err := auth.RequireIdentity(ctx); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %v", req.Date, err)
	}

	devotional := &Devotional{
		ID:         uuid.New().String(),
		Verse:      req.Verse,
		Reference:  req.Reference,
		Reflection: req.Reflection,
		Date:       day,
	}

	if err := s.repo.Create(ctx, devotional); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrWrite, err)
	}

	s.cache.Invalidate(ctx, todayKey)
	return devotional, nil
}

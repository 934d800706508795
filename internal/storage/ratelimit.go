package storage

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/starford/filmoteka/internal/models"
)

// RateLimited paces calls to a remote provider so a burst of interactions
// stays inside the API quota. It never retries.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps p with a limiter allowing perMinute calls per minute.
// A non-positive perMinute returns p unchanged.
func NewRateLimited(p Provider, perMinute int) Provider {
	if perMinute <= 0 {
		return p
	}
	return &RateLimited{
		next:    p,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// Name implements Provider.
func (r *RateLimited) Name() string { return r.next.Name() }

// Rows implements Provider.
func (r *RateLimited) Rows(ctx context.Context) ([]models.RawRow, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Rows(ctx)
}

// AppendRow implements Provider.
func (r *RateLimited) AppendRow(ctx context.Context, row models.RawRow) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	return r.next.AppendRow(ctx, row)
}

// DeleteRow implements Provider.
func (r *RateLimited) DeleteRow(ctx context.Context, physicalRow int) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	return r.next.DeleteRow(ctx, physicalRow)
}

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("storage: rate limit: %w", err)
	}
	return nil
}

package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

// ActivityTier classifies how recently the feed saw activity.
type ActivityTier int

const (
	// TierHot indicates activity within the last hour.
	TierHot ActivityTier = iota
	// TierActive indicates activity within the last day.
	TierActive
	// TierWarm indicates activity within the last 7 days.
	TierWarm
	// TierStale indicates no activity for 7+ days, or an empty feed.
	TierStale
)

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

// classifyActivity determines the activity tier based on the time elapsed
// since the last activity. A zero-value time is treated as TierStale.
func classifyActivity(lastActivity, now time.Time) ActivityTier {
	if lastActivity.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(lastActivity)

	switch {
	case elapsed < 1*time.Hour:
		return TierHot
	case elapsed < 24*time.Hour:
		return TierActive
	case elapsed < 7*24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}

// tierInterval stretches the base refresh interval as the feed goes quiet:
// 1x hot, 2x active, 4x warm, 8x stale.
func tierInterval(base time.Duration, tier ActivityTier) time.Duration {
	switch tier {
	case TierHot:
		return base
	case TierActive:
		return 2 * base
	case TierWarm:
		return 4 * base
	default:
		return 8 * base
	}
}

// freshestActivity finds the most recent post or comment timestamp.
func freshestActivity(posts []model.Post) time.Time {
	var newest time.Time
	bump := func(t time.Time) {
		if t.After(newest) {
			newest = t
		}
	}
	for _, p := range posts {
		bump(p.CreatedAt)
		bump(p.UpdatedAt)
		for _, c := range p.Comments {
			bump(c.CreatedAt)
		}
	}
	return newest
}

// FeedRefresher reloads the feed in the background while the local API is
// served, so GET requests that fail upstream still have a recent list to fall
// back on.
type FeedRefresher struct {
	feed *FeedService
	base time.Duration
	now  func() time.Time
}

// NewFeedRefresher creates a refresher with the given base interval.
func NewFeedRefresher(feed *FeedService, base time.Duration) *FeedRefresher {
	return &FeedRefresher{feed: feed, base: base, now: time.Now}
}

// Start refreshes immediately, then again after an interval chosen from the
// feed's activity tier. Start blocks until the context is canceled.
func (r *FeedRefresher) Start(ctx context.Context) {
	timer := time.NewTimer(r.refresh(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("feed refresher stopped")
			return
		case <-timer.C:
			timer.Reset(r.refresh(ctx))
		}
	}
}

// refresh reloads the feed and returns the delay until the next reload.
// Nothing is fetched while signed out.
func (r *FeedRefresher) refresh(ctx context.Context) time.Duration {
	if _, err := r.feed.requireSession(); err != nil {
		return r.base
	}
	if _, err := r.feed.LoadFeed(ctx); err != nil {
		if ctx.Err() == nil {
			slog.Warn("background feed refresh failed", "error", err)
		}
		return r.base
	}

	tier := classifyActivity(freshestActivity(r.feed.Posts()), r.now())
	next := tierInterval(r.base, tier)
	slog.Debug("feed refreshed", "tier", tier.String(), "next_in", next)
	return next
}

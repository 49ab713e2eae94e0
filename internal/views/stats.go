package views

import (
	"context"

	"interview-console/internal/api"
	"interview-console/internal/notify"
	"interview-console/internal/observability"
)

// StatsSource fetches the aggregate statistics
type StatsSource interface {
	GetStats(ctx context.Context) (*api.Stats, error)
}

// StatsView is the read-only dashboard. Stats are fetched once per mount.
type StatsView struct {
	base
	source  StatsSource
	mounted bool
	stats   *api.Stats
}

func NewStatsView(source StatsSource, deps Deps) *StatsView {
	v := &StatsView{source: source}
	v.init(deps)
	return v
}

// Mount loads the statistics the first time it is called
func (v *StatsView) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = true
	v.mu.Unlock()

	_, err := v.Load(ctx)
	return err
}

// Load fetches the statistics and replaces the cached copy
func (v *StatsView) Load(ctx context.Context) (*api.Stats, error) {
	reqCtx, done, gen, err := v.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	stats, err := v.source.GetStats(reqCtx)

	v.mu.Lock()
	if !v.live(gen) {
		v.mu.Unlock()
		v.metrics.IncrementStaleResponsesDropped()
		return nil, ErrClosed
	}
	v.end(err)
	if err == nil {
		v.stats = stats
	}
	v.mu.Unlock()

	if err != nil {
		observability.LoggerFromContext(ctx).Error("Error fetching interview stats", "error", err)
		v.notify(ctx, notify.Error("Failed to fetch interview statistics. Please try again."))
		return nil, err
	}
	return stats, nil
}

// Stats returns the cached statistics, nil before the first successful load
func (v *StatsView) Stats() *api.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stats == nil {
		return nil
	}
	out := *v.stats
	out.TopQuestions = append([]api.QuestionUsage(nil), v.stats.TopQuestions...)
	return &out
}

// Close discards the cached statistics and any load still in flight
func (v *StatsView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.close()
	v.stats = nil
}

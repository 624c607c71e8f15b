package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// Reporter periodically publishes usage counters on hermes.SubjectStats.
type Reporter struct {
	store    store.Store
	hermes   hermes.Client
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last *store.Stats

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReporter(s store.Store, h hermes.Client, interval time.Duration, logger *slog.Logger) *Reporter {
	return &Reporter{
		store:    s,
		hermes:   h,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the report loop until Stop is called or ctx is cancelled. A
// non-positive interval disables reporting.
func (r *Reporter) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	r.wg.Add(1)
	go r.loop(ctx)
}

func (r *Reporter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

// Last returns the most recently published counters, or nil before the
// first successful report.
func (r *Reporter) Last() *store.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reporter) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Report(ctx)
		}
	}
}

// Report reads the current counters and publishes them once.
func (r *Reporter) Report(ctx context.Context) {
	s, err := r.store.GetStats(ctx)
	if err != nil {
		r.logger.Error("failed to read stats", "error", err)
		return
	}

	r.mu.Lock()
	r.last = s
	r.mu.Unlock()

	r.logger.Debug("publishing stats", "countries", s.Countries, "analyses", s.Analyses)
	hermes.Emit(r.hermes, r.logger, hermes.SubjectStats, hermes.StatsEvent{
		Countries:          s.Countries,
		Preferences:        s.Preferences,
		Analyses:           s.Analyses,
		Sessions:           s.Sessions,
		MostFrequentTop:    s.MostFrequentTop,
		MostFrequentTopCnt: s.MostFrequentTopCnt,
		Timestamp:          time.Now().UTC(),
	})
}

// Invalidator drops cached catalogue state.
type Invalidator interface {
	Invalidate()
}

// WatchCountryChanges invalidates inv whenever any replica publishes a
// catalogue change. A nil client is a no-op.
func WatchCountryChanges(h hermes.Client, inv Invalidator, logger *slog.Logger) error {
	if h == nil {
		return nil
	}
	return h.Subscribe(hermes.SubjectCountryChanges, func(subject string, data []byte) {
		var evt hermes.CountryChangedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Warn("malformed country event", "subject", subject, "error", err)
		}
		inv.Invalidate()
		logger.Debug("country catalogue invalidated", "subject", subject, "action", evt.Action)
	})
}

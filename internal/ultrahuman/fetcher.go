// ABOUTME: Fetcher backfills the record store one day at a time.
// ABOUTME: Requests are paced by a rate limiter and run on a bounded errgroup.
package ultrahuman

import (
	"context"
	"encoding/json"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DailySource returns the raw payload for one date.
type DailySource interface {
	FetchDailyMetrics(ctx context.Context, date time.Time) (json.RawMessage, error)
}

// Store is the part of the record store the fetcher writes to.
type Store interface {
	Exists(date time.Time) (bool, error)
	Upsert(r *models.DailyRecord) error
	Latest() (*models.DailyRecord, error)
}

// Status is the per-day outcome of a fetch.
type Status string

const (
	StatusStored  Status = "stored"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// DayResult reports what happened for one date.
type DayResult struct {
	Date   time.Time
	Status Status
	Err    error
}

// Report summarizes a fetch run. Results are in date order.
type Report struct {
	Results []DayResult
	Stored  int
	Skipped int
	Failed  int
}

// Succeeded counts stored and skipped days.
func (r Report) Succeeded() int {
	return r.Stored + r.Skipped
}

// DefaultEnsureDays is how far back EnsureData fills an empty store.
const DefaultEnsureDays = 7

// Fetcher copies API data into a Store.
type Fetcher struct {
	source  DailySource
	store   Store
	limiter *rate.Limiter
	workers int
	logger  *zap.Logger
	now     func() time.Time
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDelay spaces requests at least d apart. Zero disables pacing.
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithWorkers bounds the number of concurrent requests.
func WithWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// Workers returns the concurrency limit.
func (f *Fetcher) Workers() int {
	return f.workers
}

// WithFetcherLogger sets the fetcher logger.
func WithFetcherLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithClock overrides the clock used to find "today".
func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFetcher creates a Fetcher. The default is one worker paced at 500ms.
func NewFetcher(source DailySource, store Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:  source,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		workers: 1,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchRange fetches every date in [start, end]. Dates already stored are
// skipped unless force is set. Per-day failures are reported, not returned;
// the error is non-nil only when ctx ends the run.
func (f *Fetcher) FetchRange(ctx context.Context, start, end time.Time, force bool) (Report, error) {
	start, end = models.DateOf(start), models.DateOf(end)
	var dates []time.Time
	for d := start; !d.After(end); d = models.AddDays(d, 1) {
		dates = append(dates, d)
	}

	results := make([]DayResult, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, d := range dates {
		g.Go(func() error {
			res, err := f.fetchDay(gctx, d, force)
			results[i] = res
			return err
		})
	}
	err := g.Wait()

	report := Report{}
	for _, res := range results {
		if res.Status == "" {
			continue
		}
		report.Results = append(report.Results, res)
		switch res.Status {
		case StatusStored:
			report.Stored++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
	}

	f.logger.Info("fetch complete",
		zap.String("start", models.FormatDate(start)),
		zap.String("end", models.FormatDate(end)),
		zap.Int("stored", report.Stored),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, err
}

// FetchRecent fetches the last days days, excluding today.
func (f *Fetcher) FetchRecent(ctx context.Context, days int, force bool) (Report, error) {
	if days < 1 {
		return Report{}, nil
	}
	today := models.DateOf(f.now())
	return f.FetchRange(ctx, models.AddDays(today, -days), models.AddDays(today, -1), force)
}

// EnsureData fills an empty store with the last DefaultEnsureDays days.
// fetched is false when the store already had data.
func (f *Fetcher) EnsureData(ctx context.Context) (fetched bool, report Report, err error) {
	latest, err := f.store.Latest()
	if err != nil {
		return false, Report{}, err
	}
	if latest != nil {
		return false, Report{}, nil
	}
	f.logger.Info("no data found, fetching recent history", zap.Int("days", DefaultEnsureDays))
	report, err = f.FetchRecent(ctx, DefaultEnsureDays, false)
	return true, report, err
}

// fetchDay returns an error only for context cancellation, which stops the group.
func (f *Fetcher) fetchDay(ctx context.Context, d time.Time, force bool) (DayResult, error) {
	res := DayResult{Date: d}
	log := f.logger.With(zap.String("date", models.FormatDate(d)))

	if !force {
		exists, err := f.store.Exists(d)
		if err != nil {
			res.Status, res.Err = StatusFailed, err
			return res, nil
		}
		if exists {
			res.Status = StatusSkipped
			return res, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return DayResult{}, err
	}

	raw, err := f.source.FetchDailyMetrics(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return DayResult{}, ctx.Err()
		}
		log.Warn("fetch failed", zap.Error(err))
		res.Status, res.Err = StatusFailed, err
		return res, nil
	}

	r, err := ParseDailyMetrics(raw, d)
	if err != nil {
		log.Warn("parse failed", zap.Error(err))
		res.Status, res.Err = StatusFailed, err
		return res, nil
	}
	if err := f.store.Upsert(r); err != nil {
		log.Warn("store failed", zap.Error(err))
		res.Status, res.Err = StatusFailed, err
		return res, nil
	}

	log.Debug("stored day", zap.Int("metrics", len(r.Present())))
	res.Status = StatusStored
	return res, nil
}

package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"tripplanner/internal/config"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
	"tripplanner/internal/utils"
)

const (
	kindFlights    = "flights"
	kindHotels     = "hotels"
	kindActivities = "activities"

	defaultRetryInterval     = 500 * time.Millisecond
	defaultMaxConcurrentDays = 4
)

// Options tune how the Gatherer calls its sources.
type Options struct {
	RequestTimeout       time.Duration
	MaxRetries           int
	RetryInterval        time.Duration
	DelayBetweenRequests time.Duration
	BreakerFailures      int
	BreakerCooldown      time.Duration
	CacheTTL             time.Duration
	MaxConcurrentDays    int

	Cache   Cache
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// OptionsFromConfig maps the fetch section of the config file.
func OptionsFromConfig(c config.FetchConfig) Options {
	return Options{
		RequestTimeout:       c.RequestTimeout,
		MaxRetries:           c.MaxRetries,
		DelayBetweenRequests: c.DelayBetweenRequests,
		BreakerFailures:      c.BreakerFailures,
		BreakerCooldown:      c.BreakerCooldown,
		CacheTTL:             c.CacheTTL,
		MaxConcurrentDays:    c.MaxConcurrentDays,
		Logger:               zerolog.Nop(),
	}
}

type guardedSource struct {
	src     Source
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// Gatherer fans queries out to every source and merges the answers in source
// order. A source that keeps failing is logged and skipped; only a cancelled
// context fails a gather.
type Gatherer struct {
	sources []*guardedSource
	opts    Options
}

func NewGatherer(srcs []Source, opts Options) *Gatherer {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.MaxConcurrentDays <= 0 {
		opts.MaxConcurrentDays = defaultMaxConcurrentDays
	}

	g := &Gatherer{opts: opts}
	for _, s := range srcs {
		g.sources = append(g.sources, g.guard(s))
	}
	return g
}

func (g *Gatherer) guard(s Source) *guardedSource {
	limit := rate.Inf
	if g.opts.DelayBetweenRequests > 0 {
		limit = rate.Every(g.opts.DelayBetweenRequests)
	}
	name := s.Name()
	failures := uint32(g.opts.BreakerFailures)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     g.opts.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			g.opts.Metrics.SetBreakerState(name, float64(to))
			g.opts.Logger.Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("source breaker state changed")
		},
	})
	g.opts.Metrics.SetBreakerState(name, float64(gobreaker.StateClosed))

	return &guardedSource{src: s, limiter: rate.NewLimiter(limit, 1), breaker: breaker}
}

// Sources returns the configured source names in merge order.
func (g *Gatherer) Sources() []string {
	names := make([]string, len(g.sources))
	for i, s := range g.sources {
		names[i] = s.src.Name()
	}
	return names
}

// SourceStats is a point-in-time view of one source's breaker.
type SourceStats struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

func (g *Gatherer) Stats() []SourceStats {
	out := make([]SourceStats, 0, len(g.sources))
	for _, s := range g.sources {
		c := s.breaker.Counts()
		out = append(out, SourceStats{
			Name:                s.src.Name(),
			State:               s.breaker.State().String(),
			Requests:            c.Requests,
			TotalFailures:       c.TotalFailures,
			ConsecutiveFailures: c.ConsecutiveFailures,
		})
	}
	return out
}

// Gather collects flights, hotels and the activities of every full trip day.
func (g *Gatherer) Gather(ctx context.Context, q TripQuery) (models.Candidates, error) {
	var c models.Candidates

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		c.Flights, err = g.Flights(ctx, q.Flights())
		return err
	})
	eg.Go(func() error {
		var err error
		c.Hotels, err = g.Hotels(ctx, q.Hotels())
		return err
	})
	eg.Go(func() error {
		var err error
		c.Activities, err = g.TripActivities(ctx, q)
		return err
	})
	if err := eg.Wait(); err != nil {
		return models.Candidates{}, err
	}

	g.opts.Logger.Info().
		Int("flights", len(c.Flights)).
		Int("hotels", len(c.Hotels)).
		Int("activities", len(c.Activities)).
		Msg("candidates gathered")
	return c, nil
}

func (g *Gatherer) Flights(ctx context.Context, q FlightQuery) ([]models.Flight, error) {
	return fanOut(ctx, g, kindFlights, q.key(), func(ctx context.Context, s Source) ([]models.Flight, error) {
		return s.Flights(ctx, q)
	}, func(f *models.Flight, site string) { f.SourceWebsite = site })
}

func (g *Gatherer) Hotels(ctx context.Context, q HotelQuery) ([]models.Hotel, error) {
	return fanOut(ctx, g, kindHotels, q.key(), func(ctx context.Context, s Source) ([]models.Hotel, error) {
		return s.Hotels(ctx, q)
	}, func(h *models.Hotel, site string) { h.SourceWebsite = site })
}

func (g *Gatherer) Activities(ctx context.Context, q ActivityQuery) ([]models.Activity, error) {
	return fanOut(ctx, g, kindActivities, q.key(), func(ctx context.Context, s Source) ([]models.Activity, error) {
		return s.Activities(ctx, q)
	}, func(a *models.Activity, site string) { a.SourceWebsite = site })
}

// TripActivities gathers activities for every day strictly between departure
// and return, concatenated in day order. At most MaxConcurrentDays days are
// fetched at once. Unparseable dates yield no activities; the optimizer
// reports them.
func (g *Gatherer) TripActivities(ctx context.Context, q TripQuery) ([]models.Activity, error) {
	dep, err := utils.ParseDate(q.DepartureDate)
	if err != nil {
		return []models.Activity{}, nil
	}
	ret, err := utils.ParseDate(q.ReturnDate)
	if err != nil {
		return []models.Activity{}, nil
	}

	days := utils.FullTripDays(dep, ret)
	perDay := make([][]models.Activity, len(days))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.MaxConcurrentDays)
	for i, day := range days {
		eg.Go(func() error {
			acts, err := g.Activities(ctx, q.Activities(utils.FormatDate(day)))
			perDay[i] = acts
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := []models.Activity{}
	for _, acts := range perDay {
		out = append(out, acts...)
	}
	return out, nil
}

// fanOut queries every source concurrently and concatenates the results in
// source order, tagging each record with the site it came from.
func fanOut[T any](
	ctx context.Context,
	g *Gatherer,
	kind, key string,
	call func(context.Context, Source) ([]T, error),
	tag func(*T, string),
) ([]T, error) {
	results := make([][]T, len(g.sources))

	var eg errgroup.Group
	for i, s := range g.sources {
		eg.Go(func() error {
			items, err := fetch(ctx, g, s, kind, key, call)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				g.opts.Logger.Error().Err(err).
					Str("source", s.src.Name()).
					Str("kind", kind).
					Msg("source failed, skipping")
				return nil
			}
			for j := range items {
				tag(&items[j], s.src.Name())
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := []T{}
	for _, items := range results {
		out = append(out, items...)
	}
	return out, nil
}

func fetch[T any](
	ctx context.Context,
	g *Gatherer,
	s *guardedSource,
	kind, key string,
	call func(context.Context, Source) ([]T, error),
) ([]T, error) {
	name := s.src.Name()
	cacheKey := fmt.Sprintf("%s:%s:%s", kind, name, key)

	if items, ok := cached[T](ctx, g, kind, cacheKey); ok {
		return items, nil
	}

	start := time.Now()
	items, err := backoff.Retry(ctx, func() ([]T, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		res, err := s.breaker.Execute(func() (interface{}, error) {
			cctx := ctx
			if g.opts.RequestTimeout > 0 {
				var cancel context.CancelFunc
				cctx, cancel = context.WithTimeout(ctx, g.opts.RequestTimeout)
				defer cancel()
			}
			return call(cctx, s.src)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			return nil, err
		}
		items, _ := res.([]T)
		return items, nil
	},
		backoff.WithBackOff(g.newBackOff()),
		backoff.WithMaxTries(uint(g.opts.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			g.opts.Logger.Warn().Err(err).
				Str("source", name).
				Str("kind", kind).
				Dur("retry_in", next).
				Msg("source request failed, retrying")
		}),
	)

	result := "ok"
	if err != nil {
		result = "error"
	}
	g.opts.Metrics.ObserveFetch(name, kind, result, time.Since(start))
	if err != nil {
		return nil, err
	}

	g.store(ctx, cacheKey, items)
	return items, nil
}

func cached[T any](ctx context.Context, g *Gatherer, kind, key string) ([]T, bool) {
	if g.opts.Cache == nil {
		return nil, false
	}
	raw, ok, err := g.opts.Cache.Get(ctx, key)
	if err != nil {
		g.opts.Logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	g.opts.Metrics.ObserveCache(kind, ok)
	if !ok {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		g.opts.Logger.Warn().Err(err).Str("key", key).Msg("cache entry unreadable")
		return nil, false
	}
	return items, true
}

func (g *Gatherer) store(ctx context.Context, key string, items any) {
	if g.opts.Cache == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := g.opts.Cache.Set(ctx, key, raw, g.opts.CacheTTL); err != nil {
		g.opts.Logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (g *Gatherer) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.opts.RetryInterval
	b.MaxInterval = 10 * g.opts.RetryInterval
	return b
}

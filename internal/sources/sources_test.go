package sources

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/config"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
)

type fakeSource struct {
	name      string
	err       error
	failFirst int
	flights   []models.Flight

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) attempt() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil && (f.failFirst == 0 || f.calls <= f.failFirst) {
		return f.err
	}
	return nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) Flights(ctx context.Context, q FlightQuery) ([]models.Flight, error) {
	if err := f.attempt(); err != nil {
		return nil, err
	}
	out := make([]models.Flight, len(f.flights))
	copy(out, f.flights)
	return out, nil
}

func (f *fakeSource) Hotels(ctx context.Context, q HotelQuery) ([]models.Hotel, error) {
	if err := f.attempt(); err != nil {
		return nil, err
	}
	return []models.Hotel{{Name: f.name + " hotel", TotalPrice: models.Float(700)}}, nil
}

func (f *fakeSource) Activities(ctx context.Context, q ActivityQuery) ([]models.Activity, error) {
	if err := f.attempt(); err != nil {
		return nil, err
	}
	return []models.Activity{{Name: f.name + " tour", Date: q.Date}}, nil
}

// slowSource holds every activity call briefly and records the peak number of
// calls in flight.
type slowSource struct {
	fakeSource
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowSource) Activities(ctx context.Context, q ActivityQuery) ([]models.Activity, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(5 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.fakeSource.Activities(ctx, q)
}

func testOptions() Options {
	return Options{
		RequestTimeout:  time.Second,
		MaxRetries:      0,
		RetryInterval:   time.Millisecond,
		BreakerFailures: 5,
		BreakerCooldown: time.Minute,
		Logger:          zerolog.Nop(),
	}
}

var trip = TripQuery{
	Origin:        "New York",
	Destination:   "Paris",
	DepartureDate: "2025-06-01",
	ReturnDate:    "2025-06-08",
	Travelers:     2,
}

func TestMockSourceIsDeterministic(t *testing.T) {
	ctx := context.Background()
	src := NewMockSource("kayak")

	a, err := src.Flights(ctx, trip.Flights())
	require.NoError(t, err)
	b, err := src.Flights(ctx, trip.Flights())
	require.NoError(t, err)
	require.Len(t, a, 10)
	assert.Equal(t, a, b)

	assert.Equal(t, "Delta", a[0].Airline)
	assert.Equal(t, 0, a[0].Stops)
	assert.Equal(t, 1, a[9].Stops)
	assert.InDelta(t, 8.0, *a[0].DurationHours, 1e-9)
	assert.Equal(t, *a[0].PricePerPerson*2, *a[0].TotalPrice)
	assert.Equal(t, 50.0, *a[1].PricePerPerson-*a[0].PricePerPerson)
}

func TestMockSourceHotelsAndActivities(t *testing.T) {
	ctx := context.Background()
	src := NewMockSource("agoda")

	hotels, err := src.Hotels(ctx, trip.Hotels())
	require.NoError(t, err)
	require.Len(t, hotels, 10)
	assert.Equal(t, 7, hotels[0].Nights)
	assert.Equal(t, *hotels[0].PricePerNight*7, *hotels[0].TotalPrice)
	assert.Equal(t, 5.0, *hotels[9].Rating)
	assert.Equal(t, "City Center", hotels[0].Location)

	_, err = src.Hotels(ctx, HotelQuery{Destination: "Paris", CheckIn: "soon", CheckOut: "2025-06-08"})
	assert.Error(t, err)

	acts, err := src.Activities(ctx, trip.Activities("2025-06-03"))
	require.NoError(t, err)
	require.Len(t, acts, 10)
	for _, a := range acts {
		assert.Equal(t, "2025-06-03", a.Date)
		assert.Greater(t, *a.PricePerPerson, 0.0)
	}
	assert.Equal(t, "Food", acts[1].Category)
}

func TestGatherMergesInSourceOrder(t *testing.T) {
	first := &fakeSource{name: "expedia", flights: []models.Flight{{Airline: "A"}, {Airline: "B"}}}
	second := &fakeSource{name: "kayak", flights: []models.Flight{{Airline: "C"}}}
	g := NewGatherer([]Source{first, second}, testOptions())

	c, err := g.Gather(context.Background(), trip)
	require.NoError(t, err)

	require.Len(t, c.Flights, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{c.Flights[0].Airline, c.Flights[1].Airline, c.Flights[2].Airline})
	assert.Equal(t, "expedia", c.Flights[0].SourceWebsite)
	assert.Equal(t, "kayak", c.Flights[2].SourceWebsite)

	require.Len(t, c.Hotels, 2)
	assert.Equal(t, "expedia hotel", c.Hotels[0].Name)

	// 6 full days, two sources each, day order first
	require.Len(t, c.Activities, 12)
	assert.Equal(t, "2025-06-02", c.Activities[0].Date)
	assert.Equal(t, "expedia", c.Activities[0].SourceWebsite)
	assert.Equal(t, "kayak", c.Activities[1].SourceWebsite)
	assert.Equal(t, "2025-06-07", c.Activities[11].Date)

	assert.Equal(t, []string{"expedia", "kayak"}, g.Sources())
}

func TestFailingSourceIsSkipped(t *testing.T) {
	bad := &fakeSource{name: "broken", err: errors.New("503")}
	good := &fakeSource{name: "kayak", flights: []models.Flight{{Airline: "C"}}}
	m := metrics.New()
	opts := testOptions()
	opts.Metrics = m
	g := NewGatherer([]Source{bad, good}, opts)

	flights, err := g.Flights(context.Background(), trip.Flights())
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "kayak", flights[0].SourceWebsite)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFetches.WithLabelValues("broken", "flights", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFetches.WithLabelValues("kayak", "flights", "ok")))
}

func TestRetriesRecoverFlakySource(t *testing.T) {
	flaky := &fakeSource{name: "flaky", err: errors.New("timeout"), failFirst: 2, flights: []models.Flight{{Airline: "Z"}}}
	opts := testOptions()
	opts.MaxRetries = 2
	g := NewGatherer([]Source{flaky}, opts)

	flights, err := g.Flights(context.Background(), trip.Flights())
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, 3, flaky.Calls())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	bad := &fakeSource{name: "broken", err: errors.New("503")}
	opts := testOptions()
	opts.BreakerFailures = 2
	g := NewGatherer([]Source{bad}, opts)

	for i := 0; i < 4; i++ {
		flights, err := g.Flights(context.Background(), trip.Flights())
		require.NoError(t, err)
		assert.Empty(t, flights)
	}
	assert.Equal(t, 2, bad.Calls())

	stats := g.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "broken", stats[0].Name)
	assert.Equal(t, "open", stats[0].State)
}

func TestCancelledContextFailsGather(t *testing.T) {
	g := NewGatherer([]Source{NewMockSource("kayak")}, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Gather(ctx, trip)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCacheAvoidsRepeatCalls(t *testing.T) {
	src := &fakeSource{name: "kayak", flights: []models.Flight{{Airline: "C"}}}
	cache := NewMemoryCache()
	opts := testOptions()
	opts.Cache = cache
	opts.CacheTTL = time.Minute
	g := NewGatherer([]Source{src}, opts)

	first, err := g.Flights(context.Background(), trip.Flights())
	require.NoError(t, err)
	second, err := g.Flights(context.Background(), trip.Flights())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.Calls())
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCacheMissThenStore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	flights := []models.Flight{{Airline: "C"}}
	raw, err := json.Marshal(flights)
	require.NoError(t, err)

	key := "tp:flights:kayak:new-york:paris:2025-06-01:2025-06-08:2"
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(raw), time.Minute).SetVal("OK")

	opts := testOptions()
	opts.Cache = NewRedisCache(client, "tp:")
	opts.CacheTTL = time.Minute
	g := NewGatherer([]Source{&fakeSource{name: "kayak", flights: flights}}, opts)

	got, err := g.Flights(context.Background(), trip.Flights())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kayak", got[0].SourceWebsite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("tp:k").SetVal(`[{"airline":"cached","stops":0}]`)
	mock.ExpectGet("tp:gone").SetErr(errors.New("connection refused"))

	c := NewRedisCache(client, "tp:")
	raw, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, string(raw), "cached")

	_, ok, err = c.Get(context.Background(), "gone")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripActivitiesBoundsConcurrentDays(t *testing.T) {
	src := &slowSource{fakeSource: fakeSource{name: "kayak"}}
	opts := testOptions()
	opts.MaxConcurrentDays = 3
	g := NewGatherer([]Source{src}, opts)

	q := trip
	q.ReturnDate = "2025-06-22"
	acts, err := g.TripActivities(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, acts, 20)
	assert.Equal(t, "2025-06-02", acts[0].Date)
	assert.Equal(t, "2025-06-21", acts[19].Date)
	assert.Equal(t, 20, src.Calls())
	assert.LessOrEqual(t, src.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, src.peak.Load(), int32(1))
}

func TestGathererDayLimit(t *testing.T) {
	g := NewGatherer(nil, Options{Logger: zerolog.Nop()})
	assert.Equal(t, defaultMaxConcurrentDays, g.opts.MaxConcurrentDays)

	opts := OptionsFromConfig(config.FetchConfig{MaxConcurrentDays: 2})
	assert.Equal(t, 2, NewGatherer(nil, opts).opts.MaxConcurrentDays)
}

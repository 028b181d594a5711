package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-search-app/internal/service"
	"github.com/vzahanych/weather-search-app/internal/weather"
	"github.com/vzahanych/weather-search-app/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

var errTransport = errors.New("connection reset by peer")

var places = map[string]weather.ResolvedPlace{
	"Paris":  {Name: "Paris", AdminRegion: "Île-de-France", Country: "France", Latitude: 48.85, Longitude: 2.35},
	"Tokyo":  {Name: "Tokyo", Country: "Japan", Latitude: 35.69, Longitude: 139.69},
	"Oslo":   {Name: "Oslo", AdminRegion: "Oslo", Country: "Norway", Latitude: 59.91, Longitude: 10.75},
	"London": {Name: "London", AdminRegion: "England", Country: "United Kingdom", Latitude: 51.51, Longitude: -0.13},
}

type fakeResolver struct {
	mu      sync.Mutex
	err     error
	calls   []string
	gates   map[string]chan struct{}
	entered chan string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{gates: map[string]chan struct{}{}, entered: make(chan string, 8)}
}

func (f *fakeResolver) Name() string { return "fake-geocoding" }

func (f *fakeResolver) Resolve(ctx context.Context, query string) (weather.ResolvedPlace, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		f.entered <- query
		<-gate
	}

	if err != nil {
		return weather.ResolvedPlace{}, err
	}
	place, ok := places[query]
	if !ok {
		return weather.ResolvedPlace{}, service.ErrPlaceNotFound
	}
	return place, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFetcher struct {
	mu      sync.Mutex
	err     error
	calls   []float64
	days    int
	codes   map[float64]int
	gates   map[float64]chan struct{}
	entered chan float64
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		days:    7,
		codes:   map[float64]int{},
		gates:   map[float64]chan struct{}{},
		entered: make(chan float64, 8),
	}
}

func (f *fakeFetcher) Name() string { return "fake-forecast" }

func (f *fakeFetcher) Fetch(ctx context.Context, lat, lon float64) (weather.RawForecast, error) {
	f.mu.Lock()
	f.calls = append(f.calls, lat)
	gate := f.gates[lat]
	err := f.err
	days := f.days
	code := f.codes[lat]
	f.mu.Unlock()

	if gate != nil {
		f.entered <- lat
		<-gate
	}

	if err != nil {
		return weather.RawForecast{}, err
	}
	return rawForecast(lat, code, days), nil
}

func (f *fakeFetcher) callsFor(lat float64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == lat {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func float(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

// rawForecast derives distinct values from lat so results of different places differ.
// Daily dates start on Monday 2024-05-06.
func rawForecast(lat float64, code, days int) weather.RawForecast {
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	daily := make([]weather.DailyEntry, 0, days)
	for i := 0; i < days; i++ {
		daily = append(daily, weather.DailyEntry{
			Date:        start.AddDate(0, 0, i),
			WeatherCode: intp([]int{0, 1, 3, 61, 71, 95, 45}[i%7]),
			TempMinC:    float(lat/4 + float64(i)),
			TempMaxC:    float(lat/2 + float64(i)),
		})
	}
	return weather.RawForecast{
		Timezone: "GMT",
		Current: weather.CurrentConditions{
			TemperatureC: float(lat / 3),
			HumidityPct:  float(54.6),
			WindSpeedMps: float(4.25),
			WeatherCode:  code,
		},
		Daily: daily,
	}
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []string
	calls    map[string]int
	failures map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{calls: map[string]int{}, failures: map[string]int{}}
}

func (m *fakeMetrics) RecordRun(ctx context.Context, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *fakeMetrics) RecordUpstreamCall(ctx context.Context, service string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[service]++
	if !success {
		m.failures[service]++
	}
}

var observedAt = time.Date(2024, 5, 6, 14, 5, 0, 0, time.UTC)

func newTestPipeline(t *testing.T, resolver service.LocationResolver, fetcher service.ForecastFetcher) *Pipeline {
	t.Helper()
	formatter, err := weather.NewFormatter("en")
	require.NoError(t, err)

	p := NewPipeline(resolver, fetcher, formatter, "London", zaptest.NewLogger(t), &telemetry.Telemetry{})
	p.now = func() time.Time { return observedAt }
	return p
}

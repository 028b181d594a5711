package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-search-app/internal/weather"
)

func TestNewPipelineStartsIdle(t *testing.T) {
	p := newTestPipeline(t, newFakeResolver(), newFakeFetcher())

	state := p.State()
	assert.Equal(t, weather.StatusIdle, state.Status)
	assert.Nil(t, state.Place)
	assert.Equal(t, weather.DefaultIcon, state.Icon)
	assert.Empty(t, state.Outlook)
	assert.Equal(t, weather.ErrorNone, state.Error)
}

func TestRunParisClearSky(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	fetcher.codes[places["Paris"].Latitude] = 0
	metrics := newFakeMetrics()

	p := newTestPipeline(t, resolver, fetcher)
	p.SetMetricsRecorder(metrics)

	state := p.Run(context.Background(), "  Paris  ")

	require.Equal(t, weather.StatusReady, state.Status)
	require.NotNil(t, state.Place)
	assert.Equal(t, "France", state.Place.Country)
	assert.Equal(t, "Paris, Île-de-France, France", state.Place.DisplayLabel())
	assert.Equal(t, "Clear sky", state.Description)
	assert.Equal(t, "01d", state.Icon)
	assert.Equal(t, weather.ErrorNone, state.Error)
	assert.Equal(t, "Paris", state.Query)
	assert.Equal(t, []string{"Paris"}, resolver.calls)

	assert.Equal(t, observedAt, state.ObservedAt)
	assert.Contains(t, state.ObservedLabel, "Monday")

	require.NotNil(t, state.TemperatureC)
	assert.InDelta(t, 48.85/3, *state.TemperatureC, 1e-9)
	require.NotNil(t, state.HumidityPct)
	assert.Equal(t, 55.0, *state.HumidityPct)
	require.NotNil(t, state.WindSpeedMps)
	assert.Equal(t, 4.25, *state.WindSpeedMps)

	assert.Equal(t, []string{OutcomeReady}, metrics.outcomes)
	assert.Equal(t, 1, metrics.calls["fake-geocoding"])
	assert.Equal(t, 1, metrics.calls["fake-forecast"])

	assert.Equal(t, state, p.State())
}

func TestRunOutlookSkipsToday(t *testing.T) {
	p := newTestPipeline(t, newFakeResolver(), newFakeFetcher())

	state := p.Run(context.Background(), "Paris")
	require.Len(t, state.Outlook, 6)

	want := rawForecast(places["Paris"].Latitude, 0, 7)
	names := []string{"Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, day := range state.Outlook {
		src := want.Daily[i+1]
		assert.Equal(t, src.Date, day.Date)
		assert.Equal(t, names[i], day.ShortDayName)
		assert.Equal(t, weather.ClassifyIcon(*src.WeatherCode), day.Icon)
		assert.Equal(t, weather.ClassifyText(*src.WeatherCode), day.Description)
		assert.Equal(t, *src.TempMinC, *day.TempMinC)
		assert.Equal(t, *src.TempMaxC, *day.TempMaxC)
	}
}

func TestRunOutlookLength(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{days: 0, want: 0},
		{days: 1, want: 0},
		{days: 3, want: 2},
		{days: 7, want: 6},
		{days: 10, want: 6},
	}

	for _, tt := range tests {
		fetcher := newFakeFetcher()
		fetcher.days = tt.days
		p := newTestPipeline(t, newFakeResolver(), fetcher)

		state := p.Run(context.Background(), "Oslo")
		assert.Equal(t, weather.StatusReady, state.Status, "days=%d", tt.days)
		assert.Len(t, state.Outlook, tt.want, "days=%d", tt.days)
	}
}

func TestRunNullDailyValues(t *testing.T) {
	p := newTestPipeline(t, newFakeResolver(), nil)
	p.fetcher = fetchFunc(func() weather.RawForecast {
		raw := rawForecast(1, 3, 7)
		raw.Current.TemperatureC = nil
		raw.Current.HumidityPct = nil
		raw.Daily[1].WeatherCode = nil
		raw.Daily[2].TempMinC = nil
		return raw
	})

	state := p.Run(context.Background(), "Oslo")
	require.Equal(t, weather.StatusReady, state.Status)
	assert.Nil(t, state.TemperatureC)
	assert.Nil(t, state.HumidityPct)
	assert.Equal(t, weather.DefaultIcon, state.Outlook[0].Icon)
	assert.Equal(t, weather.DefaultDescription, state.Outlook[0].Description)
	assert.Nil(t, state.Outlook[1].TempMinC)
	assert.NotNil(t, state.Outlook[1].TempMaxC)
}

func TestRunIsIdempotent(t *testing.T) {
	p := newTestPipeline(t, newFakeResolver(), newFakeFetcher())

	first := p.Run(context.Background(), "Paris")
	p.now = func() time.Time { return observedAt.Add(time.Hour) }
	second := p.Run(context.Background(), "Paris")

	assert.NotEqual(t, first.ObservedAt, second.ObservedAt)

	first.ObservedAt, first.ObservedLabel = time.Time{}, ""
	second.ObservedAt, second.ObservedLabel = time.Time{}, ""
	assert.Equal(t, first, second)
}

func TestRunBlankQueryIsIgnored(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	p := newTestPipeline(t, resolver, fetcher)

	ready := p.Run(context.Background(), "Paris")

	for _, q := range []string{"", "   ", "\t\n"} {
		state := p.Run(context.Background(), q)
		assert.Equal(t, ready, state)
	}

	assert.Equal(t, 1, resolver.callCount())
	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, ready, p.State())
}

func TestRunPlaceNotFoundKeepsPreviousWeather(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	metrics := newFakeMetrics()
	p := newTestPipeline(t, resolver, fetcher)
	p.SetMetricsRecorder(metrics)

	ready := p.Run(context.Background(), "Paris")
	require.Equal(t, weather.StatusReady, ready.Status)

	state := p.Run(context.Background(), "Atlantis")

	assert.Equal(t, weather.StatusFailed, state.Status)
	assert.Equal(t, weather.ErrorPlaceNotFound, state.Error)
	assert.Equal(t, ready.Place, state.Place)
	assert.Equal(t, ready.Outlook, state.Outlook)
	assert.Equal(t, ready.TemperatureC, state.TemperatureC)
	assert.Equal(t, 1, fetcher.callCount(), "forecast must not be fetched for an unknown place")

	assert.Equal(t, []string{OutcomeReady, OutcomePlaceNotFound}, metrics.outcomes)
	assert.Zero(t, metrics.failures["fake-geocoding"])

	// the next successful run clears the error
	state = p.Run(context.Background(), "Oslo")
	assert.Equal(t, weather.StatusReady, state.Status)
	assert.Equal(t, weather.ErrorNone, state.Error)
	assert.Equal(t, "Oslo", state.Place.Name)
}

func TestRunResolverFailure(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	resolver.err = errTransport
	metrics := newFakeMetrics()
	p := newTestPipeline(t, resolver, fetcher)
	p.SetMetricsRecorder(metrics)

	state := p.Run(context.Background(), "Paris")

	assert.Equal(t, weather.StatusFailed, state.Status)
	assert.Equal(t, weather.ErrorFetchFailed, state.Error)
	assert.Nil(t, state.Place)
	assert.Zero(t, fetcher.callCount())
	assert.Equal(t, 1, metrics.failures["fake-geocoding"])
	assert.Equal(t, []string{OutcomeFetchFailed}, metrics.outcomes)
}

func TestRunFetcherFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	p := newTestPipeline(t, newFakeResolver(), fetcher)

	ready := p.Run(context.Background(), "Paris")

	fetcher.mu.Lock()
	fetcher.err = errTransport
	fetcher.mu.Unlock()

	state := p.Run(context.Background(), "Oslo")
	assert.Equal(t, weather.StatusFailed, state.Status)
	assert.Equal(t, weather.ErrorFetchFailed, state.Error)
	assert.Equal(t, ready.Place, state.Place)
}

func TestLateRunIsDiscarded(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	tokyo := places["Tokyo"].Latitude
	gate := make(chan struct{})
	fetcher.gates[tokyo] = gate
	metrics := newFakeMetrics()

	p := newTestPipeline(t, resolver, fetcher)
	p.SetMetricsRecorder(metrics)

	done := make(chan weather.ViewState, 1)
	go func() {
		done <- p.Run(context.Background(), "Tokyo")
	}()

	require.Equal(t, tokyo, <-fetcher.entered)
	assert.Equal(t, weather.StatusFetching, p.State().Status)

	oslo := p.Run(context.Background(), "Oslo")
	require.Equal(t, weather.StatusReady, oslo.Status)
	require.Equal(t, "Oslo", oslo.Place.Name)

	close(gate)
	late := <-done

	assert.Equal(t, "Oslo", late.Place.Name)
	assert.Equal(t, oslo, p.State())
	assert.Equal(t, []string{OutcomeReady, OutcomeSuperseded}, metrics.outcomes)
}

func TestStaleRunDoesNotFetchOrFail(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	gate := make(chan struct{})
	resolver.gates["Tokyo"] = gate

	p := newTestPipeline(t, resolver, fetcher)

	done := make(chan weather.ViewState, 1)
	go func() {
		done <- p.Run(context.Background(), "Tokyo")
	}()
	require.Equal(t, "Tokyo", <-resolver.entered)

	oslo := p.Run(context.Background(), "Oslo")
	close(gate)
	<-done

	assert.Zero(t, fetcher.callsFor(places["Tokyo"].Latitude))
	assert.Equal(t, oslo, p.State())
}

func TestStaleFailureDoesNotTouchNewerRun(t *testing.T) {
	resolver, fetcher := newFakeResolver(), newFakeFetcher()
	gate := make(chan struct{})
	resolver.gates["Atlantis"] = gate

	p := newTestPipeline(t, resolver, fetcher)

	done := make(chan weather.ViewState, 1)
	go func() {
		done <- p.Run(context.Background(), "Atlantis")
	}()
	require.Equal(t, "Atlantis", <-resolver.entered)

	oslo := p.Run(context.Background(), "Oslo")
	close(gate)
	late := <-done

	assert.Equal(t, weather.ErrorNone, late.Error)
	assert.Equal(t, weather.StatusReady, p.State().Status)
	assert.Equal(t, oslo, p.State())
}

func TestSeedRunsDefaultCity(t *testing.T) {
	resolver := newFakeResolver()
	p := newTestPipeline(t, resolver, newFakeFetcher())

	state := p.Seed(context.Background())
	assert.Equal(t, weather.StatusReady, state.Status)
	assert.Equal(t, "London", state.Place.Name)
	assert.Equal(t, []string{"London"}, resolver.calls)
}

func TestStateIsACopy(t *testing.T) {
	p := newTestPipeline(t, newFakeResolver(), newFakeFetcher())
	p.Run(context.Background(), "Paris")

	state := p.State()
	state.Outlook[0].Description = "changed"

	assert.NotEqual(t, "changed", p.State().Outlook[0].Description)
}

type fetchFunc func() weather.RawForecast

func (f fetchFunc) Name() string { return "func-forecast" }

func (f fetchFunc) Fetch(ctx context.Context, lat, lon float64) (weather.RawForecast, error) {
	return f(), nil
}

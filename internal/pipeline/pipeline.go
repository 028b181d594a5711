package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/service"
	"github.com/vzahanych/weather-search-app/internal/weather"
	"github.com/vzahanych/weather-search-app/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxOutlookDays is the number of upcoming days kept after dropping today.
const MaxOutlookDays = 6

// Run outcomes reported to the MetricsRecorder.
const (
	OutcomeReady         = "ready"
	OutcomePlaceNotFound = "place_not_found"
	OutcomeFetchFailed   = "fetch_failed"
	OutcomeSuperseded    = "superseded"
)

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordRun(ctx context.Context, outcome string)
	RecordUpstreamCall(ctx context.Context, service string, success bool)
}

// Pipeline resolves a place, fetches its forecast and publishes a single ViewState.
//
// Every Run takes a new token. A run only writes the state while its token is still
// the latest one, so a slow run that was overtaken by a newer search is discarded
// when it completes.
type Pipeline struct {
	resolver  service.LocationResolver
	fetcher   service.ForecastFetcher
	formatter *weather.Formatter
	seedQuery string
	logger    *zap.Logger
	tele      *telemetry.Telemetry
	metrics   MetricsRecorder
	now       func() time.Time

	mutex sync.RWMutex
	token uint64
	state weather.ViewState
}

func NewPipeline(resolver service.LocationResolver, fetcher service.ForecastFetcher, formatter *weather.Formatter, seedQuery string, logger *zap.Logger, tele *telemetry.Telemetry) *Pipeline {
	return &Pipeline{
		resolver:  resolver,
		fetcher:   fetcher,
		formatter: formatter,
		seedQuery: seedQuery,
		logger:    logger,
		tele:      tele,
		now:       time.Now,
		state:     weather.NewViewState(),
	}
}

// NewPipelineWithConfig wires the Open-Meteo services behind one shared transport.
func NewPipelineWithConfig(cfg config.WeatherConfig, locale string, logger *zap.Logger, tele *telemetry.Telemetry) (*Pipeline, error) {
	formatter, err := weather.NewFormatter(locale)
	if err != nil {
		return nil, err
	}

	transport := service.NewTransport(cfg)
	resolver := service.NewGeocodingServiceWithConfig(cfg, transport, logger, tele)
	fetcher := service.NewOpenMeteoServiceWithConfig(cfg, transport, logger, tele)

	logger.Info("Registered weather services",
		zap.String("resolver", resolver.Name()),
		zap.String("fetcher", fetcher.Name()),
		zap.String("locale", formatter.Locale()))

	return NewPipeline(resolver, fetcher, formatter, cfg.SeedCity, logger, tele), nil
}

// SetMetricsRecorder sets the metrics recorder for the pipeline
func (p *Pipeline) SetMetricsRecorder(metrics MetricsRecorder) {
	p.metrics = metrics
}

// State returns the current view.
func (p *Pipeline) State() weather.ViewState {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.state.Clone()
}

// Seed runs the configured default query so the view is populated before any user input.
func (p *Pipeline) Seed(ctx context.Context) weather.ViewState {
	return p.Run(ctx, p.seedQuery)
}

// Run searches for query and returns the view once this run has finished. A blank
// query is ignored without touching the state. If a newer run started meanwhile,
// the returned view is that run's state and this run's result is dropped.
func (p *Pipeline) Run(ctx context.Context, query string) weather.ViewState {
	query = strings.TrimSpace(query)
	if query == "" {
		p.logger.Debug("Ignoring blank query")
		return p.State()
	}

	runID := uuid.New().String()
	runLogger := p.logger.With(zap.String("run_id", runID), zap.String("query", query))

	tracer := p.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	token := p.begin(query)

	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.String("query", query),
		attribute.Int64("token", int64(token)),
	)
	runLogger.Info("Search started", zap.Uint64("token", token))

	place, err := p.resolver.Resolve(ctx, query)
	p.recordCall(ctx, p.resolver.Name(), err == nil || errors.Is(err, service.ErrPlaceNotFound))
	if err != nil {
		if errors.Is(err, service.ErrPlaceNotFound) {
			runLogger.Info("Place not found")
			span.SetAttributes(attribute.String("outcome", OutcomePlaceNotFound))
			return p.fail(ctx, token, weather.ErrorPlaceNotFound)
		}
		runLogger.Error("Failed to resolve place", zap.Error(err))
		span.RecordError(err)
		span.SetAttributes(attribute.String("outcome", OutcomeFetchFailed))
		return p.fail(ctx, token, weather.ErrorFetchFailed)
	}

	if !p.advance(token, weather.StatusFetching) {
		runLogger.Debug("Run superseded before fetching forecast")
		span.SetAttributes(attribute.String("outcome", OutcomeSuperseded))
		p.recordRun(ctx, OutcomeSuperseded)
		return p.State()
	}

	raw, err := p.fetcher.Fetch(ctx, place.Latitude, place.Longitude)
	p.recordCall(ctx, p.fetcher.Name(), err == nil)
	if err != nil {
		runLogger.Error("Failed to fetch forecast",
			zap.Error(err),
			zap.Float64("lat", place.Latitude),
			zap.Float64("lon", place.Longitude))
		span.RecordError(err)
		span.SetAttributes(attribute.String("outcome", OutcomeFetchFailed))
		return p.fail(ctx, token, weather.ErrorFetchFailed)
	}

	view := p.buildView(query, place, raw)

	state, ok := p.commit(token, view)
	if !ok {
		runLogger.Debug("Run superseded, discarding forecast")
		span.SetAttributes(attribute.String("outcome", OutcomeSuperseded))
		p.recordRun(ctx, OutcomeSuperseded)
		return state
	}

	span.SetAttributes(attribute.String("outcome", OutcomeReady))
	runLogger.Info("Search completed",
		zap.String("place", place.DisplayLabel()),
		zap.Int("outlook_days", len(state.Outlook)))
	p.recordRun(ctx, OutcomeReady)

	return state
}

// begin takes a new token, clears the previous error and marks the view as resolving.
// Previously shown weather stays in place until the run ends.
func (p *Pipeline) begin(query string) uint64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.token++

	next := p.state.Clone()
	next.Status = weather.StatusResolving
	next.Query = query
	next.Error = weather.ErrorNone
	p.state = next

	return p.token
}

func (p *Pipeline) advance(token uint64, status weather.Status) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if token != p.token {
		return false
	}

	next := p.state.Clone()
	next.Status = status
	p.state = next
	return true
}

// fail keeps the last displayed weather and only sets the error.
func (p *Pipeline) fail(ctx context.Context, token uint64, kind weather.ErrorKind) weather.ViewState {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if token != p.token {
		p.recordRun(ctx, OutcomeSuperseded)
		return p.state.Clone()
	}

	next := p.state.Clone()
	next.Status = weather.StatusFailed
	next.Error = kind
	p.state = next

	if kind == weather.ErrorPlaceNotFound {
		p.recordRun(ctx, OutcomePlaceNotFound)
	} else {
		p.recordRun(ctx, OutcomeFetchFailed)
	}

	return next.Clone()
}

// commit stamps the observation time and replaces the state if token is still current.
func (p *Pipeline) commit(token uint64, view weather.ViewState) (weather.ViewState, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if token != p.token {
		return p.state.Clone(), false
	}

	now := p.now()
	view.Status = weather.StatusReady
	view.ObservedAt = now
	view.ObservedLabel = p.formatter.ObservedLabel(now)
	p.state = view

	return view.Clone(), true
}

func (p *Pipeline) buildView(query string, place weather.ResolvedPlace, raw weather.RawForecast) weather.ViewState {
	icon, text := weather.Classify(raw.Current.WeatherCode)

	return weather.ViewState{
		Query:        query,
		Place:        &place,
		Description:  text,
		Icon:         icon,
		TemperatureC: copyValue(raw.Current.TemperatureC),
		HumidityPct:  roundValue(raw.Current.HumidityPct),
		WindSpeedMps: copyValue(raw.Current.WindSpeedMps),
		Outlook:      p.buildOutlook(raw.Daily),
		Error:        weather.ErrorNone,
	}
}

// buildOutlook keeps daily entries 1 through MaxOutlookDays; index 0 is today.
func (p *Pipeline) buildOutlook(daily []weather.DailyEntry) []weather.ForecastDay {
	last := len(daily) - 1
	if last > MaxOutlookDays {
		last = MaxOutlookDays
	}

	outlook := make([]weather.ForecastDay, 0, MaxOutlookDays)
	for i := 1; i <= last; i++ {
		day := daily[i]

		icon, text := weather.DefaultIcon, weather.DefaultDescription
		if day.WeatherCode != nil {
			icon, text = weather.Classify(*day.WeatherCode)
		}

		outlook = append(outlook, weather.ForecastDay{
			Date:         day.Date,
			ShortDayName: p.formatter.ShortDayName(day.Date),
			Icon:         icon,
			Description:  text,
			TempMinC:     copyValue(day.TempMinC),
			TempMaxC:     copyValue(day.TempMaxC),
		})
	}

	return outlook
}

func (p *Pipeline) recordRun(ctx context.Context, outcome string) {
	if p.metrics != nil {
		p.metrics.RecordRun(ctx, outcome)
	}
}

func (p *Pipeline) recordCall(ctx context.Context, name string, success bool) {
	if p.metrics != nil {
		p.metrics.RecordUpstreamCall(ctx, name, success)
	}
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func roundValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	return &r
}

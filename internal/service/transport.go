package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vzahanych/weather-search-app/internal/config"
	"golang.org/x/time/rate"
)

var (
	ErrPlaceNotFound     = errors.New("place not found")
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyQuery        = errors.New("empty place query")
)

// APIError is returned for non-200 upstream responses. Reason is taken from the
// Open-Meteo error body when present.
type APIError struct {
	Service    string
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s request failed with status %d", e.Service, e.StatusCode)
}

var payloadValidator = validator.New()

// Transport is the HTTP client shared by the Open-Meteo services. Requests are paced
// by a token bucket so bursts of searches stay within the free API's fair use.
type Transport struct {
	client  *http.Client
	limiter *rate.Limiter
}

func NewTransport(cfg config.WeatherConfig) *Transport {
	return &Transport{
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

// getJSON decodes a 200 response into out and validates it against its validate tags.
func (t *Transport) getJSON(ctx context.Context, service string, u *url.URL, out interface{}) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", service, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute %s request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Service: service, StatusCode: resp.StatusCode}
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Reason = body.Reason
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrMalformedResponse, service, err)
	}

	if err := payloadValidator.Struct(out); err != nil {
		return fmt.Errorf("%w: %s response: %v", ErrMalformedResponse, service, err)
	}

	return nil
}

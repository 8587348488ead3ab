package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/taskflow/taskflow-api/internal/api/metrics"
)

// NewMemoryRateLimiterStore is the single-instance fallback used when Redis
// is not configured: a token bucket per client refilled at requests/window.
func NewMemoryRateLimiterStore(requests int, window time.Duration) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(requests) / window.Seconds()),
		Burst:     requests,
		ExpiresIn: 2 * window,
	})
}

// failOpenStore lets requests through when the backing store errors, so a
// Redis outage does not lock every client out of login.
type failOpenStore struct {
	store echomiddleware.RateLimiterStore
	log   zerolog.Logger
}

func (s failOpenStore) Allow(identifier string) (bool, error) {
	ok, err := s.store.Allow(identifier)
	if err != nil {
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limiter unavailable, allowing request")
		return true, nil
	}
	return ok, nil
}

// RateLimit rejects clients, keyed by route and IP, that exceed the store's
// budget with 429.
func RateLimit(store echomiddleware.RateLimiterStore, log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: failOpenStore{store: store, log: log},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.Path() + ":" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.WithLabelValues(c.Path()).Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}

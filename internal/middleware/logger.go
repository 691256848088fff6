package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WithLogging логирует каждый запрос к REST API: метод, путь, статус и задержку
func WithLogging(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			latency := time.Since(start)

			if err != nil {
				logger.Warn("REST request failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("latency", latency),
					zap.Error(err),
				)
				return nil, err
			}

			logger.Debug("REST request processed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("latency", latency),
				zap.Int("status", resp.StatusCode),
			)
			return resp, nil
		})
	}
}

package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/metrics"
	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit limits requests per client IP, per router name.
func RateLimit(
	rateLimiter RequestRateLimiter,
	routerName string,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqIp, err := pkg.ReadUserIP(r)
			if err != nil {
				log.Errorf("rate limit [%s]: read user ip: %s", routerName, err)
				reqIp = r.RemoteAddr
			}

			res, err := rateLimiter.Allow(
				r.Context(),
				fmt.Sprintf("%s:%s", routerName, reqIp),
				redis_rate.PerMinute(allowedPerMin),
			)
			if err != nil {
				pkg.WriteInternalError(w)
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}
			log.Tracef("rate limit [%s]: limited %s, retry after %s", routerName, reqIp, res.RetryAfter)
			pkg.WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		})
	}
}

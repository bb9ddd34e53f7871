package config

import "golang.org/x/time/rate"

// newRateLimiter builds a token-bucket limiter from a run profile's rate
// fields, defaulting burst to 1 so a RateLimitPerSecond with no explicit
// burst behaves as a strict minimum interval between dispatches.
func newRateLimiter(perSecond float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

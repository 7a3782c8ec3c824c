// Package ratelimiter implements the token-bucket admission rule used to
// throttle job submissions, expressed as a single "watermark" timestamp
// so admission can be evaluated statelessly per request with no
// background ticking — a direct port of the original's
// rate_limiter.py.
package ratelimiter

import "time"

// Limiter is a per-team token bucket. SustainedRate is requests per
// minute; BurstSize is the maximum number of requests admissible in an
// instantaneous burst.
type Limiter struct {
	SustainedRate float64
	BurstSize     int
}

// RequestCost is the bucket's refill interval: the time a single
// admitted request "costs" against the watermark.
func (l Limiter) RequestCost() time.Duration {
	return time.Duration(60.0 / l.SustainedRate * float64(time.Second))
}

// MaxAge is the maximum distance the watermark may lag behind now before
// it is clamped forward, i.e. the time it takes to fully refill a burst.
func (l Limiter) MaxAge() time.Duration {
	return l.RequestCost() * time.Duration(l.BurstSize)
}

// TryAdmit evaluates admission against a possibly-nil watermark (Unix
// seconds) and returns whether the request is admitted and the
// watermark that should be persisted next.
//
// The watermark is always clamped forward to at least now-maxAge first,
// regardless of whether this call ends up admitting — a stale bucket
// loses unused capacity rather than accumulating it indefinitely. It
// only advances by one request cost when the call actually admits.
func (l Limiter) TryAdmit(watermark *float64, now time.Time) (admitted bool, newWatermark float64) {
	nowSeconds := unixSeconds(now)
	maxAgeSeconds := l.MaxAge().Seconds()
	floor := nowSeconds - maxAgeSeconds

	w := floor
	if watermark != nil && *watermark > floor {
		w = *watermark
	}

	requestCostSeconds := l.RequestCost().Seconds()
	if w+requestCostSeconds <= nowSeconds {
		return true, w + requestCostSeconds
	}
	return false, w
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

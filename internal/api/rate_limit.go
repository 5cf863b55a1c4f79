package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	headerRateLimitLimit = "X-Ogw-Ratelimit-Limit"
	headerRateLimitReset = "X-Ogw-Ratelimit-Reset"
)

// RateLimitInfo holds the gateway's rate limit headers from the last response.
type RateLimitInfo struct {
	Limit   *int
	ResetAt *time.Time
}

// Meta returns a JSON-ready map for CLI output metadata.
func (r *RateLimitInfo) Meta() map[string]any {
	if r == nil {
		return nil
	}
	meta := map[string]any{}
	if r.Limit != nil {
		meta["limit"] = *r.Limit
	}
	if r.ResetAt != nil {
		meta["reset_at"] = r.ResetAt.UTC().Format(time.RFC3339)
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// LastRateLimit returns the most recent rate limit info seen by the client.
func (c *Client) LastRateLimit() *RateLimitInfo {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()
	if c.lastRateLimit == nil {
		return nil
	}
	info := RateLimitInfo{}
	if c.lastRateLimit.Limit != nil {
		v := *c.lastRateLimit.Limit
		info.Limit = &v
	}
	if c.lastRateLimit.ResetAt != nil {
		t := *c.lastRateLimit.ResetAt
		info.ResetAt = &t
	}
	return &info
}

func (c *Client) recordRateLimit(h http.Header) {
	info := parseRateLimitInfo(h, time.Now())
	if info == nil {
		return
	}
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()
	c.lastRateLimit = info
}

func parseRateLimitInfo(h http.Header, now time.Time) *RateLimitInfo {
	if h == nil {
		return nil
	}
	limitVal := strings.TrimSpace(h.Get(headerRateLimitLimit))
	resetVal := strings.TrimSpace(h.Get(headerRateLimitReset))
	if limitVal == "" && resetVal == "" {
		return nil
	}

	info := &RateLimitInfo{}
	if v, err := strconv.Atoi(limitVal); err == nil {
		info.Limit = &v
	}
	if d, ok := rateLimitResetDelay(h); ok {
		t := now.Add(d).UTC()
		info.ResetAt = &t
	}
	if info.Limit == nil && info.ResetAt == nil {
		return nil
	}
	return info
}

// rateLimitResetDelay reads the gateway's seconds-until-reset header.
func rateLimitResetDelay(h http.Header) (time.Duration, bool) {
	value := strings.TrimSpace(h.Get(headerRateLimitReset))
	if value == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// SetRateLimit caps the client's outbound request rate. A non-positive
// perSecond removes the cap.
func (c *Client) SetRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (c *Client) waitForSlot(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

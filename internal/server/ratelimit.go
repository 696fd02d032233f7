package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces per-client request windows and daily quotas. Each
// window is fixed: it starts with the first request after the previous one
// expired.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int
	maxRequestsPerDay int
	maxDataPerDay     int64 // bytes

	clients map[string]*ClientUsage
	now     func() time.Time
}

// ClientUsage is the tracked usage of one client.
type ClientUsage struct {
	MinuteStart time.Time
	MinuteCount int
	HourStart   time.Time
	HourCount   int
	DayStart    time.Time
	DayCount    int
	DayBytes    int64
}

// NewRateLimiter creates a rate limiter. Zero disables the respective limit.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int, maxDataPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		maxDataPerDay:     maxDataPerDay,
		clients:           make(map[string]*ClientUsage),
		now:               time.Now,
	}
}

// CheckRateLimit admits one request of dataSize bytes from clientID, or
// returns a *RateLimitError or *QuotaExceededError. Rejected requests are
// not counted.
func (rl *RateLimiter) CheckRateLimit(clientID string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &ClientUsage{MinuteStart: now, HourStart: now, DayStart: startOfDay(now)}
		rl.clients[clientID] = usage
	}
	rl.roll(usage, now)

	if rl.requestsPerMinute > 0 && usage.MinuteCount >= rl.requestsPerMinute {
		return &RateLimitError{Type: "minute", Limit: rl.requestsPerMinute, RetryAfter: usage.MinuteStart.Add(time.Minute).Sub(now)}
	}
	if rl.requestsPerHour > 0 && usage.HourCount >= rl.requestsPerHour {
		return &RateLimitError{Type: "hour", Limit: rl.requestsPerHour, RetryAfter: usage.HourStart.Add(time.Hour).Sub(now)}
	}

	resets := usage.DayStart.AddDate(0, 0, 1)
	if rl.maxRequestsPerDay > 0 && usage.DayCount >= rl.maxRequestsPerDay {
		return &QuotaExceededError{Type: "requests", Limit: int64(rl.maxRequestsPerDay), Used: int64(usage.DayCount), Resets: resets}
	}
	if rl.maxDataPerDay > 0 && usage.DayBytes+dataSize > rl.maxDataPerDay {
		return &QuotaExceededError{Type: "data", Limit: rl.maxDataPerDay, Used: usage.DayBytes, Resets: resets}
	}

	usage.MinuteCount++
	usage.HourCount++
	usage.DayCount++
	usage.DayBytes += dataSize
	return nil
}

// roll starts new windows for those that have expired.
func (rl *RateLimiter) roll(usage *ClientUsage, now time.Time) {
	if now.Sub(usage.MinuteStart) >= time.Minute {
		usage.MinuteStart = now
		usage.MinuteCount = 0
	}
	if now.Sub(usage.HourStart) >= time.Hour {
		usage.HourStart = now
		usage.HourCount = 0
	}
	if day := startOfDay(now); !day.Equal(usage.DayStart) {
		usage.DayStart = day
		usage.DayCount = 0
		usage.DayBytes = 0
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetUsage returns a copy of the usage tracked for clientID.
func (rl *RateLimiter) GetUsage(clientID string) ClientUsage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if usage, ok := rl.clients[clientID]; ok {
		return *usage
	}
	return ClientUsage{}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute" or "hour"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // until the window ends
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a daily quota violation.
type QuotaExceededError struct {
	Type   string // "requests" or "data"
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}

package scoringhttp

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// maxTrackedClients triggers a sweep of idle buckets.
	maxTrackedClients = 1000
	clientIdleTTL     = 15 * time.Minute
)

// KeyFunc names the client a request is charged to.
type KeyFunc func(r *http.Request) string

// ClientIP charges a request to the host part of its remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// TokenSubject charges a request to the subject of the claims BearerAuth
// stored, and to the client IP when there are none.
func TokenSubject(r *http.Request) string {
	if c, ok := ClaimsFromContext(r.Context()); ok && c.Subject != "" {
		return "sub:" + c.Subject
	}
	return ClientIP(r)
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// ClientLimiter keeps one token bucket per client key.
type ClientLimiter struct {
	limit rate.Limit
	burst int
	key   KeyFunc
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewClientLimiter allows limit requests per second with burst per client.
func NewClientLimiter(limit float64, burst int, key KeyFunc) *ClientLimiter {
	return &ClientLimiter{
		limit:   rate.Limit(limit),
		burst:   burst,
		key:     key,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Reserve takes a token for the request's client. When none is available it
// returns false and how long until one is.
func (l *ClientLimiter) Reserve(r *http.Request) (bool, time.Duration) {
	now := l.now()
	b := l.bucketFor(l.key(r), now)

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *ClientLimiter) bucketFor(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) >= maxTrackedClients {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > clientIdleTTL {
				delete(l.buckets, k)
			}
		}
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b
}

// Tracked returns the number of clients holding a bucket.
func (l *ClientLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Throttle answers 429 with Retry-After once the client's bucket is empty.
func Throttle(l *ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, wait := l.Reserve(r); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

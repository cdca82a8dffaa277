package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/pricewatch/web/internal/logger"
	"github.com/codyseavey/pricewatch/web/internal/metrics"
)

const maxRetryDelay = 30 * time.Second

// Config tunes cache behavior
type Config struct {
	// StaleTime is how long fetched data is served without refetching
	StaleTime time.Duration
	// GCTime drops entries nobody has read for this long
	GCTime time.Duration
	// Retry is the number of extra attempts after a failed fetch
	Retry int
	// RetryDelay is the first backoff; it doubles per attempt
	RetryDelay time.Duration
	MaxEntries int
}

// DefaultConfig returns the settings the UI has always used
func DefaultConfig() Config {
	return Config{
		StaleTime:  30 * time.Second,
		GCTime:     5 * time.Minute,
		Retry:      1,
		RetryDelay: time.Second,
		MaxEntries: 1000,
	}
}

type entry struct {
	key Key
	id  uint64 // unique per entry; a recreated entry never shares a flight

	mu          sync.Mutex
	data        any
	hasData     bool
	err         error
	updatedAt   time.Time
	invalidated bool
	gen         uint64 // bumped on every invalidation
	fetching    bool
}

// Client is the process-wide query cache. Identical concurrent fetches
// share one request; mutations mark dependent entries stale.
type Client struct {
	cfg     Config
	entries *expirable.LRU[string, *entry]
	group   singleflight.Group
	mu      sync.Mutex
	nextID  uint64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a cache with cfg, filling zero fields from DefaultConfig
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.StaleTime <= 0 {
		cfg.StaleTime = def.StaleTime
	}
	if cfg.GCTime <= 0 {
		cfg.GCTime = def.GCTime
	}
	if cfg.Retry < 0 {
		cfg.Retry = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}

	c := &Client{
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepContext,
	}
	c.entries = expirable.NewLRU[string, *entry](cfg.MaxEntries, nil, cfg.GCTime)
	return c
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.cfg
}

// Len returns the number of cached entries
func (c *Client) Len() int {
	return c.entries.Len()
}

// lookup returns the entry for key, creating it if needed, and resets its
// garbage-collection timer.
func (c *Client) lookup(key Key) *entry {
	hash := key.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(hash)
	if !ok {
		c.nextID++
		e = &entry{key: key, id: c.nextID}
	}
	c.entries.Add(hash, e)
	metrics.QueryCacheEntries.Set(float64(c.entries.Len()))
	return e
}

// Fetch returns the cached result for opts.Key when it is fresh, and
// otherwise fetches it, sharing the request with any identical fetch
// already in flight. If ctx ends first, Fetch returns what is cached; the
// fetch itself keeps running and stores its result for the next reader.
func Fetch[T any](ctx context.Context, c *Client, opts Options[T]) Result[T] {
	return fetch(ctx, c, opts, false)
}

// Refetch is Fetch that ignores freshness
func Refetch[T any](ctx context.Context, c *Client, opts Options[T]) Result[T] {
	return fetch(ctx, c, opts, true)
}

// Prefetch starts a fetch in the background so a later Fetch of the same
// key finds it in flight or finished.
func Prefetch[T any](ctx context.Context, c *Client, opts Options[T]) {
	if !opts.enabled() {
		return
	}
	go fetch(context.WithoutCancel(ctx), c, opts, false)
}

func fetch[T any](ctx context.Context, c *Client, opts Options[T], force bool) Result[T] {
	if !opts.enabled() {
		return Result[T]{Status: StatusIdle}
	}

	resource := opts.Key.Resource()
	staleTime := c.staleTime(opts.StaleTime)
	e := c.lookup(opts.Key)

	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	if !force {
		if r := snapshot[T](e, c.now(), staleTime); r.IsFresh() {
			metrics.QueryCacheTotal.WithLabelValues(resource, "hit").Inc()
			return r
		}
	}
	metrics.QueryCacheTotal.WithLabelValues(resource, "miss").Inc()

	// The entry id and generation are part of the flight key: a reader
	// arriving after an invalidation, or after the entry was evicted and
	// recreated, never joins a request that stores into an older entry.
	flight := fmt.Sprintf("%s#%d.%d", opts.Key.Hash(), e.id, gen)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		c.run(detached, e, gen, resource, func(ctx context.Context) (any, error) {
			return opts.Fn(ctx)
		})
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.QueryCacheTotal.WithLabelValues(resource, "shared").Inc()
		}
	case <-ctx.Done():
		r := snapshot[T](e, c.now(), staleTime)
		if !r.HasData {
			r.Status = StatusError
			r.Err = ctx.Err()
		}
		return r
	}

	return snapshot[T](e, c.now(), staleTime)
}

// run performs the fetch with retries and stores the outcome on e
func (c *Client) run(ctx context.Context, e *entry, gen uint64, resource string, fn func(context.Context) (any, error)) {
	log := logger.FromContext(ctx).With(zap.String("query", e.key.Hash()))

	e.mu.Lock()
	e.fetching = true
	e.mu.Unlock()

	var (
		data any
		err  error
	)
	for attempt := 0; attempt <= c.cfg.Retry; attempt++ {
		if attempt > 0 {
			metrics.QueryCacheTotal.WithLabelValues(resource, "retry").Inc()
			if serr := c.sleep(ctx, c.retryDelay(attempt)); serr != nil {
				err = serr
				break
			}
		}
		data, err = fn(ctx)
		if err == nil {
			break
		}
		log.Debug("query attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetching = false

	if err != nil {
		metrics.QueryCacheTotal.WithLabelValues(resource, "error").Inc()
		log.Warn("query failed", zap.Error(err))
		e.err = err
		return
	}

	e.data = data
	e.hasData = true
	e.err = nil
	e.updatedAt = c.now()
	// Data fetched before an invalidation is kept but stays stale.
	e.invalidated = e.gen != gen
}

// Peek reports the cached state of opts.Key without fetching. Freshness
// follows opts.StaleTime the same way Fetch does; a disabled query reports
// StatusIdle.
func Peek[T any](c *Client, opts Options[T]) Result[T] {
	if !opts.enabled() {
		return Result[T]{Status: StatusIdle}
	}
	e, ok := c.entries.Peek(opts.Key.Hash())
	if !ok {
		return Result[T]{Status: StatusPending}
	}
	return snapshot[T](e, c.now(), c.staleTime(opts.StaleTime))
}

// Invalidate marks every entry whose key starts with prefix as stale and
// returns how many were marked. The next read of those keys refetches.
func (c *Client) Invalidate(prefix Key) int {
	n := 0
	for _, e := range c.entries.Values() {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.mu.Lock()
		e.invalidated = true
		e.gen++
		e.mu.Unlock()
		n++
	}
	metrics.QueryInvalidationsTotal.WithLabelValues(prefix.Resource()).Add(float64(n))
	return n
}

// Mutate runs a write once. Only when it succeeds are the mutation's keys
// invalidated; on failure the cache is left untouched.
func Mutate[T any](ctx context.Context, c *Client, m Mutation[T]) (T, error) {
	v, err := m.Fn(ctx)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(m.Name, "failed").Inc()
		return v, err
	}
	metrics.MutationsTotal.WithLabelValues(m.Name, "success").Inc()

	for _, key := range m.Invalidates {
		c.Invalidate(key)
	}
	return v, nil
}

// Poll keeps opts.Key refreshed every interval until ctx is done
func Poll[T any](ctx context.Context, c *Client, opts Options[T], interval time.Duration) {
	log := logger.FromContext(ctx)
	log.Info("query poller started", zap.String("query", opts.Key.Hash()), zap.Duration("interval", interval))

	Fetch(ctx, c, opts)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("query poller stopping", zap.String("query", opts.Key.Hash()))
			return
		case <-ticker.C:
			Refetch(ctx, c, opts)
		}
	}
}

func snapshot[T any](e *entry, now time.Time, staleTime time.Duration) Result[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := Result[T]{
		HasData:    e.hasData,
		UpdatedAt:  e.updatedAt,
		Err:        e.err,
		IsFetching: e.fetching,
	}
	if e.hasData {
		r.Data, _ = e.data.(T)
		r.IsStale = e.invalidated || now.Sub(e.updatedAt) >= staleTime
	}

	switch {
	case e.err != nil:
		r.Status = StatusError
	case e.hasData:
		r.Status = StatusSuccess
	default:
		r.Status = StatusPending
	}
	return r
}

func (c *Client) staleTime(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return c.cfg.StaleTime
}

func (c *Client) retryDelay(attempt int) time.Duration {
	d := c.cfg.RetryDelay << (attempt - 1)
	if d > maxRetryDelay || d <= 0 {
		return maxRetryDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

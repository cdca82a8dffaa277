package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient returns a cache with a controllable clock and no retry sleeps
func testClient(cfg Config) (*Client, *time.Time) {
	c := NewClient(cfg)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c, &now
}

func counting(calls *atomic.Int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestKey(t *testing.T) {
	k := Key{"priceHistory", int64(4), 30}

	assert.Equal(t, "priceHistory", k.Resource())
	assert.Equal(t, `["priceHistory",4,30]`, k.Hash())
	assert.True(t, k.HasPrefix(Key{"priceHistory"}))
	assert.True(t, k.HasPrefix(Key{"priceHistory", 4}))
	assert.False(t, k.HasPrefix(Key{"priceHistory", 5}))
	assert.False(t, k.HasPrefix(Key{"priceHistory", 4, 30, "extra"}))
	assert.False(t, Key{"products"}.HasPrefix(Key{"priceHistory"}))
	assert.Equal(t, "", Key{}.Resource())
}

func TestFetch_ServesFreshDataFromCache(t *testing.T) {
	c, now := testClient(Config{StaleTime: 30 * time.Second})
	var calls atomic.Int32
	opts := Options[string]{Key: Key{"products", "", ""}, Fn: counting(&calls, "list")}

	first := Fetch(context.Background(), c, opts)
	second := Fetch(context.Background(), c, opts)

	assert.Equal(t, StatusSuccess, first.Status)
	assert.Equal(t, "list", second.Data)
	assert.True(t, second.IsFresh())
	assert.Equal(t, int32(1), calls.Load())

	*now = now.Add(30 * time.Second)
	third := Fetch(context.Background(), c, opts)
	assert.Equal(t, "list", third.Data)
	assert.Equal(t, int32(2), calls.Load(), "stale data must be refetched")
}

func TestFetch_PerQueryStaleTime(t *testing.T) {
	c, now := testClient(Config{StaleTime: 30 * time.Second})
	var calls atomic.Int32
	opts := Options[string]{Key: Key{"dashboardSummary"}, Fn: counting(&calls, "s"), StaleTime: time.Minute}

	Fetch(context.Background(), c, opts)
	*now = now.Add(45 * time.Second)
	Fetch(context.Background(), c, opts)

	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_DeduplicatesConcurrentRequests(t *testing.T) {
	c, _ := testClient(Config{})
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	opts := Options[string]{
		Key: Key{"priceHistory", 1, 7},
		Fn: func(context.Context) (string, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return "history", nil
		},
	}

	var wg sync.WaitGroup
	results := make([]Result[string], 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = Fetch(context.Background(), c, opts)
	}()
	<-started

	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Fetch(context.Background(), c, opts)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "history", r.Data)
		assert.Equal(t, StatusSuccess, r.Status)
	}
}

func TestFetch_RetriesOnceBeforeFailing(t *testing.T) {
	t.Run("second attempt succeeds", func(t *testing.T) {
		c, _ := testClient(Config{Retry: 1})
		var calls atomic.Int32
		opts := Options[string]{
			Key: Key{"recentCollections", 10},
			Fn: func(context.Context) (string, error) {
				if calls.Add(1) == 1 {
					return "", errors.New("connection reset")
				}
				return "feed", nil
			},
		}

		r := Fetch(context.Background(), c, opts)

		assert.Equal(t, StatusSuccess, r.Status)
		assert.Equal(t, "feed", r.Data)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("error surfaces after the retry", func(t *testing.T) {
		c, _ := testClient(Config{Retry: 1})
		var calls atomic.Int32
		boom := errors.New("boom")
		opts := Options[string]{
			Key: Key{"recentCollections", 10},
			Fn: func(context.Context) (string, error) {
				calls.Add(1)
				return "", boom
			},
		}

		r := Fetch(context.Background(), c, opts)

		assert.Equal(t, StatusError, r.Status)
		assert.ErrorIs(t, r.Err, boom)
		assert.False(t, r.HasData)
		assert.False(t, r.IsLoading())
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestFetch_ErrorKeepsPreviousData(t *testing.T) {
	c, now := testClient(Config{Retry: 0})
	fail := false
	opts := Options[string]{
		Key: Key{"products", "", ""},
		Fn: func(context.Context) (string, error) {
			if fail {
				return "", errors.New("503")
			}
			return "cached", nil
		},
	}

	Fetch(context.Background(), c, opts)
	fail = true
	*now = now.Add(time.Minute)
	r := Fetch(context.Background(), c, opts)

	assert.Equal(t, StatusError, r.Status)
	assert.True(t, r.HasData)
	assert.Equal(t, "cached", r.Data)
}

func TestFetch_DisabledQueryNeverRuns(t *testing.T) {
	c, _ := testClient(Config{})
	var calls atomic.Int32
	productID := 0
	opts := Options[string]{
		Key:     Key{"priceHistory", productID, 7},
		Fn:      counting(&calls, "x"),
		Enabled: func() bool { return productID > 0 },
	}

	r := Fetch(context.Background(), c, opts)
	Prefetch(context.Background(), c, opts)

	assert.Equal(t, StatusIdle, r.Status)
	assert.False(t, r.IsLoading())
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestFetch_CallerCancellationDoesNotDropResult(t *testing.T) {
	c, _ := testClient(Config{})
	release := make(chan struct{})
	done := make(chan struct{})
	key := Key{"latestPrices", 3}
	opts := Options[string]{
		Key: key,
		Fn: func(ctx context.Context) (string, error) {
			defer close(done)
			<-release
			return "late", ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Fetch(ctx, c, opts)

	assert.Equal(t, StatusError, r.Status)
	assert.ErrorIs(t, r.Err, context.Canceled)

	close(release)
	<-done
	assert.Eventually(t, func() bool {
		return Peek(c, Options[string]{Key: key}).Data == "late"
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidate_ByPrefix(t *testing.T) {
	c, _ := testClient(Config{})
	var products, summary atomic.Int32
	all := Options[string]{Key: Key{"products", "", ""}, Fn: counting(&products, "all")}
	searched := Options[string]{Key: Key{"products", "맥북", ""}, Fn: counting(&products, "searched")}
	dash := Options[string]{Key: Key{"dashboardSummary"}, Fn: counting(&summary, "s")}

	Fetch(context.Background(), c, all)
	Fetch(context.Background(), c, searched)
	Fetch(context.Background(), c, dash)

	n := c.Invalidate(Key{"products"})
	assert.Equal(t, 2, n)
	assert.True(t, Peek(c, all).IsStale)
	assert.False(t, Peek(c, dash).IsStale)

	Fetch(context.Background(), c, all)
	Fetch(context.Background(), c, searched)
	Fetch(context.Background(), c, dash)

	assert.Equal(t, int32(4), products.Load())
	assert.Equal(t, int32(1), summary.Load())
}

func TestInvalidate_InFlightFetchStaysStale(t *testing.T) {
	c, _ := testClient(Config{})
	var calls atomic.Int32
	started := make(chan int32, 2)
	release := make(chan struct{})
	opts := Options[string]{
		Key: Key{"products", "", ""},
		Fn: func(context.Context) (string, error) {
			n := calls.Add(1)
			started <- n
			<-release
			if n == 1 {
				return "before delete", nil
			}
			return "after delete", nil
		},
	}

	first := make(chan Result[string], 1)
	go func() { first <- Fetch(context.Background(), c, opts) }()
	require.Equal(t, int32(1), <-started)

	c.Invalidate(Key{"products"})

	second := make(chan Result[string], 1)
	go func() { second <- Fetch(context.Background(), c, opts) }()

	select {
	case n := <-started:
		assert.Equal(t, int32(2), n, "a read after invalidation must not join the older request")
	case <-time.After(time.Second):
		t.Fatal("second fetch did not start its own request")
	}

	close(release)
	r1 := <-first
	r2 := <-second

	assert.Equal(t, int32(2), calls.Load())
	assert.True(t, r1.HasData)
	assert.Contains(t, []string{"before delete", "after delete"}, r2.Data)
}

func TestFetch_EvictedEntryStartsItsOwnRequest(t *testing.T) {
	c, _ := testClient(Config{MaxEntries: 1})
	var calls atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	search := Options[string]{
		Key: Key{"products", "맥", ""},
		Fn: func(context.Context) (string, error) {
			calls.Add(1)
			started <- struct{}{}
			<-release
			return "맥북", nil
		},
	}

	first := make(chan Result[string], 1)
	go func() { first <- Fetch(context.Background(), c, search) }()
	<-started

	// Another key pushes the in-flight entry out of the cache.
	var other atomic.Int32
	Fetch(context.Background(), c, Options[string]{Key: Key{"products", "맥북", ""}, Fn: counting(&other, "x")})

	second := make(chan Result[string], 1)
	go func() { second <- Fetch(context.Background(), c, search) }()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fetch after eviction joined the request of the evicted entry")
	}
	close(release)

	r1 := <-first
	r2 := <-second
	assert.Equal(t, "맥북", r1.Data)
	assert.Equal(t, StatusSuccess, r2.Status)
	assert.True(t, r2.HasData)
	assert.Equal(t, "맥북", r2.Data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMutate(t *testing.T) {
	c, _ := testClient(Config{})
	var calls atomic.Int32
	list := Options[string]{Key: Key{"products", "", ""}, Fn: counting(&calls, "list")}
	Fetch(context.Background(), c, list)

	t.Run("failure leaves cache untouched", func(t *testing.T) {
		_, err := Mutate(context.Background(), c, Mutation[int]{
			Name:        "delete",
			Fn:          func(context.Context) (int, error) { return 0, errors.New("500") },
			Invalidates: []Key{{"products"}},
		})

		assert.Error(t, err)
		assert.True(t, Peek(c, list).IsFresh())
	})

	t.Run("success invalidates listed keys", func(t *testing.T) {
		v, err := Mutate(context.Background(), c, Mutation[int]{
			Name:        "delete",
			Fn:          func(context.Context) (int, error) { return 7, nil },
			Invalidates: []Key{{"products"}, {"dashboardSummary"}},
		})

		require.NoError(t, err)
		assert.Equal(t, 7, v)
		assert.True(t, Peek(c, list).IsStale)

		Fetch(context.Background(), c, list)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestPeek(t *testing.T) {
	c, _ := testClient(Config{})
	key := Key{"dashboardSummary"}

	r := Peek(c, Options[string]{Key: key})
	assert.Equal(t, StatusPending, r.Status)
	assert.True(t, r.IsLoading())
	assert.Equal(t, 0, c.Len(), "peek must not create entries")

	var calls atomic.Int32
	Fetch(context.Background(), c, Options[string]{Key: key, Fn: counting(&calls, "s")})

	r = Peek(c, Options[string]{Key: key})
	assert.Equal(t, StatusSuccess, r.Status)
	assert.True(t, r.IsFresh())
	assert.Equal(t, "s", r.Data)
}

func TestPeek_FollowsQueryOptions(t *testing.T) {
	c, now := testClient(Config{StaleTime: 30 * time.Second})
	var calls atomic.Int32
	opts := Options[string]{Key: Key{"dashboardSummary"}, Fn: counting(&calls, "s"), StaleTime: time.Minute}

	Fetch(context.Background(), c, opts)
	*now = now.Add(45 * time.Second)

	assert.True(t, Peek(c, opts).IsFresh())
	assert.True(t, Peek(c, Options[string]{Key: opts.Key}).IsStale)

	disabled := Options[string]{Key: Key{"priceHistory", 0, 7}, Enabled: func() bool { return false }}
	assert.Equal(t, StatusIdle, Peek(c, disabled).Status)
}

func TestPrefetchFillsCache(t *testing.T) {
	c, _ := testClient(Config{})
	var calls atomic.Int32
	opts := Options[string]{Key: Key{"recentCollections", 10}, Fn: counting(&calls, "feed")}

	Prefetch(context.Background(), c, opts)

	assert.Eventually(t, func() bool {
		return Peek(c, opts).IsFresh()
	}, time.Second, 5*time.Millisecond)
	Fetch(context.Background(), c, opts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPoll(t *testing.T) {
	c := NewClient(Config{})
	var calls atomic.Int32
	opts := Options[string]{Key: Key{"dashboardSummary"}, Fn: counting(&calls, "s")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Poll(ctx, c, opts, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestRetryDelay(t *testing.T) {
	c := NewClient(Config{RetryDelay: time.Second})

	assert.Equal(t, time.Second, c.retryDelay(1))
	assert.Equal(t, 2*time.Second, c.retryDelay(2))
	assert.Equal(t, 4*time.Second, c.retryDelay(3))
	assert.Equal(t, 30*time.Second, c.retryDelay(10))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{Retry: -3})
	cfg := c.Config()

	assert.Equal(t, 30*time.Second, cfg.StaleTime)
	assert.Equal(t, 0, cfg.Retry)
	assert.Equal(t, 1000, cfg.MaxEntries)
}

package crawl_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitepdf/crawl"
	"github.com/fwojciec/sitepdf/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request to a host does not wait", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "university.edu"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same host", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "university.edu"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "University.EDU"))

		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("hosts are limited independently", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "university.edu"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "college.edu"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "university.edu"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "university.edu"))
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(100)

		var wg sync.WaitGroup
		var completed atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Wait(context.Background(), "university.edu") == nil {
					completed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), completed.Load())
	})
}

func TestLimitedFetcher(t *testing.T) {
	t.Parallel()

	t.Run("waits on the URL host before fetching", func(t *testing.T) {
		t.Parallel()

		var calls []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				calls = append(calls, "wait "+domain)
				return nil
			},
		}
		next := &mock.SitemapFetcher{
			FetchFn: func(_ context.Context, url string) ([]byte, error) {
				calls = append(calls, "fetch "+url)
				return []byte("ok"), nil
			},
			ProbeFn: func(_ context.Context, url string) (bool, error) {
				calls = append(calls, "probe "+url)
				return true, nil
			},
		}
		f := crawl.NewLimitedFetcher(next, limiter)

		body, err := f.Fetch(context.Background(), "https://university.edu:8443/sitemap.xml")
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))

		ok, err := f.Probe(context.Background(), "https://university.edu/robots.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, []string{
			"wait university.edu:8443",
			"fetch https://university.edu:8443/sitemap.xml",
			"wait university.edu",
			"probe https://university.edu/robots.txt",
		}, calls)
	})

	t.Run("does not fetch when wait fails", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.DomainLimiter{
			WaitFn: func(context.Context, string) error { return context.Canceled },
		}
		next := &mock.SitemapFetcher{
			FetchFn: func(context.Context, string) ([]byte, error) {
				t.Fatal("fetch should not be called")
				return nil, nil
			},
		}

		_, err := crawl.NewLimitedFetcher(next, limiter).Fetch(context.Background(), "https://university.edu/s.xml")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

/*
Package sources collects free-text signals about a provider from free,
unauthenticated web endpoints.

Every source swallows its own failures: a bad status, transport error or
undecodable body yields zero signals and a log line, never an error.
*/
package sources

import (
    "context"
    "fmt"
    "io"
    "log"
    "math/rand/v2"
    "net/http"
    "sync"
    "time"

    "golang.org/x/time/rate"

    "provintel/internal/domain"
)

const (
    DefaultTimeout   = 10 * time.Second
    DefaultUserAgent = "ProvIntel/1.0 (+free-search enrichment)"

    maxBodyBytes = 2 << 20
)

// Source produces signals for a target.
type Source interface {
    Name() string
    Fetch(ctx context.Context, target domain.Target) []domain.Signal
}

// NewClient returns the shared outbound client.
func NewClient(timeout time.Duration) *http.Client {
    if timeout <= 0 || timeout > DefaultTimeout {
        timeout = DefaultTimeout
    }
    return &http.Client{Timeout: timeout}
}

// fetcher holds what all HTTP sources share: client, headers, throttling.
type fetcher struct {
    name      string
    client    *http.Client
    userAgent string
    limiter   *rate.Limiter
    // jitter bounds the random delay before each request; zero disables it.
    jitterMin, jitterMax time.Duration
}

func newFetcher(name string, client *http.Client, userAgent string, perSecond float64) fetcher {
    if client == nil {
        client = NewClient(DefaultTimeout)
    }
    if userAgent == "" {
        userAgent = DefaultUserAgent
    }
    return fetcher{
        name:      name,
        client:    client,
        userAgent: userAgent,
        limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
    }
}

// get performs one GET and returns the body, or an error for any failure
// including a non-2xx status.
func (f fetcher) get(ctx context.Context, url string) ([]byte, error) {
    if err := f.pause(ctx); err != nil {
        return nil, err
    }
    if err := f.limiter.Wait(ctx); err != nil {
        return nil, err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return nil, err
    }
    req.Header.Set("User-Agent", f.userAgent)
    resp, err := f.client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
    }
    defer func() {
        if err := resp.Body.Close(); err != nil {
            log.Printf("warning: %s: close body: %v", f.name, err)
        }
    }()
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        return nil, fmt.Errorf("received status %d from %s", resp.StatusCode, url)
    }
    return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func (f fetcher) pause(ctx context.Context) error {
    if f.jitterMax <= 0 {
        return nil
    }
    d := f.jitterMin
    if span := f.jitterMax - f.jitterMin; span > 0 {
        d += rand.N(span)
    }
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-time.After(d):
        return nil
    }
}

// Result is what one source contributed for a target.
type Result struct {
    Source  string
    Signals []domain.Signal
}

// Collect fetches from all sources concurrently and waits for every one.
// Results keep the order of srcs; a panicking source contributes nothing.
func Collect(ctx context.Context, srcs []Source, target domain.Target) []Result {
    results := make([]Result, len(srcs))
    var wg sync.WaitGroup
    for i, src := range srcs {
        results[i].Source = src.Name()
        wg.Add(1)
        go func(i int, src Source) {
            defer wg.Done()
            defer func() {
                if r := recover(); r != nil {
                    log.Printf("source %s panicked for %s: %v", src.Name(), target.DisplayName(), r)
                }
            }()
            results[i].Signals = src.Fetch(ctx, target)
        }(i, src)
    }
    wg.Wait()
    return results
}

// Flatten joins the signals of all results.
func Flatten(results []Result) []domain.Signal {
    var out []domain.Signal
    for _, r := range results {
        out = append(out, r.Signals...)
    }
    return out
}

func truncate(s string, n int) string {
    r := []rune(s)
    if len(r) <= n {
        return s
    }
    return string(r[:n])
}

// Default returns the free sources used in production.
func Default(client *http.Client, userAgent string) []Source {
    return []Source{
        NewDuckDuckGo(client, userAgent),
        NewReddit(client, userAgent),
        NewHTMLSearch(client, userAgent),
    }
}

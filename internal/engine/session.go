package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// userAgents is the rotation pool for declared client identity.
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:132.0) Gecko/20100101 Firefox/132.0",
}

// RandomUserAgent returns a random entry from the rotation pool.
func RandomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// navRetryConfig paces reattempts of a single navigation before the failure
// escalates to the caller.
var navRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: 2 * time.Second,
	MaxWait:     8 * time.Second,
	Multiplier:  2.0,
}

// probeTimeout bounds the liveness check; a healthy browser answers a no-op
// script near-instantly.
const probeTimeout = 10 * time.Second

// SessionOptions configures browser startup.
type SessionOptions struct {
	Headless          bool
	UserAgentRotation bool
	NavigationTimeout time.Duration
	MaxRetries        int
}

// Session owns exactly one live browser connection. The pipeline drives it
// serially for the whole run; it is never shared between concurrent callers.
type Session struct {
	opts SessionOptions

	// parent is the acquire-time context the browser's lifetime is bound
	// to. Replacement browsers are parented on it too: callers often pass
	// short-lived per-request contexts, and a browser bound to one would
	// die as soon as that request finished.
	parent context.Context

	mu            sync.Mutex
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	released      bool

	// Floor on navigation pacing, on top of the randomized pauses.
	limiter *rate.Limiter
}

// AcquireSession starts a browser with anti-detection flags, probing liveness
// after each attempt: construction succeeding does not mean the browser
// answers commands. Waits a progressively longer delay between attempts and
// fails with ErrSessionUnavailable once they are exhausted.
func AcquireSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s, err := startSession(ctx, opts)
		if err == nil {
			slog.Info("browser session ready", slog.Int("attempt", attempt))
			return s, nil
		}
		lastErr = err
		slog.Warn("browser session start failed",
			slog.Int("attempt", attempt), slog.Int("max", opts.MaxRetries), slog.Any("error", err))
		if attempt < opts.MaxRetries {
			sleepCtx(ctx, startupBackoff(attempt))
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, lastErr)
}

// startupBackoff is the delay after the given 1-based failed attempt.
func startupBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

func allocatorOptions(opts SessionOptions) []chromedp.ExecAllocatorOption {
	aopts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	aopts = append(aopts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", "en-US"),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.UserAgentRotation {
		aopts = append(aopts, chromedp.UserAgent(RandomUserAgent()))
	}
	return aopts
}

// newSession builds the allocator and browser context without launching the
// browser; the first command against the context does that.
func newSession(ctx context.Context, opts SessionOptions) *Session {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &Session{
		opts:          opts,
		parent:        ctx,
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		limiter:       rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func startSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	s := newSession(ctx, opts)

	// Hide the automation flag, then run a trivial script so a hung browser
	// fails here instead of on the first real navigation.
	probeCtx, cancel := context.WithTimeout(s.ctx, 2*probeTimeout)
	defer cancel()
	var one int
	err := chromedp.Run(probeCtx,
		chromedp.Evaluate(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined}); 1`, &one),
	)
	if err != nil {
		s.Release()
		return nil, &SessionError{Op: "startup probe", Err: err}
	}
	return s, nil
}

// Healthy reports whether the session still answers a no-op script.
func (s *Session) Healthy() bool {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return false
	}
	ctx := s.ctx
	s.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	var one int
	if err := chromedp.Run(probeCtx, chromedp.Evaluate(`1`, &one)); err != nil {
		return false
	}
	return one == 1
}

// Release tears the browser down. Idempotent and safe on a session that is
// already dead; runs on every exit path.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.browserCancel()
	s.allocCancel()
}

// reacquire replaces a dead browser in place. The caller's context gates the
// attempt; the replacement itself is parented on the acquire-time context so
// its lifetime matches the session's, not the current request's.
func (s *Session) reacquire(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	if !s.released {
		s.browserCancel()
		s.allocCancel()
		s.released = true
	}
	parent := s.parent
	opts := s.opts
	s.mu.Unlock()

	fresh, err := startSession(parent, opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ctx = fresh.ctx
	s.browserCancel = fresh.browserCancel
	s.allocCancel = fresh.allocCancel
	s.released = false
	s.mu.Unlock()
	IncrSessionRestarts()
	return nil
}

// run executes browser actions under the session's navigation timeout,
// honoring the caller's cancellation as well.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return &SessionError{Op: "run", Err: fmt.Errorf("session released")}
	}
	browserCtx := s.ctx
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	err := s.run(ctx, s.opts.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// NavigateWithRetry retries a failed navigation with progressive backoff,
// reacquiring the browser when the health probe shows the connection is gone.
// A failed reacquire is fatal for the run: without a session nothing else can
// proceed.
func (s *Session) NavigateWithRetry(ctx context.Context, url string) error {
	return navigateWithRetry(ctx, url, s.Navigate, s.Healthy, s.reacquire)
}

// navigateWithRetry drives one navigation through the shared retry helper. A
// failed attempt marks the transport suspect so RetryDo reattempts it; a dead
// connection is replaced in place; a failed replacement escalates as session
// loss, carrying the original navigation error.
func navigateWithRetry(ctx context.Context, url string,
	nav func(context.Context, string) error,
	healthy func() bool,
	reacquire func(context.Context) error,
) error {
	_, err := RetryDo(ctx, navRetryConfig, func() (struct{}, error) {
		navErr := nav(ctx, url)
		if navErr == nil {
			return struct{}{}, nil
		}
		if ctx.Err() != nil {
			return struct{}{}, ctx.Err()
		}
		IncrNavRetries()
		slog.Warn("navigation failed", slog.String("url", url), slog.Any("error", navErr))
		if !healthy() {
			slog.Warn("session connection lost, reacquiring")
			if rerr := reacquire(ctx); rerr != nil {
				return struct{}{}, fmt.Errorf("%w: %v (reacquire failed: %v)", ErrSessionUnavailable, navErr, rerr)
			}
		}
		return struct{}{}, &SessionError{Op: "navigate", Err: navErr}
	})
	return err
}

// HTML returns the rendered document markup.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.opts.NavigationTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return html, nil
}

// ScrollProgressive triggers the page's incremental loading by scrolling to
// the bottom the given number of times, pausing like a human between rounds.
func (s *Session) ScrollProgressive(ctx context.Context, rounds int) error {
	for i := 0; i < rounds; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.run(ctx, s.opts.NavigationTimeout,
			chromedp.Evaluate(`window.scrollTo(0, document.documentElement.scrollHeight);`, nil),
		)
		if err != nil {
			return fmt.Errorf("scroll round %d: %w", i+1, err)
		}
		s.RandomPause(ctx, time.Second, 2*time.Second)
	}
	return nil
}

// RandomPause sleeps a uniformly random duration in [min, max] to emulate
// human pacing. Returns early on cancellation.
func (s *Session) RandomPause(ctx context.Context, min, max time.Duration) {
	sleepCtx(ctx, randomDelay(min, max))
}

func randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"notaria/internal/port"
)

// FallbackProvider walks an ordered chain of providers until one answers.
// A provider that reports a RateLimitError is benched until its
// Retry-After elapses. It implements port.AIProvider.
type FallbackProvider struct {
	chain []port.AIProvider
	now   func() time.Time

	mu      sync.Mutex
	benched map[int]time.Time
}

// NewFallbackProvider creates a FallbackProvider from an ordered list.
func NewFallbackProvider(providers []port.AIProvider) *FallbackProvider {
	return &FallbackProvider{chain: providers, now: time.Now, benched: map[int]time.Time{}}
}

// Name reports the first provider in the chain.
func (f *FallbackProvider) Name() string {
	if len(f.chain) == 0 {
		return "none"
	}
	return f.chain[0].Name()
}

func (f *FallbackProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f.run(ctx, func(p port.AIProvider) (string, error) {
		return p.Complete(ctx, prompt, maxTokens)
	})
}

func (f *FallbackProvider) CompleteWithImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	return f.run(ctx, func(p port.AIProvider) (string, error) {
		return p.CompleteWithImage(ctx, image, mimeType, prompt)
	})
}

// benchedUntil returns the time provider i becomes eligible again, or the
// zero time when it already is.
func (f *FallbackProvider) benchedUntil(i int, now time.Time) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	until, ok := f.benched[i]
	if !ok {
		return time.Time{}
	}
	if !now.Before(until) {
		delete(f.benched, i)
		return time.Time{}
	}
	return until
}

func (f *FallbackProvider) bench(i int, until time.Time) {
	f.mu.Lock()
	f.benched[i] = until
	f.mu.Unlock()
}

func (f *FallbackProvider) run(ctx context.Context, call func(port.AIProvider) (string, error)) (string, error) {
	now := f.now()
	var (
		lastErr   error
		throttled = true
		soonest   time.Time
	)
	noteReset := func(t time.Time) {
		if soonest.IsZero() || t.Before(soonest) {
			soonest = t
		}
	}

	for i, p := range f.chain {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if until := f.benchedUntil(i, now); !until.IsZero() {
			log.Printf("provider.FallbackProvider.run: %s benched until %s", p.Name(), until.Format(time.RFC3339))
			noteReset(until)
			continue
		}

		out, err := call(p)
		if err == nil {
			return out, nil
		}
		log.Printf("provider.FallbackProvider.run: %s failed: %v", p.Name(), err)
		lastErr = err

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			throttled = false
			continue
		}
		until := now.Add(rl.RetryAfter)
		f.bench(i, until)
		noteReset(until)
	}

	if lastErr != nil && !throttled {
		return "", fmt.Errorf("all providers failed: %w", lastErr)
	}
	wait := soonest.Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return "", NewRateLimitError("all", errors.New("every provider is throttled"), int(wait.Seconds()))
}

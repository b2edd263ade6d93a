package pdfembed

import (
	"context"
	"fmt"
	"sync"
)

// renderKey composes the deduplication identity for a render request.
// Two embeds producing pixel-identical output share a key; embeds differing
// in document, page, scale or encoding do not.
func renderKey(documentPath string, page int, opts RenderOptions) string {
	return fmt.Sprintf("%s|%d|%g|%s", documentPath, page, opts.Scale, opts.ImageType)
}

// renderTask is one in-flight-or-resolved render computation.
// done is closed exactly once, after res and err are set.
type renderTask struct {
	done chan struct{}
	res  *RenderResult
	err  error
}

// renderCache maps render keys to shared computations. It lives for one
// ReplaceEmbeds call and guarantees that at most one computation is ever
// started per key, no matter how many consumers request it concurrently.
type renderCache struct {
	mu    sync.Mutex
	tasks map[string]*renderTask
}

func newRenderCache() *renderCache {
	return &renderCache{tasks: make(map[string]*renderTask)}
}

// do returns the result for key, running fn at most once across all callers.
//
// The pending task is inserted under the lock before fn runs, so concurrent
// callers discovering the same key join the existing computation instead of
// starting a duplicate. All consumers of a key observe the same single
// outcome, success or failure.
func (c *renderCache) do(ctx context.Context, key string, fn func() (*RenderResult, error)) (*RenderResult, error) {
	c.mu.Lock()
	if t, ok := c.tasks[key]; ok {
		c.mu.Unlock()
		select {
		case <-t.done:
			return t.res, t.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	t := &renderTask{done: make(chan struct{})}
	c.tasks[key] = t
	c.mu.Unlock()

	t.res, t.err = fn()
	close(t.done)
	return t.res, t.err
}

// len returns the number of distinct keys ever requested.
func (c *renderCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// limiter is a counting admission gate bounding concurrent render
// invocations. Consumers waiting on a shared cache task do not hold slots.
type limiter chan struct{}

func newLimiter(n int) limiter {
	if n < 1 {
		n = 1
	}
	return make(limiter, n)
}

func (l limiter) acquire(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l limiter) release() {
	<-l
}

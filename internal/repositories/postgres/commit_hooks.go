package postgres

import (
	"context"
	"sync"
)

// commitHooks holds cache invalidations queued by repositories bound to a
// WithTransaction call. They run once the transaction commits and are
// dropped on rollback.
type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func (h *commitHooks) add(fn func(context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}

// afterCommit runs fn straight away when hooks is nil, otherwise queues it
func afterCommit(ctx context.Context, hooks *commitHooks, fn func(context.Context)) {
	if hooks == nil {
		fn(ctx)
		return
	}
	hooks.add(fn)
}

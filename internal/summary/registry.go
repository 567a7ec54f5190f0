// Package summary renders conversation log records into human-readable
// summaries. The registry keeps the renderer pluggable: the template renderer
// ships by default, an LLM-backed one can be registered by the process that
// owns the credentials.
package summary

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/voicedesk/voicedesk/internal/convlog"
)

type Summarizer interface {
	Summarize(ctx context.Context, rec *convlog.Record) (string, error)
}

type Factory func(ctx context.Context) (Summarizer, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(ctx context.Context, name string) (Summarizer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown summarizer: %s", name)
	}
	return f(ctx)
}

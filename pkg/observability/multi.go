package observability

import (
	"context"
	"time"
)

// Hooks implements every hook category.
type Hooks interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
}

// Multi fans each event out to every member in order.
type Multi []Hooks

// Install registers hooks for every category. A single implementation is
// installed directly; several are combined into a Multi.
func Install(hooks ...Hooks) {
	var live Multi
	for _, h := range hooks {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		Reset()
	case 1:
		SetPipelineHooks(live[0])
		SetCacheHooks(live[0])
		SetHTTPHooks(live[0])
	default:
		SetPipelineHooks(live)
		SetCacheHooks(live)
		SetHTTPHooks(live)
	}
}

func (m Multi) OnLoadStart(ctx context.Context, source string) {
	for _, h := range m {
		h.OnLoadStart(ctx, source)
	}
}

func (m Multi) OnLoadComplete(ctx context.Context, source string, people int, d time.Duration, err error) {
	for _, h := range m {
		h.OnLoadComplete(ctx, source, people, d, err)
	}
}

func (m Multi) OnLayoutStart(ctx context.Context, people int) {
	for _, h := range m {
		h.OnLayoutStart(ctx, people)
	}
}

func (m Multi) OnLayoutComplete(ctx context.Context, nodes, edges int, d time.Duration, err error) {
	for _, h := range m {
		h.OnLayoutComplete(ctx, nodes, edges, d, err)
	}
}

func (m Multi) OnRenderStart(ctx context.Context, formats []string) {
	for _, h := range m {
		h.OnRenderStart(ctx, formats)
	}
}

func (m Multi) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	for _, h := range m {
		h.OnRenderComplete(ctx, formats, d, err)
	}
}

func (m Multi) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheHit(ctx, keyType)
	}
}

func (m Multi) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (m Multi) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (m Multi) OnRequest(ctx context.Context, method, path string) {
	for _, h := range m {
		h.OnRequest(ctx, method, path)
	}
}

func (m Multi) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	for _, h := range m {
		h.OnResponse(ctx, method, path, status, d)
	}
}

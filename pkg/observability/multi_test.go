package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopHTTPHooks
	hits int
}

func (c *countingHooks) OnCacheHit(context.Context, string) { c.hits++ }

func TestInstallSingle(t *testing.T) {
	defer Reset()

	h := &countingHooks{}
	Install(h)
	assert.Same(t, h, Cache())
	assert.Same(t, h, Pipeline())
	assert.Same(t, h, HTTP())
}

func TestInstallFansOut(t *testing.T) {
	defer Reset()

	a, b := &countingHooks{}, &countingHooks{}
	Install(a, nil, b)
	Cache().OnCacheHit(context.Background(), "layout")
	Cache().OnCacheHit(context.Background(), "artifact")

	assert.Equal(t, 2, a.hits)
	assert.Equal(t, 2, b.hits)
}

func TestInstallNothingResets(t *testing.T) {
	Install(&countingHooks{})
	Install()
	_, ok := Cache().(NoopCacheHooks)
	assert.True(t, ok)
}

func TestMetricsRecordEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics("kintree")

	m.OnLoadComplete(ctx, "family.json", 7, 10*time.Millisecond, nil)
	m.OnLoadComplete(ctx, "family.json", 0, time.Millisecond, errors.New("offline"))
	m.OnLayoutComplete(ctx, 7, 6, time.Millisecond, nil)
	m.OnRenderComplete(ctx, []string{"svg", "dot"}, time.Millisecond, nil)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheSet(ctx, "artifact", 512)
	m.OnResponse(ctx, "GET", "/api/people/{personID}", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.peopleLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.layouts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("svg,dot", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheEvents.WithLabelValues("layout", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheEvents.WithLabelValues("layout", "miss")))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.cacheBytes.WithLabelValues("artifact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/people/{personID}", "404")))
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a, b := NewMetrics("kintree"), NewMetrics("kintree")
	a.OnCacheHit(context.Background(), "layout")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.cacheEvents.WithLabelValues("layout", "hit")))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics("kintree")
	m.OnLoadComplete(context.Background(), "family.json", 3, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "kintree_people_loaded 3"))
}

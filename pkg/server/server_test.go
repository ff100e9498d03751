package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kterrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render/jsonout"
)

const familyJSON = `{
  "people": [
    {"id": "ada", "name": "Ada", "generation": 1},
    {"id": "bob", "name": "Bob", "generation": 1, "spouseId": "ada"},
    {"id": "cy", "name": "Cy", "generation": 2, "parentIds": ["ada", "bob"]}
  ],
  "rootPersonId": "ada"
}`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestServer(t *testing.T, input string) *Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, quietLogger())
	s, err := New(runner, pipeline.Options{Input: input}, quietLogger())
	require.NoError(t, err)
	return s
}

func readyServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "family.json")
	require.NoError(t, os.WriteFile(path, []byte(familyJSON), 0o644))

	s := newTestServer(t, path)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := s.Loader().Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, family.StatusReady, st.Status)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewRejectsBadInput(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, quietLogger())

	_, err := New(runner, pipeline.Options{Input: "store:6f1c2f7e-2b55-4b8e-9d0a-5f4f6b9b1e11"}, quietLogger())
	assert.Error(t, err, "store input without a store")

	_, err = New(runner, pipeline.Options{Input: ""}, quietLogger())
	assert.Error(t, err)

	_, err = New(runner, pipeline.Options{Input: "family.json"}, quietLogger())
	assert.NoError(t, err, "files are not read until Start")
}

func TestHealth(t *testing.T) {
	s := readyServer(t)
	rec := get(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ready", body.Data)
}

func TestGetFamily(t *testing.T) {
	s := readyServer(t)
	rec := get(t, s, "/api/family")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	data, err := family.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, data.People, 3)
	assert.Equal(t, "ada", data.RootPersonID)
}

func TestGetLayout(t *testing.T) {
	s := readyServer(t)
	rec := get(t, s, "/api/layout")

	require.Equal(t, http.StatusOK, rec.Code)
	res, _, err := jsonout.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, res.Nodes, 3)
	assert.Len(t, res.Edges, 2)

	ada, ok := res.NodeByID("ada")
	require.True(t, ok)
	assert.Equal(t, -297.0, ada.X)
	bob, ok := res.NodeByID("bob")
	require.True(t, ok)
	assert.Equal(t, 105.0, bob.X)
}

func TestGetPerson(t *testing.T) {
	s := readyServer(t)

	t.Run("forward spouse", func(t *testing.T) {
		rec := get(t, s, "/api/people/bob")
		require.Equal(t, http.StatusOK, rec.Code)

		var body PersonResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "bob", body.Person.ID)
		require.NotNil(t, body.Spouse)
		assert.Equal(t, "ada", body.Spouse.ID)
		require.Len(t, body.Children, 1)
		assert.Equal(t, "cy", body.Children[0].ID)
		assert.Empty(t, body.Parents)
	})

	t.Run("reverse spouse needs symmetric", func(t *testing.T) {
		rec := get(t, s, "/api/people/ada")
		require.Equal(t, http.StatusOK, rec.Code)
		var body PersonResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Nil(t, body.Spouse)
		assert.False(t, body.Symmetric)

		rec = get(t, s, "/api/people/ada?symmetric=true")
		require.Equal(t, http.StatusOK, rec.Code)
		body = PersonResponse{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Spouse)
		assert.Equal(t, "bob", body.Spouse.ID)
		assert.True(t, body.Symmetric)
	})

	t.Run("parents", func(t *testing.T) {
		rec := get(t, s, "/api/people/cy")
		require.Equal(t, http.StatusOK, rec.Code)
		var body PersonResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Parents, 2)
		assert.Equal(t, "ada", body.Parents[0].ID)
		assert.Equal(t, "bob", body.Parents[1].ID)
		assert.NotNil(t, body.Children)
	})

	t.Run("unknown", func(t *testing.T) {
		rec := get(t, s, "/api/people/zed")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "PERSON_NOT_FOUND", body.Code)
	})
}

func TestGetChart(t *testing.T) {
	s := readyServer(t)

	t.Run("svg", func(t *testing.T) {
		rec := get(t, s, "/api/chart.svg?title=Lovelace")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		out := rec.Body.String()
		assert.True(t, strings.HasPrefix(out, "<svg"))
		assert.Contains(t, out, `href="/api/people/cy"`)
		assert.Contains(t, out, "Lovelace")
	})

	t.Run("json", func(t *testing.T) {
		rec := get(t, s, "/api/chart.json")
		require.Equal(t, http.StatusOK, rec.Code)
		_, doc, err := jsonout.Parse(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "ada", doc.RootPersonID)
		assert.Len(t, doc.People, 3)
	})

	t.Run("dot", func(t *testing.T) {
		rec := get(t, s, "/api/chart.dot")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "digraph")
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := get(t, s, "/api/chart.pdf")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_INPUT", body.Code)
	})
}

func TestPendingAndFailed(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL+family.DefaultDataPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Start(ctx)

	rec := get(t, s, "/api/family")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	rec = get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending"`)

	close(release)
	st, err := s.Loader().Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, family.StatusFailed, st.Status)

	rec = get(t, s, "/api/layout")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to load family data (HTTP 404)", body.Error)
	assert.Equal(t, "failed", body.Status)
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := readyServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCORS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	require.NoError(t, os.WriteFile(path, []byte(familyJSON), 0o644))
	runner := pipeline.NewRunner(nil, nil, quietLogger())

	s, err := New(runner, pipeline.Options{Input: path}, quietLogger(), WithCORS("https://kin.example"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/family", nil)
	req.Header.Set("Origin", "https://kin.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "https://kin.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	plain := readyServer(t)
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://kin.example")
	rec = httptest.NewRecorder()
	plain.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	defer observability.Reset()

	path := filepath.Join(t.TempDir(), "family.json")
	require.NoError(t, os.WriteFile(path, []byte(familyJSON), 0o644))
	m := observability.NewMetrics("kintree")
	observability.Install(m)

	runner := pipeline.NewRunner(nil, nil, quietLogger())
	s, err := New(runner, pipeline.Options{Input: path}, quietLogger(), WithMetrics(m))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.Loader().Wait(ctx)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, get(t, s, "/api/people/cy").Code)
	require.Equal(t, http.StatusNotFound, get(t, s, "/api/people/zed").Code)

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "kintree_people_loaded 3")
	assert.Contains(t, body, `route="/api/people/{personID}",status="200"`)
	assert.Contains(t, body, `route="/api/people/{personID}",status="404"`)
	assert.NotContains(t, body, "/api/people/cy")

	assert.Equal(t, http.StatusNotFound, get(t, readyServer(t), "/metrics").Code)
}

const extendedJSON = `{
  "people": [
    {"id": "ada", "name": "Ada", "generation": 1},
    {"id": "bob", "name": "Bob", "generation": 1, "spouseId": "ada"},
    {"id": "cy", "name": "Cy", "generation": 2, "parentIds": ["ada", "bob"]},
    {"id": "dee", "name": "Dee", "generation": 2, "parentIds": ["ada", "bob"]}
  ],
  "rootPersonId": "ada"
}`

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	require.NoError(t, os.WriteFile(path, []byte(familyJSON), 0o644))
	s := newTestServer(t, path)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.Loader().Wait(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(extendedJSON), 0o644))
	require.NoError(t, s.Reload(ctx))
	assert.Len(t, s.Loader().State().Data.People, 4)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/people/dee").Code)

	require.NoError(t, os.WriteFile(path, []byte(`{"people": [`), 0o644))
	assert.Error(t, s.Reload(ctx))
	assert.Len(t, s.Loader().State().Data.People, 4, "failed reload keeps the current snapshot")
}

func TestWatchReloadsOnChange(t *testing.T) {
	s := readyServer(t)
	path := s.opts.Input

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	assert.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(extendedJSON), 0o644); err != nil {
			return false
		}
		st := s.Loader().State()
		return st.Status == family.StatusReady && len(st.Data.People) == 4
	}, 10*time.Second, 500*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchRejectsURLInput(t *testing.T) {
	s := newTestServer(t, "https://kin.example/family-data.json")
	err := s.Watch(context.Background())
	require.Error(t, err)
	assert.True(t, kterrors.Is(err, kterrors.ErrCodeUnsupported))
}

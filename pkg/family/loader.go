package family

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
)

// DefaultDataPath is the path a browser front end requests its data from.
const DefaultDataPath = "/family-data.json"

// fetchFailedMessage is reported for any non-success HTTP response.
const fetchFailedMessage = "Failed to load family data"

// =============================================================================
// Sources
// =============================================================================

// Source supplies a family snapshot. Implementations perform whatever I/O
// they need; the layout and resolver code never sees it.
type Source interface {
	// Fetch returns a fresh snapshot.
	Fetch(ctx context.Context) (*FamilyData, error)

	// String describes the source for logs.
	String() string
}

// FileSource reads a JSON document from the local filesystem.
type FileSource struct {
	Path string
}

// Fetch reads and decodes the file.
func (s FileSource) Fetch(ctx context.Context) (*FamilyData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

// HTTPSource fetches a JSON document over HTTP.
//
// Network errors and 5xx responses are retried with exponential backoff
// (see [cache.RetryWithBackoff]); any other non-2xx response fails
// immediately.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates a source with a client timeout of 30 seconds.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads and decodes the document.
func (s *HTTPSource) Fetch(ctx context.Context) (*FamilyData, error) {
	if err := errors.ValidateURL(s.URL); err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	var data *FamilyData
	err := cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				return cache.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "%s", fetchFailedMessage))
			}
			return cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s", fetchFailedMessage))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return cache.Retryable(errors.New(errors.ErrCodeNetwork, "%s (HTTP %d)", fetchFailedMessage, resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return errors.New(errors.ErrCodeNetwork, "%s (HTTP %d)", fetchFailedMessage, resp.StatusCode)
		}

		d, err := Decode(resp.Body)
		if err != nil {
			return err
		}
		data = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *HTTPSource) String() string { return s.URL }

// StaticSource returns a fixed snapshot. Useful for tests and for serving
// data that was already loaded.
type StaticSource struct {
	Data *FamilyData
	Name string
}

// Fetch returns the snapshot.
func (s StaticSource) Fetch(context.Context) (*FamilyData, error) {
	if s.Data == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no family data")
	}
	return s.Data, nil
}

func (s StaticSource) String() string {
	if s.Name == "" {
		return "static"
	}
	return s.Name
}

// =============================================================================
// Loader - three-state asynchronous loading
// =============================================================================

// Status is the lifecycle state of a [Loader].
type Status int

const (
	// StatusPending means the fetch has not finished.
	StatusPending Status = iota
	// StatusReady means Data holds a snapshot.
	StatusReady
	// StatusFailed means Message describes the failure.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is a point-in-time view of a [Loader].
type State struct {
	Status  Status
	Data    *FamilyData
	Message string
}

// Loader fetches a snapshot from a Source in the background and exposes its
// progress as a pending / ready / failed state. Failures are surfaced as a
// human-readable message, never as a structured code.
//
// A Loader runs its fetch at most once; create a new Loader to refresh.
// It is safe for concurrent use.
type Loader struct {
	src   Source
	once  sync.Once
	done  chan struct{}
	mu    sync.RWMutex
	state State
	err   error
}

// NewLoader creates a pending loader for src.
func NewLoader(src Source) *Loader {
	return &Loader{
		src:  src,
		done: make(chan struct{}),
	}
}

// Start begins fetching in a new goroutine. Calling Start more than once has
// no further effect.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go l.run(ctx)
	})
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)
	data, err := l.src.Fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.err = err
		l.state = State{Status: StatusFailed, Message: errors.UserMessage(err)}
		return
	}
	l.state = State{Status: StatusReady, Data: data}
}

// State returns the current state without blocking.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the underlying fetch error once the loader has failed.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Done is closed once the loader leaves the pending state.
func (l *Loader) Done() <-chan struct{} { return l.done }

// Wait starts the loader if needed and blocks until it is ready or failed, or
// until ctx is cancelled.
func (l *Loader) Wait(ctx context.Context) (State, error) {
	l.Start(ctx)
	select {
	case <-ctx.Done():
		return l.State(), ctx.Err()
	case <-l.done:
		return l.State(), nil
	}
}

// Load fetches src synchronously through a Loader and returns the snapshot or
// the fetch error.
func Load(ctx context.Context, src Source) (*FamilyData, error) {
	l := NewLoader(src)
	st, err := l.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if st.Status == StatusFailed {
		return nil, l.Err()
	}
	return st.Data, nil
}

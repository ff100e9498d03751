// Package store persists family charts.
//
// A [Store] keeps whole [family.FamilyData] snapshots under generated UUID
// ids. Two backends are provided:
//   - [sqlite]: a single-file database, the CLI default
//   - [mongo]: a MongoDB collection, for shared deployments
//
// Stored charts can be fed to the pipeline like any other input through
// [Source], or by passing "store:<id>" on the command line.
//
// [sqlite]: github.com/matzehuels/kintree/pkg/store/sqlite
// [mongo]: github.com/matzehuels/kintree/pkg/store/mongo
package store

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// RefPrefix marks a chart reference in pipeline inputs.
const RefPrefix = "store:"

// ErrNotFound is wrapped by every backend when a chart id is unknown.
var ErrNotFound = stderrors.New("chart not found")

// Chart describes a stored chart without its people.
type Chart struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	People       int       `json:"people" bson:"people"`
	RootPersonID string    `json:"rootPersonId,omitempty" bson:"root_person_id,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// Store is the interface implemented by chart backends.
type Store interface {
	// Save stores data under a new id.
	Save(ctx context.Context, data *family.FamilyData, name string) (Chart, error)

	// Get returns the stored snapshot. Unknown ids return an error wrapping
	// [ErrNotFound].
	Get(ctx context.Context, id string) (*family.FamilyData, error)

	// List returns all charts, newest first.
	List(ctx context.Context) ([]Chart, error)

	// Delete removes a chart. Unknown ids return an error wrapping
	// [ErrNotFound].
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewChart validates the inputs of a Save and returns the chart record to
// persist. Backends call it so ids and validation are uniform.
func NewChart(data *family.FamilyData, name string) (Chart, error) {
	if data == nil {
		return Chart{}, errors.New(errors.ErrCodeInvalidInput, "no family data")
	}
	if err := errors.ValidateChartName(name); err != nil {
		return Chart{}, err
	}
	return Chart{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		People:       len(data.People),
		RootPersonID: data.RootPersonID,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

// ValidateID rejects ids that are not UUIDs.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid chart id %q", id)
	}
	return nil
}

// NotFound returns the error backends report for an unknown id.
func NotFound(id string) error {
	return errors.Wrap(errors.ErrCodeChartNotFound, ErrNotFound, "chart %s not found", id)
}

// Ref returns the pipeline input that refers to chart id.
func Ref(id string) string { return RefPrefix + id }

// ParseRef extracts the chart id from a "store:<id>" input.
func ParseRef(input string) (string, bool) {
	id, ok := strings.CutPrefix(input, RefPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Source adapts a stored chart to [family.Source].
type Source struct {
	Store Store
	ID    string
}

// Fetch loads the chart from the store.
func (s Source) Fetch(ctx context.Context) (*family.FamilyData, error) {
	if s.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no chart store configured")
	}
	return s.Store.Get(ctx, s.ID)
}

func (s Source) String() string { return Ref(s.ID) }

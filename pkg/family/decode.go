package family

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/kintree/pkg/errors"
)

// wirePerson mirrors Person but keeps the generation raw so that missing and
// non-numeric values can be told apart and reported per record.
type wirePerson struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Generation  json.RawMessage `json:"generation"`
	Photo       string          `json:"photo"`
	Occupation  string          `json:"occupation"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	BirthDate   string          `json:"birthDate"`
	DeathDate   string          `json:"deathDate"`
	ParentIDs   []string        `json:"parentIds"`
	SpouseID    string          `json:"spouseId"`
}

type wireFamily struct {
	People       []wirePerson `json:"people"`
	RootPersonID string       `json:"rootPersonId"`
}

// Decode parses a FamilyData JSON document from r and validates every record.
//
// Validation fails fast on the first bad record:
//   - an empty or invalid id ([errors.ErrCodeInvalidPerson])
//   - a duplicate id ([errors.ErrCodeDuplicatePerson])
//   - a missing, non-integer, or non-positive generation
//     ([errors.ErrCodeInvalidGeneration])
//
// Dangling parent or spouse references are not errors; they resolve to
// "relationship absent" downstream. Decode does not close r.
func Decode(r io.Reader) (*FamilyData, error) {
	var wf wireFamily
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode family data")
	}

	data := &FamilyData{
		People:       make([]Person, 0, len(wf.People)),
		RootPersonID: wf.RootPersonID,
	}
	seen := make(map[string]bool, len(wf.People))

	for i, wp := range wf.People {
		if err := errors.ValidatePersonID(wp.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPerson, err, "people[%d]", i)
		}
		if seen[wp.ID] {
			return nil, errors.New(errors.ErrCodeDuplicatePerson, "duplicate person id %q", wp.ID)
		}
		seen[wp.ID] = true

		gen, err := parseGeneration(wp.ID, wp.Generation)
		if err != nil {
			return nil, err
		}

		data.People = append(data.People, Person{
			ID:          wp.ID,
			Name:        wp.Name,
			Generation:  gen,
			Photo:       wp.Photo,
			Occupation:  wp.Occupation,
			Location:    wp.Location,
			Description: wp.Description,
			BirthDate:   wp.BirthDate,
			DeathDate:   wp.DeathDate,
			ParentIDs:   wp.ParentIDs,
			SpouseID:    wp.SpouseID,
		})
	}

	return data, nil
}

// Unmarshal is [Decode] over an in-memory document.
func Unmarshal(data []byte) (*FamilyData, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile opens path and decodes it with [Decode].
func ReadFile(path string) (*FamilyData, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes data as indented JSON in the interchange format.
func Encode(w io.Writer, data *FamilyData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the canonical JSON encoding of data. Two snapshots with the
// same content in the same order marshal to identical bytes, which makes the
// output suitable for content hashing.
func Marshal(data *FamilyData) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path with 0644 permissions.
func WriteFile(path string, data *FamilyData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Encode(f, data)
}

func parseGeneration(id string, raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, errors.New(errors.ErrCodeInvalidGeneration, "person %q: generation is required", id)
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return 0, errors.New(errors.ErrCodeInvalidGeneration, "person %q: generation must be a number, got %s", id, trimmed)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, errors.New(errors.ErrCodeInvalidGeneration, "person %q: generation must be an integer, got %s", id, trimmed)
	}
	if f < 1 {
		return 0, errors.New(errors.ErrCodeInvalidGeneration, "person %q: generation must be >= 1, got %s", id, trimmed)
	}
	return int(f), nil
}

package pipeline

import (
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
)

// InputKind classifies a pipeline input.
type InputKind int

const (
	InputFile InputKind = iota
	InputURL
	InputStore
)

func (k InputKind) String() string {
	switch k {
	case InputURL:
		return "url"
	case InputStore:
		return "store"
	default:
		return "file"
	}
}

// ClassifyInput reports how input will be loaded.
func ClassifyInput(input string) InputKind {
	switch {
	case strings.HasPrefix(input, store.RefPrefix):
		return InputStore
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		return InputURL
	default:
		return InputFile
	}
}

// Source resolves input to a [family.Source]. Store references need st; it
// may be nil otherwise.
func Source(input string, st store.Store) (family.Source, error) {
	switch ClassifyInput(input) {
	case InputStore:
		id, ok := store.ParseRef(input)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "missing chart id in %q", input)
		}
		if err := store.ValidateID(id); err != nil {
			return nil, err
		}
		if st == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "no chart store configured for %q", input)
		}
		return store.Source{Store: st, ID: id}, nil
	case InputURL:
		if err := errors.ValidateURL(input); err != nil {
			return nil, err
		}
		return family.NewHTTPSource(input), nil
	default:
		if input == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "input is required")
		}
		return family.FileSource{Path: input}, nil
	}
}

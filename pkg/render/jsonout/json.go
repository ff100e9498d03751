// Package jsonout exports a family layout as JSON.
//
// The document carries the layout output shape, nodes {id, x, y} and edges
// {id, sourceId, targetId}, plus the spacing configuration and optionally
// the person records. [Parse] reads it back, so the format doubles as the
// layout cache encoding.
package jsonout

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
)

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	people  []family.Person
	rootID  string
	compact bool
}

// WithPeople embeds the person records next to the layout.
func WithPeople(people []family.Person) Option {
	return func(r *renderer) { r.people = people }
}

// WithRoot records the chart's root person id.
func WithRoot(id string) Option { return func(r *renderer) { r.rootID = id } }

// WithCompact disables indentation.
func WithCompact() Option { return func(r *renderer) { r.compact = true } }

// Document is the JSON layout document.
type Document struct {
	Nodes        []layout.Node   `json:"nodes"`
	Edges        []layout.Edge   `json:"edges"`
	Config       *layout.Config  `json:"config,omitempty"`
	RootPersonID string          `json:"rootPersonId,omitempty"`
	People       []family.Person `json:"people,omitempty"`
}

// Render encodes res as a JSON document. Empty node and edge sets encode as
// [] rather than null.
func Render(res layout.Result, opts ...Option) ([]byte, error) {
	r := renderer{}
	for _, opt := range opts {
		opt(&r)
	}

	cfg := res.Config
	doc := Document{
		Nodes:        res.Nodes,
		Edges:        res.Edges,
		Config:       &cfg,
		RootPersonID: r.rootID,
		People:       r.people,
	}
	if doc.Nodes == nil {
		doc.Nodes = []layout.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []layout.Edge{}
	}

	var (
		out []byte
		err error
	)
	if r.compact {
		out, err = json.Marshal(doc)
	} else {
		out, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return out, nil
}

// Parse decodes a document produced by [Render]. A missing config section
// yields the default spacing.
func Parse(data []byte) (layout.Result, *Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return layout.Result{}, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	cfg := layout.DefaultConfig()
	if doc.Config != nil {
		cfg = *doc.Config
	}
	return layout.Result{Nodes: doc.Nodes, Edges: doc.Edges, Config: cfg}, &doc, nil
}

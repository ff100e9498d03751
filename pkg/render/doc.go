// Package render provides output renderers for family chart layouts.
//
// # Overview
//
// The layout core produces positions and edges only. This package and its
// subpackages turn a [layout.Result] into something a person can look at:
//
//   - [svg]: card-based SVG chart with straight parent → child connectors
//   - [nodelink]: Graphviz DOT export, rendered to SVG or PNG in-process
//   - [jsonout]: layout JSON for external viewers and caching
//
// # Selection Events
//
// Interactive front ends (the terminal browser, the HTTP API) report user
// selections through [SelectionHandler]. The layout output never carries
// callbacks; a renderer that supports selection is handed a handler and calls
// it with a person id.
//
//	var h render.SelectionHandler = render.SelectionFuncs{
//	    OnSelect: func(id string) { show(id) },
//	    OnClear:  func() { hide() },
//	}
//
// [layout.Result]: github.com/matzehuels/kintree/pkg/layout.Result
// [svg]: github.com/matzehuels/kintree/pkg/render/svg
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
// [jsonout]: github.com/matzehuels/kintree/pkg/render/jsonout
package render

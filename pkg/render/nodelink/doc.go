// Package nodelink renders a family as a traditional node-link diagram.
//
// # Overview
//
// This package exports the family graph as Graphviz DOT and renders it
// in-process with Graphviz. It is an alternative to the card chart for cases
// where Graphviz's own ranking and edge routing is preferred.
//
// # Usage
//
//	dot := nodelink.ToDOT(data.People, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes. Every generation becomes a rank=same subgraph so partners and
// siblings line up. Parent → child edges are solid arrows; spouse edges are
// dashed, undirected, and do not constrain ranking. Dangling references
// produce no edge.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system installation is needed.
package nodelink

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds generation, occupation and life dates to node labels.
	// When false, only the display name is shown.
	Detailed bool

	// Title is drawn as the graph label when set.
	Title string
}

// ToDOT converts people to Graphviz DOT.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(people []family.Person, opts Options) string {
	ids := family.Index(people)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=%q, fontname=\"sans-serif\", fontsize=18, margin=\"0.2,0.1\"];\n", render.ColorTeal)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.7];\n", render.ColorTeal)
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=24;\n", opts.Title)
	}
	buf.WriteString("\n")

	gens := (&family.FamilyData{People: people}).Generations()
	for _, g := range gens {
		fmt.Fprintf(&buf, "  subgraph gen_%d {\n    rank=same;\n", g)
		for i, p := range people {
			if p.Generation != g || ids[p.ID] != i {
				continue
			}
			fmt.Fprintf(&buf, "    %q [label=%q];\n", p.ID, fmtLabel(p, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for i, p := range people {
		if ids[p.ID] != i {
			continue
		}
		for _, pid := range p.ParentIDs {
			if _, ok := ids[pid]; ok {
				fmt.Fprintf(&buf, "  %q -> %q;\n", pid, p.ID)
			}
		}
	}
	for i, p := range people {
		if ids[p.ID] != i || p.SpouseID == "" || p.SpouseID == p.ID {
			continue
		}
		if _, ok := ids[p.SpouseID]; ok {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, dir=none, constraint=false, color=%q];\n", p.SpouseID, p.ID, render.ColorBurgundy)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p family.Person, detailed bool) string {
	name := render.DisplayName(p)
	if !detailed {
		return name
	}

	parts := []string{name, render.GenerationLabel(p.Generation)}
	if p.Occupation != "" {
		parts = append(parts, p.Occupation)
	}
	if life := render.Lifespan(p); life != "" {
		parts = append(parts, life)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Package svg renders a family layout as an SVG chart of person cards.
//
// Each node becomes a rounded card with the person's name, location,
// generation badge and life dates. Edges are straight, non-animated lines
// from the bottom center of the parent card to the top center of the child
// card.
//
//	out := svg.Render(res,
//	    svg.WithFamily(data.People),
//	    svg.WithTitle("The Lovelace family"),
//	)
package svg

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
)

const (
	// DefaultCardHeight is the card height in layout units.
	DefaultCardHeight = 120.0
	padding           = 40.0
	titleHeight       = 60.0
	nameMaxChars      = 22
	lineMaxChars      = 28
)

const cardInteractionCSS = `
    .card rect { transition: stroke-width 0.2s ease; }
    .card:hover rect.frame { stroke-width: 4; }
    .edge { stroke-width: 2; fill: none; }`

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	people     map[string]family.Person
	title      string
	edgeColor  string
	cardHeight float64
	linkPrefix string
}

// WithFamily attaches person records so cards show names and details.
// Without it, cards show only ids.
func WithFamily(people []family.Person) Option {
	return func(r *renderer) {
		r.people = make(map[string]family.Person, len(people))
		for _, p := range people {
			if _, dup := r.people[p.ID]; !dup {
				r.people[p.ID] = p
			}
		}
	}
}

// WithTitle adds a heading above the chart.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithEdgeColor overrides the connector stroke color.
func WithEdgeColor(c string) Option { return func(r *renderer) { r.edgeColor = c } }

// WithCardHeight overrides [DefaultCardHeight].
func WithCardHeight(h float64) Option { return func(r *renderer) { r.cardHeight = h } }

// WithLinks wraps every card in a link to prefix + person id. The HTTP API
// uses this to make cards open the person detail endpoint.
func WithLinks(prefix string) Option { return func(r *renderer) { r.linkPrefix = prefix } }

// Render draws res as a standalone SVG document. It does not modify res and
// is safe to call concurrently.
func Render(res layout.Result, opts ...Option) []byte {
	r := renderer{edgeColor: render.ColorTeal, cardHeight: DefaultCardHeight}
	for _, opt := range opts {
		opt(&r)
	}
	cardWidth := res.Config.CardWidth
	if cardWidth <= 0 {
		cardWidth = layout.DefaultCardWidth
	}

	b := res.Bounds(r.cardHeight)
	if len(res.Nodes) == 0 {
		b = layout.Rect{MaxX: cardWidth, MaxY: r.cardHeight}
	}
	top := b.MinY - padding
	if r.title != "" {
		top -= titleHeight
	}
	w := b.Width() + 2*padding
	h := b.MaxY + padding - top

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		b.MinX-padding, top, w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardInteractionCSS)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="28" font-weight="bold" fill="%s">%s</text>`+"\n",
			b.MinX+b.Width()/2, top+padding, render.ColorInk, render.EscapeXML(r.title))
	}

	// Edges first so cards paint over connector ends.
	for _, e := range res.Edges {
		src, okS := res.NodeByID(e.Source)
		dst, okD := res.NodeByID(e.Target)
		if !okS || !okD {
			continue
		}
		fmt.Fprintf(&buf, `  <line class="edge" id="edge-%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
			render.EscapeXML(e.ID),
			src.X+cardWidth/2, src.Y+r.cardHeight,
			dst.X+cardWidth/2, dst.Y,
			r.edgeColor)
	}

	for _, n := range res.Nodes {
		r.renderCard(&buf, n, cardWidth)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderCard(buf *bytes.Buffer, n layout.Node, cardWidth float64) {
	p, ok := r.people[n.ID]
	if !ok {
		p = family.Person{ID: n.ID}
	}
	cx := n.X + cardWidth/2

	if r.linkPrefix != "" {
		fmt.Fprintf(buf, `  <a href="%s">`+"\n", render.EscapeXML(r.linkPrefix+n.ID))
	}
	fmt.Fprintf(buf, `  <g class="card" id="person-%s" data-person="%s">`+"\n", render.EscapeXML(n.ID), render.EscapeXML(n.ID))
	fmt.Fprintf(buf, "    <title>%s</title>\n", render.EscapeXML(render.DisplayName(p)))
	fmt.Fprintf(buf, `    <rect class="frame" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		n.X, n.Y, cardWidth, r.cardHeight, render.ColorCardFill, render.ColorTeal)

	y := n.Y + 30
	writeText(buf, cx, y, 18, "bold", render.ColorInk, render.Truncate(render.DisplayName(p), nameMaxChars))
	if p.Location != "" {
		y += 22
		writeText(buf, cx, y, 13, "normal", render.ColorMuted, render.Truncate(p.Location, lineMaxChars))
	}
	if life := render.Lifespan(p); life != "" {
		y += 20
		writeText(buf, cx, y, 13, "normal", render.ColorMuted, life)
	}

	if ok {
		by := n.Y + r.cardHeight - 30
		fmt.Fprintf(buf, `    <rect class="badge" x="%.1f" y="%.1f" width="%.1f" height="20" rx="10" fill="%s"/>`+"\n",
			cx-50, by, 100.0, render.ColorCardBadge)
		writeText(buf, cx, by+14, 11, "bold", render.ColorTeal, render.GenerationLabel(p.Generation))
	}

	buf.WriteString("  </g>\n")
	if r.linkPrefix != "" {
		buf.WriteString("  </a>\n")
	}
}

func writeText(buf *bytes.Buffer, x, y, size float64, weight, color, s string) {
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.0f" font-weight="%s" fill="%s">%s</text>`+"\n",
		x, y, size, weight, color, render.EscapeXML(s))
}

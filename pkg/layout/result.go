package layout

import "math"

// Node is a positioned person card. X and Y are the card's top-left corner.
type Node struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Edge connects a parent card to a child card. ID is "<parent>-<child>".
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"sourceId"`
	Target string `json:"targetId"`
}

// EdgeID builds the connector id for a parent/child pair.
func EdgeID(parentID, childID string) string {
	return parentID + "-" + childID
}

// Result is the output of [Compute].
type Result struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Config is the spacing the result was computed with. Renderers use it
	// to size cards.
	Config Config `json:"config"`
}

// NodeByID returns the first node with the given id.
func (r Result) NodeByID(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the box covering every card. Cards are CardWidth wide and
// cardHeight tall; the layout itself has no notion of card height.
func (r Result) Bounds(cardHeight float64) Rect {
	if len(r.Nodes) == 0 {
		return Rect{}
	}
	b := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range r.Nodes {
		b.MinX = math.Min(b.MinX, n.X)
		b.MinY = math.Min(b.MinY, n.Y)
		b.MaxX = math.Max(b.MaxX, n.X+r.Config.CardWidth)
		b.MaxY = math.Max(b.MaxY, n.Y+cardHeight)
	}
	return b
}

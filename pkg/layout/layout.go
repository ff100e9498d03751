package layout

import (
	"slices"
	"strings"

	"github.com/matzehuels/kintree/pkg/family"
)

// keySep joins parent ids into a family-unit key. It is a control
// character, which person ids cannot contain.
const keySep = "\x00"

// Layout computes positions with [DefaultConfig].
func Layout(people []family.Person) Result {
	return Compute(people, DefaultConfig())
}

// Compute positions every person and synthesizes parent → child edges.
// Nodes are emitted generation by generation in first-seen order; within a
// generation, roots come first, then family units, then unpaired spouses.
func Compute(people []family.Person, cfg Config) Result {
	l := &layouter{
		people: people,
		cfg:    cfg,
		ids:    family.Index(people),
		placed: make([]bool, len(people)),
	}

	gens := newOrdered[int, int]()
	for i, p := range people {
		gens.add(p.Generation, i)
	}
	gens.each(l.layoutGeneration)

	return Result{Nodes: l.nodes, Edges: l.edges, Config: cfg}
}

type layouter struct {
	people []family.Person
	cfg    Config
	ids    map[string]int
	placed []bool

	nodes []Node
	edges []Edge
}

func (l *layouter) layoutGeneration(gen int, members []int) {
	y := float64(gen-1) * l.cfg.VerticalSpacing

	var roots []int
	units := newOrdered[string, int]()
	for _, i := range members {
		p := l.people[i]
		switch {
		case p.IsRoot():
			roots = append(roots, i)
		case p.IsDescendant():
			units.add(unitKey(p.ParentIDs), i)
		}
	}

	for _, i := range roots {
		if s := l.reverseSpouse(i, members); s >= 0 {
			l.place(i, -l.cfg.SpouseOffset/2-l.cfg.CardWidth, y)
			l.place(s, l.cfg.SpouseOffset/2, y)
			continue
		}
		l.place(i, -l.cfg.CardWidth/2, y)
	}

	if units.len() > 0 {
		l.layoutUnits(units, members, y)
	}

	// Spouses whose partner is absent from this generation.
	for _, i := range members {
		if !l.placed[i] {
			l.place(i, -l.cfg.CardWidth/2, y)
		}
	}
}

func (l *layouter) layoutUnits(units *ordered[string, int], members []int, y float64) {
	pair := l.cfg.PairSpacing()

	total := float64(units.len()-1)*l.cfg.GroupGap + l.cfg.SpouseOffset
	units.each(func(_ string, children []int) {
		total += float64(len(children)) * pair
	})

	cursor := -total / 2
	units.each(func(_ string, children []int) {
		for j, c := range children {
			x := cursor + float64(j)*pair
			l.place(c, x, y)
			if s := l.reverseSpouse(c, members); s >= 0 {
				l.place(s, x+l.cfg.SpouseOffset, y)
			}
			l.connect(c)
		}
		cursor += float64(len(children))*pair + l.cfg.GroupGap
	})
}

// connect emits one edge per known parent, in sorted parent order.
func (l *layouter) connect(child int) {
	p := l.people[child]
	for _, pid := range sortedCopy(p.ParentIDs) {
		if _, ok := l.ids[pid]; !ok {
			continue
		}
		l.edges = append(l.edges, Edge{ID: EdgeID(pid, p.ID), Source: pid, Target: p.ID})
	}
}

// reverseSpouse returns the first unplaced, non-descendant member whose
// spouse reference points at people[i], or -1.
func (l *layouter) reverseSpouse(i int, members []int) int {
	id := l.people[i].ID
	for _, m := range members {
		if m == i || l.placed[m] {
			continue
		}
		p := l.people[m]
		if p.SpouseID == id && !p.IsDescendant() {
			return m
		}
	}
	return -1
}

func (l *layouter) place(i int, x, y float64) {
	l.placed[i] = true
	l.nodes = append(l.nodes, Node{ID: l.people[i].ID, X: x, Y: y})
}

func unitKey(parentIDs []string) string {
	return strings.Join(sortedCopy(parentIDs), keySep)
}

func sortedCopy(s []string) []string {
	c := slices.Clone(s)
	slices.Sort(c)
	return c
}

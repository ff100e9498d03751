// Package layout computes the generational chart layout.
//
// [Compute] turns a flat list of people into absolute card positions and
// parent → child connector edges. It is a pure function: the same input
// sequence always yields the same nodes and edges in the same order, and the
// input slice is never modified.
//
// # Algorithm
//
// People are bucketed by generation, keeping first-encountered order. Within
// each bucket:
//
//  1. Root people (no parents, no spouse reference) are centered about x = 0,
//     alone or next to the partner found by reverse spouse lookup.
//  2. Descendants are grouped into family units keyed by their sorted parent
//     ids. The whole layer of units is centered, units are separated by
//     [Config.GroupGap], and each child gets one pair slot
//     ([Config.PairSpacing]) for itself and its partner.
//  3. Every descendant receives one edge per parent present in the input.
//
// The y coordinate of a generation g is (g-1) * [Config.VerticalSpacing].
//
// # Malformed Input
//
// Dangling parent references produce no edge. A spouse whose partner is not in
// the same generation is centered like a root person, so every person is
// placed exactly once. Overlaps are possible and accepted: independent root
// people in one generation share x = -CardWidth/2.
//
// # Families With More Than Two Parents
//
// The grouping key and edge synthesis handle any number of parents. Spacing
// still reserves one child card plus one partner card per slot, which is the
// two-parent assumption; extra parents only add edges.
package layout

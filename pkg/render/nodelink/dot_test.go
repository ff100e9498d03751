package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
)

func people() []family.Person {
	return []family.Person{
		{ID: "a", Name: "Ada", Generation: 1, Occupation: "Mathematician", BirthDate: "1815"},
		{ID: "b", Name: "William", Generation: 1, SpouseID: "a"},
		{ID: "c", Name: "Byron", Generation: 2, ParentIDs: []string{"a", "b", "ghost"}},
		{ID: "d", Name: "", Generation: 2, SpouseID: "nobody"},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(people(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		"subgraph gen_1 {",
		"subgraph gen_2 {",
		"rank=same;",
		`"a" [label="Ada"];`,
		`"d" [label="d"];`,
		`"a" -> "c";`,
		`"b" -> "c";`,
		`"a" -> "b" [style=dashed, dir=none, constraint=false`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") || strings.Contains(dot, "nobody") {
		t.Errorf("dangling references should not produce edges:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(people(), Options{Detailed: true, Title: "Lovelace"})
	if !strings.Contains(dot, `"a" [label="Ada\nGeneration 1\nMathematician\nb. 1815"];`) {
		t.Errorf("detailed label not found:\n%s", dot)
	}
	if !strings.Contains(dot, `label="Lovelace";`) {
		t.Errorf("title not found:\n%s", dot)
	}
}

func TestToDOTGenerationOrder(t *testing.T) {
	dot := ToDOT(people(), Options{})
	if strings.Index(dot, "gen_1") > strings.Index(dot, "gen_2") {
		t.Error("generations should appear in first-seen order")
	}
}

func TestToDOTDuplicateIDs(t *testing.T) {
	dot := ToDOT([]family.Person{{ID: "a", Generation: 1}, {ID: "a", Generation: 1}}, Options{})
	if got := strings.Count(dot, `"a" [label=`); got != 1 {
		t.Errorf("duplicate id declared %d times", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("svg without viewBox should be unchanged, got %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	out, err := RenderSVG(context.Background(), ToDOT(people(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) {
		t.Errorf("output is not SVG: %.200s", out)
	}
}

func TestRenderPNG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	out, err := RenderPNG(context.Background(), ToDOT(people(), Options{}))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Errorf("output is not PNG: % x", out[:min(8, len(out))])
	}
}

package svg

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
)

func sample() ([]family.Person, layout.Result) {
	people := []family.Person{
		{ID: "a", Name: "Ada", Generation: 1, Location: "London", BirthDate: "1815", DeathDate: "1852"},
		{ID: "b", Name: "William", Generation: 1, SpouseID: "a"},
		{ID: "c", Name: "Byron & Co", Generation: 2, ParentIDs: []string{"a", "b"}},
	}
	return people, layout.Layout(people)
}

func TestRenderWellFormed(t *testing.T) {
	people, res := sample()
	out := Render(res, WithFamily(people), WithTitle("Lovelace <family>"))

	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, out)
		}
	}
}

func TestRenderContent(t *testing.T) {
	people, res := sample()
	out := string(Render(res, WithFamily(people), WithTitle("Lovelace <family>")))

	for _, want := range []string{
		`id="person-a"`,
		`id="person-b"`,
		`id="person-c"`,
		`id="edge-a-c"`,
		`id="edge-b-c"`,
		">Ada<",
		">London<",
		">1815 – 1852<",
		">Generation 2<",
		"Byron &amp; Co",
		"Lovelace &lt;family&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := strings.Count(out, `class="card"`); got != 3 {
		t.Errorf("got %d cards, want 3", got)
	}
	if got := strings.Count(out, `class="edge"`); got != 2 {
		t.Errorf("got %d edges, want 2", got)
	}
}

func TestRenderEdgeGeometry(t *testing.T) {
	_, res := sample()
	out := string(Render(res, WithCardHeight(100)))

	// a at (-297, 0), c at (-356, 400); card width 192.
	want := `x1="-201.0" y1="100.0" x2="-260.0" y2="400.0"`
	if !strings.Contains(out, want) {
		t.Errorf("edge a-c geometry not found, want %s", want)
	}
}

func TestRenderWithoutFamily(t *testing.T) {
	_, res := sample()
	out := string(Render(res))
	if !strings.Contains(out, ">a<") {
		t.Error("card should fall back to the person id")
	}
	if strings.Contains(out, "Generation") {
		t.Error("badge should be omitted without person records")
	}
}

func TestRenderEdgeColorAndLinks(t *testing.T) {
	people, res := sample()
	out := string(Render(res, WithFamily(people), WithEdgeColor("#ff0000"), WithLinks("/api/people/")))
	if !strings.Contains(out, `stroke="#ff0000"`) {
		t.Error("edge color not applied")
	}
	if !strings.Contains(out, `<a href="/api/people/c">`) {
		t.Error("card links not rendered")
	}
}

func TestRenderEmpty(t *testing.T) {
	out := string(Render(layout.Result{}))
	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Errorf("empty render not a document:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	people, res := sample()
	a := Render(res, WithFamily(people))
	b := Render(res, WithFamily(people))
	if string(a) != string(b) {
		t.Error("Render is not deterministic")
	}
}

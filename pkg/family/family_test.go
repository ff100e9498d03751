package family

import (
	"slices"
	"testing"
)

func TestPersonClassification(t *testing.T) {
	tests := []struct {
		name       string
		p          Person
		descendant bool
		spouse     bool
		root       bool
	}{
		{"bare", Person{ID: "a"}, false, false, true},
		{"spouse only", Person{ID: "b", SpouseID: "a"}, false, true, false},
		{"child", Person{ID: "c", ParentIDs: []string{"a", "b"}}, true, false, false},
		{"married child", Person{ID: "d", ParentIDs: []string{"a"}, SpouseID: "x"}, true, true, false},
		{"empty parents", Person{ID: "e", ParentIDs: []string{}}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsDescendant(); got != tt.descendant {
				t.Errorf("IsDescendant() = %v, want %v", got, tt.descendant)
			}
			if got := tt.p.HasSpouse(); got != tt.spouse {
				t.Errorf("HasSpouse() = %v, want %v", got, tt.spouse)
			}
			if got := tt.p.IsRoot(); got != tt.root {
				t.Errorf("IsRoot() = %v, want %v", got, tt.root)
			}
		})
	}
}

func TestHasParent(t *testing.T) {
	p := Person{ID: "c", ParentIDs: []string{"a", "b"}}
	if !p.HasParent("a") || !p.HasParent("b") {
		t.Error("HasParent should find listed parents")
	}
	if p.HasParent("c") || p.HasParent("") {
		t.Error("HasParent should not find unlisted ids")
	}
}

func TestFamilyDataPerson(t *testing.T) {
	f := &FamilyData{People: []Person{{ID: "a", Name: "Ada"}, {ID: "b", Name: "Bob"}}}

	p, ok := f.Person("b")
	if !ok || p.Name != "Bob" {
		t.Errorf("Person(b) = %+v, %v", p, ok)
	}
	if _, ok := f.Person("zz"); ok {
		t.Error("Person(zz) should not be found")
	}
}

func TestFamilyDataGenerations(t *testing.T) {
	f := &FamilyData{People: []Person{
		{ID: "a", Generation: 2},
		{ID: "b", Generation: 1},
		{ID: "c", Generation: 2},
		{ID: "d", Generation: 4},
	}}
	if got, want := f.Generations(), []int{2, 1, 4}; !slices.Equal(got, want) {
		t.Errorf("Generations() = %v, want %v", got, want)
	}
}

func TestIndex(t *testing.T) {
	idx := Index([]Person{{ID: "a"}, {ID: "b"}, {ID: "a"}})
	if len(idx) != 2 {
		t.Fatalf("len(Index) = %d, want 2", len(idx))
	}
	if idx["a"] != 0 || idx["b"] != 1 {
		t.Errorf("Index = %v, want first occurrence positions", idx)
	}
}

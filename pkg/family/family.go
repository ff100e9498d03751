package family

// Person is one individual in a family chart.
//
// ID is the sole identity key. Generation places the person in a horizontal
// layer. ParentIDs (non-empty) marks the person as a descendant. SpouseID is
// directional: only one side of a couple carries it. The remaining fields are
// display-only and do not affect layout or relationship lookups.
type Person struct {
	ID          string   `json:"id" bson:"id"`
	Name        string   `json:"name" bson:"name"`
	Generation  int      `json:"generation" bson:"generation"`
	Photo       string   `json:"photo,omitempty" bson:"photo,omitempty"`
	Occupation  string   `json:"occupation,omitempty" bson:"occupation,omitempty"`
	Location    string   `json:"location,omitempty" bson:"location,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	BirthDate   string   `json:"birthDate,omitempty" bson:"birth_date,omitempty"`
	DeathDate   string   `json:"deathDate,omitempty" bson:"death_date,omitempty"`
	ParentIDs   []string `json:"parentIds,omitempty" bson:"parent_ids,omitempty"`
	SpouseID    string   `json:"spouseId,omitempty" bson:"spouse_id,omitempty"`
}

// IsDescendant reports whether the person lists at least one parent.
func (p Person) IsDescendant() bool { return len(p.ParentIDs) > 0 }

// HasSpouse reports whether the person carries a forward spouse reference.
func (p Person) HasSpouse() bool { return p.SpouseID != "" }

// IsRoot reports whether the person has neither parents nor a forward spouse
// reference. Root people are positioned independently within their generation.
func (p Person) IsRoot() bool { return !p.IsDescendant() && !p.HasSpouse() }

// HasParent reports whether id appears in the person's parent list.
func (p Person) HasParent(id string) bool {
	for _, pid := range p.ParentIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// FamilyData is an ordered collection of people plus the id of the chart's
// root person. RootPersonID is informational; layout does not consume it.
type FamilyData struct {
	People       []Person `json:"people" bson:"people"`
	RootPersonID string   `json:"rootPersonId" bson:"root_person_id"`
}

// Person returns the record with the given id.
func (f *FamilyData) Person(id string) (Person, bool) {
	for _, p := range f.People {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// Generations returns the distinct generation numbers in first-encountered
// order.
func (f *FamilyData) Generations() []int {
	seen := make(map[int]bool)
	var gens []int
	for _, p := range f.People {
		if !seen[p.Generation] {
			seen[p.Generation] = true
			gens = append(gens, p.Generation)
		}
	}
	return gens
}

// Index builds an id → position lookup for people. When ids repeat, the first
// occurrence wins, matching the first-match semantics of the linear lookups.
func Index(people []Person) map[string]int {
	idx := make(map[string]int, len(people))
	for i, p := range people {
		if _, dup := idx[p.ID]; !dup {
			idx[p.ID] = i
		}
	}
	return idx
}

package family

// Relations holds the relatives of one person as shown in a detail view.
// Spouse is nil when no spouse is found.
type Relations struct {
	Parents  []Person
	Spouse   *Person
	Children []Person
}

// Empty reports whether no relationship was found.
func (r Relations) Empty() bool {
	return len(r.Parents) == 0 && r.Spouse == nil && len(r.Children) == 0
}

// Resolve derives the parents, spouse and children of person from people.
//
// Parents and children follow the iteration order of people. The spouse
// lookup is forward-only: it matches the record whose ID equals
// person.SpouseID and does not search for records pointing back at person.
// The partner that does not carry the SpouseID therefore resolves no spouse;
// use [ResolveSymmetric] when both directions are wanted.
func Resolve(person Person, people []Person) Relations {
	rel := Relations{
		Parents:  parentsOf(person, people),
		Children: childrenOf(person, people),
	}
	if person.SpouseID != "" {
		rel.Spouse = find(people, func(p Person) bool { return p.ID == person.SpouseID })
	}
	return rel
}

// ResolveSymmetric is [Resolve] with a bidirectional spouse lookup via
// [SpouseOf].
func ResolveSymmetric(person Person, people []Person) Relations {
	return Relations{
		Parents:  parentsOf(person, people),
		Spouse:   SpouseOf(person, people),
		Children: childrenOf(person, people),
	}
}

// SpouseOf returns the partner of person, checking the forward reference
// first and then scanning for a record whose SpouseID points at person.
func SpouseOf(person Person, people []Person) *Person {
	if person.SpouseID != "" {
		if s := find(people, func(p Person) bool { return p.ID == person.SpouseID }); s != nil {
			return s
		}
	}
	return ReverseSpouse(person.ID, people)
}

// ReverseSpouse returns the first record whose SpouseID equals id.
func ReverseSpouse(id string, people []Person) *Person {
	if id == "" {
		return nil
	}
	return find(people, func(p Person) bool { return p.SpouseID == id })
}

// AreSpouses reports whether a and b are married regardless of which record
// stores the reference.
func AreSpouses(a, b Person) bool {
	if a.ID == "" || b.ID == "" {
		return false
	}
	return a.SpouseID == b.ID || b.SpouseID == a.ID
}

func parentsOf(person Person, people []Person) []Person {
	if len(person.ParentIDs) == 0 {
		return nil
	}
	var out []Person
	for _, p := range people {
		if person.HasParent(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

func childrenOf(person Person, people []Person) []Person {
	var out []Person
	for _, p := range people {
		if p.HasParent(person.ID) {
			out = append(out, p)
		}
	}
	return out
}

func find(people []Person, match func(Person) bool) *Person {
	for i := range people {
		if match(people[i]) {
			p := people[i]
			return &p
		}
	}
	return nil
}

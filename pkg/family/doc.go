// Package family defines the genealogical data model and the lookups that
// derive relationships from it.
//
// # Data Model
//
// A [FamilyData] is an ordered list of [Person] records plus an informational
// root person id. Each person carries a generation number (its horizontal
// layer in a chart), optional parent ids, and an optional spouse id.
//
// The spouse relation is directional: only one member of a couple stores a
// SpouseID. The other member is found by reverse lookup, scanning for a record
// whose SpouseID points back at it. The raw representation is kept as-is;
// [SpouseOf] and [AreSpouses] check both directions for callers that need a
// symmetric view.
//
// # Relationships
//
// [Resolve] derives parents, spouse and children for a detail view. Its
// spouse lookup is forward-only, so the partner that does not carry the
// SpouseID shows no spouse. [ResolveSymmetric] performs the same lookups but
// finds spouses in both directions.
//
// # Loading
//
// [Decode] and [ReadFile] parse the JSON interchange format and reject records
// with a missing or malformed generation, naming the offending id. A [Loader]
// wraps any [Source] (file, HTTP, database) with a pending / ready / failed
// state machine.
//
// # Concurrency
//
// All lookup functions are pure and safe for concurrent use. They never
// modify the people slice passed in.
package family

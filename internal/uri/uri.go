// Package uri defines the document-location value types shared by every
// component of the analyzer and query engine: URIs, zero-based positions,
// and ranges over them.
package uri

import "fmt"

// URI is an opaque document identifier, assumed to be a canonical
// "file://" string. Equality is byte equality — callers must not
// normalize or case-fold it themselves.
type URI string

// Position is a zero-based line/column pair, matching LSP's convention.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Less reports whether p sorts strictly before o in row-major order.
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Column < o.Column
}

// LessEqual reports whether p sorts at or before o.
func (p Position) LessEqual(o Position) bool {
	return p == o || p.Less(o)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Column)
}

// Range is a half-open-by-convention [Start, End] span; Start must be
// lexicographically <= End.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p falls within [r.Start, r.End].
func (r Range) Contains(p Position) bool {
	return r.Start.LessEqual(p) && p.LessEqual(r.End)
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Location pairs a URI with a range within it, the unit LSP responses
// for definition/references/etc. are built from.
type Location struct {
	URI   URI   `json:"uri"`
	Range Range `json:"range"`
}

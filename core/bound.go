package core

import (
	"firebundle/model"
)

// Bound is a cursor position in a query's result ordering: one value per
// order-by clause, and whether the position sorts before or after matching
// documents.
type Bound struct {
	Position []model.FieldValue
	Before   bool
}

// IsEmpty reports whether the bound carries no position. Callers treat an
// empty bound as "no bound at all".
func (r Bound) IsEmpty() bool {
	return len(r.Position) == 0
}

package core

import (
	"firebundle/model"
)

// Direction orders query results by a field.
type Direction int

const (
	DirectionAscending Direction = iota + 1
	DirectionDescending
)

// OrderBy sorts query results by one field.
type OrderBy struct {
	Field     model.FieldPath
	Direction Direction
}

package core

import (
	"github.com/pkg/errors"

	"firebundle/model"
)

// Operator is a field filter comparison operator. The zero value marks an
// invalid filter.
type Operator int

const (
	OperatorInvalid Operator = iota
	OperatorLessThan
	OperatorLessThanOrEqual
	OperatorEqual
	OperatorNotEqual
	OperatorGreaterThan
	OperatorGreaterThanOrEqual
	OperatorArrayContains
	OperatorIn
	OperatorArrayContainsAny
	OperatorNotIn
)

func (r Operator) String() string {
	switch r {
	case OperatorLessThan:
		return "<"
	case OperatorLessThanOrEqual:
		return "<="
	case OperatorEqual:
		return "=="
	case OperatorNotEqual:
		return "!="
	case OperatorGreaterThan:
		return ">"
	case OperatorGreaterThanOrEqual:
		return ">="
	case OperatorArrayContains:
		return "array-contains"
	case OperatorIn:
		return "in"
	case OperatorArrayContainsAny:
		return "array-contains-any"
	case OperatorNotIn:
		return "not-in"
	}
	return "invalid"
}

// Filter compares a single document field against a value. The zero value
// is the invalid filter sentinel; use NewFieldFilter to build a real one.
type Filter struct {
	Field model.FieldPath
	Op    Operator
	Value model.FieldValue
}

// NewFieldFilter checks the operator/value contract the query engine
// relies on. Callers must not hand it inputs they already know are bad.
func NewFieldFilter(field model.FieldPath, op Operator, value model.FieldValue) (Filter, error) {
	if field.IsEmpty() {
		return Filter{}, errors.New("NewFieldFilter error: field path is empty")
	}
	if op == OperatorInvalid {
		return Filter{}, errors.New("NewFieldFilter error: operator is invalid")
	}
	if !value.IsSet() {
		return Filter{}, errors.Errorf(
			"NewFieldFilter error: no value for filter on %q", field.CanonicalString())
	}
	switch op {
	case OperatorIn, OperatorNotIn, OperatorArrayContainsAny:
		if value.Kind != model.TypeArray {
			return Filter{}, errors.Errorf(
				"NewFieldFilter error: '%s' filters require an array value", op)
		}
	}
	return Filter{Field: field, Op: op, Value: value}, nil
}

// InvalidFilter is the sentinel returned when decoding fails before a real
// filter can be constructed.
func InvalidFilter() Filter {
	return Filter{}
}

func (f Filter) IsValid() bool {
	return f.Op != OperatorInvalid
}

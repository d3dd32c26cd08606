package bundle

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"firebundle/bundle/jsonr"
	"firebundle/core"
	"firebundle/model"
)

var fieldFilterOperators = map[string]core.Operator{
	"LESS_THAN":             core.OperatorLessThan,
	"LESS_THAN_OR_EQUAL":    core.OperatorLessThanOrEqual,
	"EQUAL":                 core.OperatorEqual,
	"NOT_EQUAL":             core.OperatorNotEqual,
	"GREATER_THAN":          core.OperatorGreaterThan,
	"GREATER_THAN_OR_EQUAL": core.OperatorGreaterThanOrEqual,
	"ARRAY_CONTAINS":        core.OperatorArrayContains,
	"IN":                    core.OperatorIn,
	"ARRAY_CONTAINS_ANY":    core.OperatorArrayContainsAny,
	"NOT_IN":                core.OperatorNotIn,
}

func (s *Serializer) decodeQuery(r *jsonr.Reader, query gjson.Result) Query {
	structuredQuery := r.Require("structuredQuery", query)
	verifyStructuredQuery(r, structuredQuery)
	if !r.Ok() {
		return Query{}
	}

	parent := s.decodeName(r, r.Require("parent", query))
	parent, collectionGroup := decodeCollectionSource(r, structuredQuery.Get("from"), parent)

	filters := s.decodeWhere(r, structuredQuery)
	orderBys := decodeOrderBy(r, structuredQuery)

	var startAt *core.Bound
	if bound := s.decodeBound(r, structuredQuery, "startAt"); !bound.IsEmpty() {
		startAt = &bound
	}
	var endAt *core.Bound
	if bound := s.decodeBound(r, structuredQuery, "endAt"); !bound.IsEmpty() {
		endAt = &bound
	}

	limit := decodeLimit(r, structuredQuery)
	// limitType lives on the bundledQuery envelope, not the structured
	// query
	limitType := decodeLimitType(r, query)

	return Query{
		Target: core.Target{
			Path:            parent,
			CollectionGroup: collectionGroup,
			Filters:         filters,
			OrderBys:        orderBys,
			Limit:           limit,
			StartAt:         startAt,
			EndAt:           endAt,
		},
		LimitType: limitType,
	}
}

func verifyStructuredQuery(r *jsonr.Reader, query gjson.Result) {
	if !query.IsObject() {
		r.Fail("'structuredQuery' is not an object as expected.")
		return
	}
	if query.Get("select").Exists() {
		r.Fail("Queries with 'select' statements are not supported in bundles")
		return
	}
	if !query.Get("from").Exists() {
		r.Fail("Query does not have a 'from' collection")
		return
	}
	if query.Get("offset").Exists() {
		r.Fail("Queries with 'offset' are not supported in bundles")
	}
}

// decodeCollectionSource reads the single collection selector: either a
// child collection appended to parent, or a collection group id when
// allDescendants is set.
func decodeCollectionSource(
	r *jsonr.Reader,
	from gjson.Result,
	parent model.ResourcePath,
) (model.ResourcePath, string) {
	if !from.IsArray() {
		r.Fail("Query's 'from' clause is not an array")
		return parent, ""
	}
	selectors := from.Array()
	if len(selectors) != 1 {
		r.Fail("Only queries with a single 'from' clause are supported by the SDK")
		return parent, ""
	}

	collectionID := r.RequireString("collectionId", selectors[0])
	if r.OptionalBool("allDescendants", selectors[0]) {
		return parent, collectionID
	}
	return parent.Append(collectionID), ""
}

// decodeWhere turns the optional 'where' clause into a flat filter list.
// No clause at all is a valid query.
func (s *Serializer) decodeWhere(r *jsonr.Reader, query gjson.Result) []core.Filter {
	where := query.Get("where")
	if !where.Exists() {
		return nil
	}
	if !where.IsObject() {
		r.Fail("Query's 'where' clause is not a json object.")
		return nil
	}

	if composite := where.Get("compositeFilter"); composite.Exists() {
		return s.decodeCompositeFilter(r, composite)
	}
	if fieldFilter := where.Get("fieldFilter"); fieldFilter.Exists() {
		return []core.Filter{s.decodeFieldFilter(r, fieldFilter)}
	}
	if unaryFilter := where.Get("unaryFilter"); unaryFilter.Exists() {
		return []core.Filter{s.decodeUnaryFilter(r, unaryFilter)}
	}

	r.Fail("'where' does not have valid filter")
	return nil
}

// decodeCompositeFilter flattens an AND composite into its field filters.
// Composites of composites or of unary filters are not supported.
func (s *Serializer) decodeCompositeFilter(r *jsonr.Reader, filter gjson.Result) []core.Filter {
	if r.RequireString("op", filter) != "AND" {
		r.Fail("The SDK only supports composite filters of type 'AND'")
		return nil
	}

	filters := make([]core.Filter, 0)
	for _, f := range r.RequireArray("filters", filter) {
		filters = append(filters, s.decodeFieldFilter(r, r.Require("fieldFilter", f)))
		if !r.Ok() {
			return nil
		}
	}
	return filters
}

func (s *Serializer) decodeFieldFilter(r *jsonr.Reader, filter gjson.Result) core.Filter {
	field := decodeFieldReference(r, r.Require("field", filter))
	op := decodeFieldFilterOperator(r, r.RequireString("op", filter))
	value := s.decodeValue(r, r.Require("value", filter))

	// return the sentinel before the constructor ever sees out-of-contract
	// inputs
	if !r.Ok() {
		return core.InvalidFilter()
	}
	result, err := core.NewFieldFilter(field, op, value)
	if err != nil {
		r.SetErr(err)
		return core.InvalidFilter()
	}
	return result
}

// decodeUnaryFilter lowers IS_NAN and friends onto equality filters
// against NaN and Null.
func (s *Serializer) decodeUnaryFilter(r *jsonr.Reader, filter gjson.Result) core.Filter {
	field := decodeFieldReference(r, r.Require("field", filter))
	op := r.RequireString("op", filter)
	if !r.Ok() {
		return core.InvalidFilter()
	}

	var result core.Filter
	var err error
	switch op {
	case "IS_NAN":
		result, err = core.NewFieldFilter(field, core.OperatorEqual, model.NanValue())
	case "IS_NULL":
		result, err = core.NewFieldFilter(field, core.OperatorEqual, model.NullValue())
	case "IS_NOT_NAN":
		result, err = core.NewFieldFilter(field, core.OperatorNotEqual, model.NanValue())
	case "IS_NOT_NULL":
		result, err = core.NewFieldFilter(field, core.OperatorNotEqual, model.NullValue())
	default:
		r.Fail("Unexpected unary filter operator: " + op)
		return core.InvalidFilter()
	}
	if err != nil {
		r.SetErr(err)
		return core.InvalidFilter()
	}
	return result
}

func decodeFieldReference(r *jsonr.Reader, field gjson.Result) model.FieldPath {
	if !field.IsObject() {
		r.Fail("'field' should be an json object, but it is not")
		return model.FieldPath{}
	}
	path, err := model.FieldPathFromServerFormat(r.RequireString("fieldPath", field))
	if err != nil {
		r.SetErr(err)
		return model.FieldPath{}
	}
	return path
}

func decodeFieldFilterOperator(r *jsonr.Reader, op string) core.Operator {
	operator, ok := fieldFilterOperators[op]
	if !ok {
		r.Fail("Operator in filter is not valid: " + op)
		return core.OperatorInvalid
	}
	return operator
}

func decodeOrderBy(r *jsonr.Reader, query gjson.Result) []core.OrderBy {
	result := make([]core.OrderBy, 0)
	for _, orderBy := range r.RequireArray("orderBy", query) {
		field := decodeFieldReference(r, r.Require("field", orderBy))

		direction := "ASCENDING"
		if orderBy.Get("direction").Exists() {
			direction = r.RequireString("direction", orderBy)
		}
		switch direction {
		case "ASCENDING":
			result = append(result, core.OrderBy{Field: field, Direction: core.DirectionAscending})
		case "DESCENDING":
			result = append(result, core.OrderBy{Field: field, Direction: core.DirectionDescending})
		default:
			r.Fail("'direction' value is invalid: " + direction)
			return nil
		}
	}
	return result
}

// decodeLimit reads the optional result limit. Only a native JSON integer
// is accepted here.
func decodeLimit(r *jsonr.Reader, query gjson.Result) int32 {
	limit := query.Get("limit")
	if !limit.Exists() {
		return core.NoLimit
	}

	value, err := strconv.ParseInt(limit.Raw, 10, 32)
	if limit.Type != gjson.Number || err != nil {
		r.Fail("'limit' is not encoded as a valid integer")
		return core.NoLimit
	}
	return int32(value)
}

func decodeLimitType(r *jsonr.Reader, query gjson.Result) core.LimitType {
	limitType := "FIRST"
	if query.Get("limitType").Exists() {
		limitType = r.RequireString("limitType", query)
	}

	switch limitType {
	case "FIRST":
		return core.LimitTypeFirst
	case "LAST":
		return core.LimitTypeLast
	default:
		r.Fail("'limitType' is not encoded as a recognizable value")
		return core.LimitTypeNone
	}
}

// decodeBound reads a cursor bound. An absent bound key and an explicitly
// empty values array both decode to the empty bound; callers treat either
// as "no bound".
func (s *Serializer) decodeBound(r *jsonr.Reader, query gjson.Result, name string) core.Bound {
	if !query.Get(name).Exists() {
		return core.Bound{}
	}

	bound := r.Require(name, query)
	before := r.OptionalBool("before", bound)
	position := lo.Map(
		r.RequireArray("values", bound),
		func(value gjson.Result, _ int) model.FieldValue {
			return s.decodeValue(r, value)
		},
	)
	return core.Bound{Position: position, Before: before}
}

package core

import (
	"firebundle/model"
)

// NoLimit marks a target without a result count limit.
const NoLimit int32 = -1

// LimitType says which end of the result set a limit cuts from.
type LimitType int

const (
	LimitTypeNone LimitType = iota
	LimitTypeFirst
	LimitTypeLast
)

// Target is the decoded scope of a query: where it reads from, how results
// are filtered and ordered, and how many to keep.
type Target struct {
	// Path is the parent resource the query reads under, relative to the
	// database's documents root.
	Path model.ResourcePath
	// CollectionGroup, when set, scopes the query to every collection with
	// that id regardless of Path depth.
	CollectionGroup string
	Filters         []Filter
	OrderBys        []OrderBy
	Limit           int32
	StartAt         *Bound
	EndAt           *Bound
}

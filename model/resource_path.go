package model

import (
	"strings"

	"github.com/pkg/errors"
)

// ResourcePath is a slash-delimited path into the database hierarchy,
// like "projects/p/databases/d/documents/rooms/room1".
type ResourcePath struct {
	segments []string
}

func NewResourcePath(segments ...string) ResourcePath {
	return ResourcePath{segments: segments}
}

// ResourcePathFromString splits path on slashes. Empty segments are
// invalid, so leading, trailing, or doubled slashes are rejected.
func ResourcePathFromString(path string) (ResourcePath, error) {
	if path == "" {
		return ResourcePath{}, nil
	}
	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if segment == "" {
			return ResourcePath{}, errors.Errorf(
				"ResourcePathFromString error: invalid path %q: empty segment", path)
		}
	}
	return ResourcePath{segments: segments}, nil
}

func (r ResourcePath) Len() int {
	return len(r.segments)
}

func (r ResourcePath) IsEmpty() bool {
	return len(r.segments) == 0
}

func (r ResourcePath) Segment(i int) string {
	return r.segments[i]
}

func (r ResourcePath) Segments() []string {
	segments := make([]string, len(r.segments))
	copy(segments, r.segments)
	return segments
}

// Append returns a new path with segment added at the end. The receiver is
// left untouched.
func (r ResourcePath) Append(segment string) ResourcePath {
	segments := make([]string, 0, len(r.segments)+1)
	segments = append(segments, r.segments...)
	segments = append(segments, segment)
	return ResourcePath{segments: segments}
}

// PopFirst returns the path without its first n segments. Popping more
// segments than the path has yields the empty path.
func (r ResourcePath) PopFirst(n int) ResourcePath {
	if n >= len(r.segments) {
		return ResourcePath{}
	}
	segments := make([]string, len(r.segments)-n)
	copy(segments, r.segments[n:])
	return ResourcePath{segments: segments}
}

func (r ResourcePath) CanonicalString() string {
	return strings.Join(r.segments, "/")
}

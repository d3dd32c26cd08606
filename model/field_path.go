package model

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldPath is a dot-separated path to a field inside a document, like
// "address.city". Segments containing dots or other special characters
// arrive backtick-quoted with backslash escapes.
type FieldPath struct {
	segments []string
}

func NewFieldPath(segments ...string) FieldPath {
	return FieldPath{segments: segments}
}

// FieldPathFromServerFormat parses a field path the way the backend
// encodes it: segments separated by dots, quoting with backticks, escaping
// with backslashes.
func FieldPathFromServerFormat(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("FieldPathFromServerFormat error: path is empty")
	}

	segments := make([]string, 0)
	segment := strings.Builder{}
	inBackticks := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '\\':
			if i+1 == len(path) {
				return FieldPath{}, errors.Errorf(
					"FieldPathFromServerFormat error: trailing escape character in %q", path)
			}
			i++
			segment.WriteByte(path[i])
		case c == '`':
			inBackticks = !inBackticks
		case c == '.' && !inBackticks:
			if segment.Len() == 0 {
				return FieldPath{}, errors.Errorf(
					"FieldPathFromServerFormat error: empty segment in %q", path)
			}
			segments = append(segments, segment.String())
			segment.Reset()
		default:
			segment.WriteByte(c)
		}
	}
	if inBackticks {
		return FieldPath{}, errors.Errorf(
			"FieldPathFromServerFormat error: unterminated backtick in %q", path)
	}
	if segment.Len() == 0 {
		return FieldPath{}, errors.Errorf(
			"FieldPathFromServerFormat error: empty segment in %q", path)
	}
	segments = append(segments, segment.String())

	return FieldPath{segments: segments}, nil
}

func (r FieldPath) Len() int {
	return len(r.segments)
}

func (r FieldPath) IsEmpty() bool {
	return len(r.segments) == 0
}

func (r FieldPath) Segments() []string {
	segments := make([]string, len(r.segments))
	copy(segments, r.segments)
	return segments
}

func (r FieldPath) CanonicalString() string {
	return strings.Join(r.segments, ".")
}

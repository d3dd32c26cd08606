package model

import (
	"github.com/pkg/errors"
)

// DocumentKey identifies a single document: a non-empty path with an even
// number of segments alternating collection ids and document ids.
type DocumentKey struct {
	Path ResourcePath
}

func NewDocumentKey(path ResourcePath) (DocumentKey, error) {
	if path.Len() == 0 || path.Len()%2 != 0 {
		return DocumentKey{}, errors.Errorf(
			"NewDocumentKey error: %q is not a valid document path", path.CanonicalString())
	}
	return DocumentKey{Path: path}, nil
}

func (r DocumentKey) String() string {
	return r.Path.CanonicalString()
}

// CollectionID is the id of the collection holding the document.
func (r DocumentKey) CollectionID() string {
	return r.Path.Segment(r.Path.Len() - 2)
}

// DocumentID is the last path segment.
func (r DocumentKey) DocumentID() string {
	return r.Path.Segment(r.Path.Len() - 1)
}

package bundle

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ElementKind is the envelope key naming what a bundle element holds.
type ElementKind string

const (
	ElementMetadata         = ElementKind("metadata")
	ElementNamedQuery       = ElementKind("namedQuery")
	ElementDocumentMetadata = ElementKind("documentMetadata")
	ElementDocument         = ElementKind("document")
)

var elementKinds = []ElementKind{
	ElementMetadata,
	ElementNamedQuery,
	ElementDocumentMetadata,
	ElementDocument,
}

// elements bigger than this are rejected rather than buffered
const maxElementLength = 256 << 20

type (
	// Element is one framed bundle element: its kind and the JSON text
	// found under the envelope key.
	Element struct {
		Kind ElementKind
		JSON string
	}

	// Reader splits a bundle stream into elements. On the wire each
	// element is the decimal byte length of its JSON text followed by the
	// text itself.
	Reader struct {
		reader *bufio.Reader
	}
)

func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next returns the next element, or io.EOF at a clean end of stream.
func (r *Reader) Next() (*Element, error) {
	length, err := r.readLength()
	if err != nil {
		return nil, err
	}

	text := make([]byte, length)
	if _, err := io.ReadFull(r.reader, text); err != nil {
		return nil, errors.Wrap(err, "Next error: read element of announced length")
	}

	element, err := splitElement(string(text))
	if err != nil {
		return nil, errors.Wrap(err, "Next error")
	}
	return element, nil
}

// readLength consumes the decimal digits preceding an element's JSON text.
func (r *Reader) readLength() (int, error) {
	length := 0
	read := false
	for {
		b, err := r.reader.ReadByte()
		if err == io.EOF {
			if !read {
				return 0, io.EOF
			}
			return 0, errors.New("readLength error: stream ended inside a length prefix")
		}
		if err != nil {
			return 0, errors.Wrap(err, "readLength error")
		}

		if b < '0' || b > '9' {
			if !read {
				return 0, errors.Errorf("readLength error: unexpected byte %q in length prefix", b)
			}
			if err := r.reader.UnreadByte(); err != nil {
				return 0, errors.Wrap(err, "readLength error")
			}
			return length, nil
		}

		read = true
		length = length*10 + int(b-'0')
		if length > maxElementLength {
			return 0, errors.Errorf("readLength error: element length %d over limit", length)
		}
	}
}

func splitElement(text string) (*Element, error) {
	if !gjson.Valid(text) {
		return nil, errors.New("splitElement error: element is not valid json")
	}
	element := gjson.Parse(text)
	for _, kind := range elementKinds {
		if inner := element.Get(string(kind)); inner.Exists() {
			return &Element{Kind: kind, JSON: inner.Raw}, nil
		}
	}
	return nil, errors.New("splitElement error: element has no recognized envelope key")
}

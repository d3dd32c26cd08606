// Package bundle decodes the portable bundle format, a stream of
// JSON-encoded elements holding queries and documents exported from the
// backend, into the local database client's model. Decoding never panics
// on malformed input: failures accumulate on a jsonr.Reader and the caller
// checks Ok once per element.
package bundle

import (
	"time"

	"github.com/tidwall/gjson"

	"firebundle/bundle/jsonr"
	"firebundle/model"
	"firebundle/remote"
)

// Serializer turns bundle element JSON into domain objects. It holds no
// mutable state, so one Serializer serves concurrent decodes as long as
// each call gets its own Reader.
type Serializer struct {
	rpc *remote.Serializer
}

func NewSerializer(rpc *remote.Serializer) *Serializer {
	return &Serializer{rpc: rpc}
}

func parse(r *jsonr.Reader, text string) (gjson.Result, bool) {
	if !gjson.Valid(text) {
		r.Fail("Failed to parse string into json: " + text)
		return gjson.Result{}, false
	}
	return gjson.Parse(text), true
}

// DecodeMetadata decodes a bundle's metadata element. The result is only
// meaningful while r.Ok() holds.
func (s *Serializer) DecodeMetadata(r *jsonr.Reader, text string) Metadata {
	metadata, ok := parse(r, text)
	if !ok {
		return Metadata{}
	}

	return Metadata{
		ID:             r.RequireString("id", metadata),
		Version:        jsonr.RequireInt[uint32](r, "version", metadata),
		CreateTime:     decodeSnapshotVersion(r, r.Require("createTime", metadata)),
		TotalDocuments: jsonr.RequireInt[uint32](r, "totalDocuments", metadata),
		TotalBytes:     jsonr.RequireInt[uint64](r, "totalBytes", metadata),
	}
}

// DecodeNamedQuery decodes a named query element.
func (s *Serializer) DecodeNamedQuery(r *jsonr.Reader, text string) NamedQuery {
	namedQuery, ok := parse(r, text)
	if !ok {
		return NamedQuery{}
	}

	return NamedQuery{
		Name:     r.RequireString("name", namedQuery),
		Query:    s.decodeQuery(r, r.Require("bundledQuery", namedQuery)),
		ReadTime: decodeSnapshotVersion(r, r.Require("readTime", namedQuery)),
	}
}

// DecodeDocumentMetadata decodes a document metadata element.
func (s *Serializer) DecodeDocumentMetadata(r *jsonr.Reader, text string) DocumentMetadata {
	documentMetadata, ok := parse(r, text)
	if !ok {
		return DocumentMetadata{}
	}

	path := s.decodeName(r, r.Require("name", documentMetadata))
	// the key constructor enforces its own invariants, so a malformed name
	// must never reach it
	if !r.Ok() {
		return DocumentMetadata{}
	}
	key, err := model.NewDocumentKey(path)
	if err != nil {
		r.SetErr(err)
		return DocumentMetadata{}
	}

	readTime := decodeSnapshotVersion(r, r.Require("readTime", documentMetadata))
	exists := r.OptionalBool("exists", documentMetadata)

	queries := make([]string, 0)
	for _, query := range r.RequireArray("queries", documentMetadata) {
		if query.Type != gjson.String {
			r.Fail("Query name should be encoded as string")
			return DocumentMetadata{}
		}
		queries = append(queries, query.Str)
	}

	return DocumentMetadata{
		Key:      key,
		ReadTime: readTime,
		Exists:   exists,
		Queries:  queries,
	}
}

// DecodeDocument decodes a document element into a synced document
// snapshot.
func (s *Serializer) DecodeDocument(r *jsonr.Reader, text string) Document {
	document, ok := parse(r, text)
	if !ok {
		return Document{}
	}

	path := s.decodeName(r, r.Require("name", document))
	if !r.Ok() {
		return Document{}
	}
	key, err := model.NewDocumentKey(path)
	if err != nil {
		r.SetErr(err)
		return Document{}
	}

	updateTime := decodeSnapshotVersion(r, r.Require("updateTime", document))
	value := s.decodeMapValue(r, document)

	return Document{
		Document: model.Document{
			Key:     key,
			Version: updateTime,
			Value:   value,
			State:   model.DocumentStateSynced,
		},
	}
}

// decodeName validates a full resource name against the local database and
// strips the projects/{p}/databases/{d}/documents prefix.
func (s *Serializer) decodeName(r *jsonr.Reader, name gjson.Result) model.ResourcePath {
	if name.Type != gjson.String {
		r.Fail("Document name is not a string.")
		return model.ResourcePath{}
	}
	path, err := model.ResourcePathFromString(name.Str)
	if err != nil {
		r.SetErr(err)
		return model.ResourcePath{}
	}
	if !s.rpc.IsLocalResourceName(path) {
		r.Fail("Resource name is not valid for current instance: " + path.CanonicalString())
		return model.ResourcePath{}
	}
	return path.PopFirst(5)
}

func decodeSnapshotVersion(r *jsonr.Reader, version gjson.Result) model.SnapshotVersion {
	return model.NewSnapshotVersion(decodeTimestamp(r, version))
}

// decodeTimestamp accepts either an RFC 3339 string or an object with
// integer seconds and nanos.
func decodeTimestamp(r *jsonr.Reader, version gjson.Result) time.Time {
	if version.Type == gjson.String {
		parsed, err := time.Parse(time.RFC3339Nano, version.Str)
		if err != nil {
			r.Fail("Parsing timestamp failed with error: " + err.Error())
			return time.Time{}
		}
		result, err := model.TimestampFromSecondsNanos(parsed.Unix(), int32(parsed.Nanosecond()))
		if err != nil {
			r.SetErr(err)
			return time.Time{}
		}
		return result
	}

	seconds := jsonr.RequireInt[int64](r, "seconds", version)
	nanos := jsonr.RequireInt[int32](r, "nanos", version)
	result, err := model.TimestampFromSecondsNanos(seconds, nanos)
	if err != nil {
		r.SetErr(err)
		return time.Time{}
	}
	return result
}

package bundle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"firebundle/bundle/jsonr"
	"firebundle/core"
	"firebundle/model"
	"firebundle/remote"
)

func testSerializer() *Serializer {
	return NewSerializer(remote.NewSerializer(model.DatabaseID{
		ProjectID:  "p",
		DatabaseID: "d",
	}))
}

func version(seconds int64, nanos int32) model.SnapshotVersion {
	return model.NewSnapshotVersion(time.Unix(seconds, int64(nanos)))
}

func TestDecodeMetadata(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	metadata := s.DecodeMetadata(
		&r,
		`{"id":"b1","version":1,"createTime":{"seconds":100,"nanos":0},"totalDocuments":3,"totalBytes":1000}`,
	)
	assert.True(t, r.Ok())
	assert.Equal(
		t,
		Metadata{
			ID:             "b1",
			Version:        1,
			CreateTime:     version(100, 0),
			TotalDocuments: 3,
			TotalBytes:     1000,
		},
		metadata,
	)
}

func TestDecodeMetadata_KeyOrderAndStringNumbers(t *testing.T) {
	s := testSerializer()

	// numeric fields accept their decimal-string form, and key order never
	// matters
	r := jsonr.Reader{}
	metadata := s.DecodeMetadata(
		&r,
		`{"totalBytes":"1000","createTime":{"nanos":"0","seconds":"100"},"id":"b1","totalDocuments":"3","version":"1"}`,
	)
	assert.True(t, r.Ok())

	r2 := jsonr.Reader{}
	expected := s.DecodeMetadata(
		&r2,
		`{"id":"b1","version":1,"createTime":{"seconds":100,"nanos":0},"totalDocuments":3,"totalBytes":1000}`,
	)
	assert.True(t, r2.Ok())
	assert.Equal(t, expected, metadata)
}

func TestDecodeMetadata_Failures(t *testing.T) {
	s := testSerializer()
	invalidValues := map[string]string{
		"not json":        `this is not json`,
		"missing id":      `{"version":1,"createTime":{"seconds":100,"nanos":0},"totalDocuments":3,"totalBytes":1000}`,
		"bad version":     `{"id":"b1","version":"abc","createTime":{"seconds":100,"nanos":0},"totalDocuments":3,"totalBytes":1000}`,
		"bad create time": `{"id":"b1","version":1,"createTime":"gibberish","totalDocuments":3,"totalBytes":1000}`,
		"nanos range":     `{"id":"b1","version":1,"createTime":{"seconds":100,"nanos":2000000000},"totalDocuments":3,"totalBytes":1000}`,
	}
	for name, value := range invalidValues {
		r := jsonr.Reader{}
		s.DecodeMetadata(&r, value)
		assert.False(t, r.Ok(), name)
		assert.Error(t, r.Err(), name)
	}
}

const namedQueryText = `{
	"name": "rooms-query",
	"readTime": "2021-03-17T10:30:00Z",
	"bundledQuery": {
		"parent": "projects/p/databases/d/documents",
		"limitType": "LAST",
		"structuredQuery": {
			"from": [{"collectionId": "rooms"}],
			"where": {"fieldFilter": {
				"field": {"fieldPath": "seats"},
				"op": "GREATER_THAN_OR_EQUAL",
				"value": {"integerValue": "10"}
			}},
			"orderBy": [
				{"field": {"fieldPath": "seats"}, "direction": "DESCENDING"},
				{"field": {"fieldPath": "__name__"}}
			],
			"startAt": {"before": true, "values": [{"integerValue": "20"}]},
			"limit": 5
		}
	}
}`

func TestDecodeNamedQuery(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	namedQuery := s.DecodeNamedQuery(&r, namedQueryText)
	assert.True(t, r.Ok())

	assert.Equal(t, "rooms-query", namedQuery.Name)
	assert.Equal(t, version(1615977000, 0), namedQuery.ReadTime)
	assert.Equal(t, core.LimitTypeLast, namedQuery.Query.LimitType)

	target := namedQuery.Query.Target
	assert.Equal(t, "rooms", target.Path.CanonicalString())
	assert.Equal(t, "", target.CollectionGroup)
	assert.Equal(t, int32(5), target.Limit)

	assert.Len(t, target.Filters, 1)
	assert.Equal(t, "seats", target.Filters[0].Field.CanonicalString())
	assert.Equal(t, core.OperatorGreaterThanOrEqual, target.Filters[0].Op)
	assert.Equal(t, model.IntegerValue(10), target.Filters[0].Value)

	assert.Equal(
		t,
		[]core.OrderBy{
			{Field: model.NewFieldPath("seats"), Direction: core.DirectionDescending},
			{Field: model.NewFieldPath("__name__"), Direction: core.DirectionAscending},
		},
		target.OrderBys,
	)

	assert.NotNil(t, target.StartAt)
	assert.True(t, target.StartAt.Before)
	assert.Equal(t, []model.FieldValue{model.IntegerValue(20)}, target.StartAt.Position)
	assert.Nil(t, target.EndAt)
}

func TestDecodeNamedQuery_Defaults(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	namedQuery := s.DecodeNamedQuery(&r, `{
		"name": "q",
		"readTime": {"seconds": 100, "nanos": 0},
		"bundledQuery": {
			"parent": "projects/p/databases/d/documents",
			"structuredQuery": {
				"from": [{"collectionId": "rooms"}],
				"orderBy": [{"field": {"fieldPath": "__name__"}}]
			}
		}
	}`)
	assert.True(t, r.Ok())

	// no where clause, no limit, no limit type, no bounds
	target := namedQuery.Query.Target
	assert.Empty(t, target.Filters)
	assert.Equal(t, core.NoLimit, target.Limit)
	assert.Equal(t, core.LimitTypeFirst, namedQuery.Query.LimitType)
	assert.Nil(t, target.StartAt)
	assert.Nil(t, target.EndAt)
}

func TestDecodeNamedQuery_CollectionGroup(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	namedQuery := s.DecodeNamedQuery(&r, `{
		"name": "q",
		"readTime": {"seconds": 100, "nanos": 0},
		"bundledQuery": {
			"parent": "projects/p/databases/d/documents",
			"structuredQuery": {
				"from": [{"collectionId": "rooms", "allDescendants": true}],
				"orderBy": [{"field": {"fieldPath": "__name__"}}]
			}
		}
	}`)
	assert.True(t, r.Ok())

	target := namedQuery.Query.Target
	assert.Equal(t, "rooms", target.CollectionGroup)
	assert.True(t, target.Path.IsEmpty())
}

func TestDecodeNamedQuery_CompositeFilter(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	namedQuery := s.DecodeNamedQuery(&r, `{
		"name": "q",
		"readTime": {"seconds": 100, "nanos": 0},
		"bundledQuery": {
			"parent": "projects/p/databases/d/documents",
			"structuredQuery": {
				"from": [{"collectionId": "rooms"}],
				"where": {"compositeFilter": {
					"op": "AND",
					"filters": [
						{"fieldFilter": {
							"field": {"fieldPath": "seats"},
							"op": "GREATER_THAN",
							"value": {"integerValue": "10"}
						}},
						{"fieldFilter": {
							"field": {"fieldPath": "open"},
							"op": "EQUAL",
							"value": {"booleanValue": true}
						}}
					]
				}},
				"orderBy": [{"field": {"fieldPath": "__name__"}}]
			}
		}
	}`)
	assert.True(t, r.Ok())

	filters := namedQuery.Query.Target.Filters
	assert.Len(t, filters, 2)
	assert.Equal(t, core.OperatorGreaterThan, filters[0].Op)
	assert.Equal(t, core.OperatorEqual, filters[1].Op)
	assert.Equal(t, model.BooleanValue(true), filters[1].Value)
}

func TestDecodeNamedQuery_UnaryFilters(t *testing.T) {
	s := testSerializer()

	queryWithUnary := func(op string) string {
		return `{
			"name": "q",
			"readTime": {"seconds": 100, "nanos": 0},
			"bundledQuery": {
				"parent": "projects/p/databases/d/documents",
				"structuredQuery": {
					"from": [{"collectionId": "rooms"}],
					"where": {"unaryFilter": {"field": {"fieldPath": "score"}, "op": "` + op + `"}},
					"orderBy": [{"field": {"fieldPath": "__name__"}}]
				}
			}
		}`
	}

	r := jsonr.Reader{}
	namedQuery := s.DecodeNamedQuery(&r, queryWithUnary("IS_NAN"))
	assert.True(t, r.Ok())
	filter := namedQuery.Query.Target.Filters[0]
	assert.Equal(t, core.OperatorEqual, filter.Op)
	assert.Equal(t, model.TypeDouble, filter.Value.Kind)
	assert.True(t, math.IsNaN(filter.Value.Double))

	r = jsonr.Reader{}
	namedQuery = s.DecodeNamedQuery(&r, queryWithUnary("IS_NULL"))
	assert.True(t, r.Ok())
	assert.Equal(t, model.NullValue(), namedQuery.Query.Target.Filters[0].Value)

	r = jsonr.Reader{}
	namedQuery = s.DecodeNamedQuery(&r, queryWithUnary("IS_NOT_NAN"))
	assert.True(t, r.Ok())
	filter = namedQuery.Query.Target.Filters[0]
	assert.Equal(t, core.OperatorNotEqual, filter.Op)
	assert.True(t, math.IsNaN(filter.Value.Double))

	r = jsonr.Reader{}
	namedQuery = s.DecodeNamedQuery(&r, queryWithUnary("IS_NOT_NULL"))
	assert.True(t, r.Ok())
	filter = namedQuery.Query.Target.Filters[0]
	assert.Equal(t, core.OperatorNotEqual, filter.Op)
	assert.Equal(t, model.TypeNull, filter.Value.Kind)

	r = jsonr.Reader{}
	s.DecodeNamedQuery(&r, queryWithUnary("IS_WEIRD"))
	assert.False(t, r.Ok())
}

func TestDecodeNamedQuery_EmptyBoundCollapsesToNoBound(t *testing.T) {
	s := testSerializer()

	// a bound given as "values": [] decodes the same as no bound at all
	r := jsonr.Reader{}
	namedQuery := s.DecodeNamedQuery(&r, `{
		"name": "q",
		"readTime": {"seconds": 100, "nanos": 0},
		"bundledQuery": {
			"parent": "projects/p/databases/d/documents",
			"structuredQuery": {
				"from": [{"collectionId": "rooms"}],
				"orderBy": [{"field": {"fieldPath": "__name__"}}],
				"startAt": {"values": []}
			}
		}
	}`)
	assert.True(t, r.Ok())
	assert.Nil(t, namedQuery.Query.Target.StartAt)
}

func TestDecodeNamedQuery_Failures(t *testing.T) {
	s := testSerializer()

	query := func(structured string, envelope string) string {
		return `{
			"name": "q",
			"readTime": {"seconds": 100, "nanos": 0},
			"bundledQuery": {
				"parent": "projects/p/databases/d/documents",
				` + envelope + `
				"structuredQuery": {` + structured + `}
			}
		}`
	}
	base := `"from": [{"collectionId": "rooms"}], "orderBy": [{"field": {"fieldPath": "__name__"}}]`

	invalidValues := map[string]string{
		"select is unsupported": query(base+`, "select": {"fields": []}`, ""),
		"offset is unsupported": query(base+`, "offset": 5`, ""),
		"missing from":          query(`"orderBy": [{"field": {"fieldPath": "__name__"}}]`, ""),
		"two from clauses":      query(`"from": [{"collectionId": "a"}, {"collectionId": "b"}], "orderBy": []`, ""),
		"composite must be AND": query(
			base+`, "where": {"compositeFilter": {"op": "OR", "filters": []}}`, ""),
		"composite of unary filters": query(
			base+`, "where": {"compositeFilter": {"op": "AND", "filters": [
				{"unaryFilter": {"field": {"fieldPath": "a"}, "op": "IS_NAN"}}]}}`, ""),
		"where without filter": query(base+`, "where": {}`, ""),
		"unknown operator": query(
			base+`, "where": {"fieldFilter": {"field": {"fieldPath": "a"}, "op": "LIKE", "value": {"integerValue": "1"}}}`, ""),
		"bad direction":      query(`"from": [{"collectionId": "rooms"}], "orderBy": [{"field": {"fieldPath": "a"}, "direction": "SIDEWAYS"}]`, ""),
		"limit as string":    query(base+`, "limit": "5"`, ""),
		"bad limit type":     query(base, `"limitType": "MIDDLE",`),
		"foreign parent":     `{"name":"q","readTime":{"seconds":100,"nanos":0},"bundledQuery":{"parent":"projects/x/databases/d/documents","structuredQuery":{"from":[{"collectionId":"rooms"}],"orderBy":[]}}}`,
		"in needs array": query(
			base+`, "where": {"fieldFilter": {"field": {"fieldPath": "a"}, "op": "IN", "value": {"integerValue": "1"}}}`, ""),
	}
	for name, value := range invalidValues {
		r := jsonr.Reader{}
		s.DecodeNamedQuery(&r, value)
		assert.False(t, r.Ok(), name)
	}
}

func TestDecodeDocumentMetadata(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	metadata := s.DecodeDocumentMetadata(&r, `{
		"name": "projects/p/databases/d/documents/rooms/r1",
		"readTime": {"seconds": 100, "nanos": 5},
		"exists": true,
		"queries": ["q1", "q2", "q1"]
	}`)
	assert.True(t, r.Ok())

	assert.Equal(t, "rooms/r1", metadata.Key.String())
	assert.Equal(t, version(100, 5), metadata.ReadTime)
	assert.True(t, metadata.Exists)
	// duplicates and order are preserved as given
	assert.Equal(t, []string{"q1", "q2", "q1"}, metadata.Queries)
}

func TestDecodeDocumentMetadata_Failures(t *testing.T) {
	s := testSerializer()

	invalidValues := map[string]string{
		"foreign name": `{
			"name": "projects/x/databases/d/documents/rooms/r1",
			"readTime": {"seconds": 100, "nanos": 0},
			"queries": []
		}`,
		"name not a string": `{
			"name": 5,
			"readTime": {"seconds": 100, "nanos": 0},
			"queries": []
		}`,
		"collection name": `{
			"name": "projects/p/databases/d/documents/rooms",
			"readTime": {"seconds": 100, "nanos": 0},
			"queries": []
		}`,
		"non-string query name": `{
			"name": "projects/p/databases/d/documents/rooms/r1",
			"readTime": {"seconds": 100, "nanos": 0},
			"queries": ["q1", 2]
		}`,
	}
	for name, value := range invalidValues {
		r := jsonr.Reader{}
		s.DecodeDocumentMetadata(&r, value)
		assert.False(t, r.Ok(), name)
	}
}

func TestDecodeDocumentMetadata_ForeignNameMessage(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	s.DecodeDocumentMetadata(&r, `{
		"name": "projects/x/databases/d/documents/rooms/r1",
		"readTime": {"seconds": 100, "nanos": 0},
		"queries": []
	}`)
	assert.False(t, r.Ok())
	assert.Contains(t, r.Err().Error(), "projects/x/databases/d/documents/rooms/r1")
}

func TestDecodeDocument(t *testing.T) {
	s := testSerializer()

	r := jsonr.Reader{}
	document := s.DecodeDocument(&r, `{
		"name": "projects/p/databases/d/documents/rooms/r1",
		"updateTime": {"seconds": 100, "nanos": 0},
		"fields": {
			"title": {"stringValue": "conference"},
			"open": {"booleanValue": true},
			"seats": {"integerValue": "12"},
			"rating": {"doubleValue": 4.5},
			"none": {"nullValue": null},
			"since": {"timestampValue": "2021-03-17T10:30:00Z"},
			"icon": {"bytesValue": "aGVsbG8="},
			"owner": {"referenceValue": "projects/p/databases/d/documents/users/u1"},
			"where": {"geoPointValue": {"latitude": 1.5, "longitude": -2.5}},
			"tags": {"arrayValue": {"values": [{"stringValue": "big"}, {"integerValue": "3"}]}},
			"extras": {"mapValue": {"fields": {"beamer": {"booleanValue": false}}}}
		}
	}`)
	assert.True(t, r.Ok())

	assert.Equal(t, "rooms/r1", document.Document.Key.String())
	assert.Equal(t, version(100, 0), document.Document.Version)
	assert.Equal(t, model.DocumentStateSynced, document.Document.State)

	value := document.Document.Value
	assert.Equal(t, model.TypeMap, value.Kind)
	assert.Equal(
		t,
		[]string{
			"title", "open", "seats", "rating", "none", "since",
			"icon", "owner", "where", "tags", "extras",
		},
		value.Map.Keys(),
	)

	field := func(name string) model.FieldValue {
		result, ok := value.Map.Get(name)
		assert.True(t, ok, name)
		return result
	}
	assert.Equal(t, model.StringValue("conference"), field("title"))
	assert.Equal(t, model.BooleanValue(true), field("open"))
	assert.Equal(t, model.IntegerValue(12), field("seats"))
	assert.Equal(t, model.DoubleValue(4.5), field("rating"))
	assert.Equal(t, model.NullValue(), field("none"))
	assert.Equal(t, model.TimestampValue(time.Unix(1615977000, 0)), field("since"))
	assert.Equal(t, model.BytesValue([]byte("hello")), field("icon"))
	assert.Equal(t, model.GeoPointValue(1.5, -2.5), field("where"))
	assert.Equal(
		t,
		model.ArrayValue([]model.FieldValue{model.StringValue("big"), model.IntegerValue(3)}),
		field("tags"),
	)

	owner := field("owner")
	assert.Equal(t, model.TypeReference, owner.Kind)
	assert.Equal(t, "users/u1", owner.Reference.Key.String())

	extras := field("extras")
	assert.Equal(t, model.TypeMap, extras.Kind)
	beamer, ok := extras.Map.Get("beamer")
	assert.True(t, ok)
	assert.Equal(t, model.BooleanValue(false), beamer)
}

func TestDecodeDocument_Failures(t *testing.T) {
	s := testSerializer()

	document := func(fields string) string {
		return `{
			"name": "projects/p/databases/d/documents/rooms/r1",
			"updateTime": {"seconds": 100, "nanos": 0},
			"fields": {` + fields + `}
		}`
	}

	invalidValues := map[string]string{
		"malformed base64":  document(`"icon": {"bytesValue": "####"}`),
		"foreign reference": document(`"owner": {"referenceValue": "projects/x/databases/d/documents/users/u1"}`),
		"unknown value key": document(`"odd": {"complexValue": 5}`),
		"boolean wrong type": document(`"open": {"booleanValue": "yes"}`),
		"value not an object": document(`"odd": 5`),
		"missing fields": `{
			"name": "projects/p/databases/d/documents/rooms/r1",
			"updateTime": {"seconds": 100, "nanos": 0}
		}`,
		"foreign document": `{
			"name": "projects/x/databases/d/documents/rooms/r1",
			"updateTime": {"seconds": 100, "nanos": 0},
			"fields": {}
		}`,
	}
	for name, value := range invalidValues {
		r := jsonr.Reader{}
		s.DecodeDocument(&r, value)
		assert.False(t, r.Ok(), name)
	}
}

package bundle

import (
	"encoding/base64"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"firebundle/bundle/jsonr"
	"firebundle/ds"
	"firebundle/model"
)

// decodeValue dispatches on which single variant key the value object
// carries. Exactly one recognized key must be present.
func (s *Serializer) decodeValue(r *jsonr.Reader, value gjson.Result) model.FieldValue {
	if !value.IsObject() {
		r.Fail("'value' is not encoded as JSON object")
		return model.FieldValue{}
	}

	switch {
	case value.Get("nullValue").Exists():
		return model.NullValue()
	case value.Get("booleanValue").Exists():
		boolean := value.Get("booleanValue")
		if boolean.Type != gjson.True && boolean.Type != gjson.False {
			r.Fail("'booleanValue' is not encoded as a valid boolean")
			return model.FieldValue{}
		}
		return model.BooleanValue(boolean.Bool())
	case value.Get("integerValue").Exists():
		return model.IntegerValue(jsonr.RequireInt[int64](r, "integerValue", value))
	case value.Get("doubleValue").Exists():
		return model.DoubleValue(r.RequireDouble("doubleValue", value))
	case value.Get("timestampValue").Exists():
		return model.TimestampValue(decodeTimestamp(r, value.Get("timestampValue")))
	case value.Get("stringValue").Exists():
		return model.StringValue(r.RequireString("stringValue", value))
	case value.Get("bytesValue").Exists():
		return decodeBytesValue(r, r.RequireString("bytesValue", value))
	case value.Get("referenceValue").Exists():
		return s.decodeReferenceValue(r, r.RequireString("referenceValue", value))
	case value.Get("geoPointValue").Exists():
		return decodeGeoPointValue(r, value.Get("geoPointValue"))
	case value.Get("arrayValue").Exists():
		return s.decodeArrayValue(r, value.Get("arrayValue"))
	case value.Get("mapValue").Exists():
		return s.decodeMapValue(r, value.Get("mapValue"))
	}

	r.Fail("Failed to decode value, no type is recognized")
	return model.FieldValue{}
}

// decodeMapValue reads a {"fields": {...}} container, preserving field
// order as it appears in the JSON text.
func (s *Serializer) decodeMapValue(r *jsonr.Reader, mapJSON gjson.Result) model.FieldValue {
	if !mapJSON.IsObject() || !mapJSON.Get("fields").Exists() {
		r.Fail("mapValue is not a valid map")
		return model.FieldValue{}
	}
	fields := mapJSON.Get("fields")
	if !fields.IsObject() {
		r.Fail("mapValue's 'fields' is not a valid map")
		return model.FieldValue{}
	}

	values := ds.NewLinkedHashMap[string, model.FieldValue]()
	fields.ForEach(func(key gjson.Result, value gjson.Result) bool {
		values.Put(key.Str, s.decodeValue(r, value))
		return true
	})
	return model.MapValue(values)
}

func (s *Serializer) decodeArrayValue(r *jsonr.Reader, arrayJSON gjson.Result) model.FieldValue {
	values := lo.Map(
		r.RequireArray("values", arrayJSON),
		func(value gjson.Result, _ int) model.FieldValue {
			return s.decodeValue(r, value)
		},
	)
	if !r.Ok() {
		return model.FieldValue{}
	}
	return model.ArrayValue(values)
}

func (s *Serializer) decodeReferenceValue(r *jsonr.Reader, name string) model.FieldValue {
	// name is only trustworthy while the reader is still ok
	if !r.Ok() {
		return model.FieldValue{}
	}
	return s.rpc.DecodeReference(r, name)
}

func decodeBytesValue(r *jsonr.Reader, encoded string) model.FieldValue {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		r.Fail("Failed to decode bytesValue string into binary form")
		return model.FieldValue{}
	}
	return model.BytesValue(decoded)
}

// decodeGeoPointValue defaults missing coordinates to zero, matching the
// backend's proto3 JSON omission of zero fields.
func decodeGeoPointValue(r *jsonr.Reader, geoJSON gjson.Result) model.FieldValue {
	latitude := 0.0
	if geoJSON.Get("latitude").Exists() {
		latitude = r.RequireDouble("latitude", geoJSON)
	}
	longitude := 0.0
	if geoJSON.Get("longitude").Exists() {
		longitude = r.RequireDouble("longitude", geoJSON)
	}
	return model.GeoPointValue(latitude, longitude)
}

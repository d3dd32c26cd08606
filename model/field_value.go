package model

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/iancoleman/orderedmap"
	"github.com/samber/lo"

	"firebundle/ds"
)

// ValueKind tags the variant a FieldValue holds. The zero value is
// TypeInvalid, so a default-constructed FieldValue is the "not a value"
// sentinel.
type ValueKind int

const (
	TypeInvalid ValueKind = iota
	TypeNull
	TypeBoolean
	TypeInteger
	TypeDouble
	TypeTimestamp
	TypeString
	TypeBytes
	TypeReference
	TypeGeoPoint
	TypeArray
	TypeMap
)

type (
	// GeoPoint is a latitude/longitude pair in degrees.
	GeoPoint struct {
		Latitude  float64
		Longitude float64
	}

	// Reference points at a document in a specific database.
	Reference struct {
		Database DatabaseID
		Key      DocumentKey
	}

	// FieldValue is the tagged union over everything a document field can
	// hold. Only the member selected by Kind is meaningful; the others stay
	// at their zero values.
	FieldValue struct {
		Kind      ValueKind
		Boolean   bool
		Integer   int64
		Double    float64
		Time      time.Time
		Str       string
		Bytes     []byte
		Reference Reference
		GeoPoint  GeoPoint
		Array     []FieldValue
		Map       *ds.LinkedHashMap[string, FieldValue]
	}
)

func (r Reference) String() string {
	return fmt.Sprintf(
		"projects/%s/databases/%s/documents/%s",
		r.Database.ProjectID, r.Database.DatabaseID, r.Key,
	)
}

func NullValue() FieldValue {
	return FieldValue{Kind: TypeNull}
}

func NanValue() FieldValue {
	return FieldValue{Kind: TypeDouble, Double: math.NaN()}
}

func BooleanValue(value bool) FieldValue {
	return FieldValue{Kind: TypeBoolean, Boolean: value}
}

func IntegerValue(value int64) FieldValue {
	return FieldValue{Kind: TypeInteger, Integer: value}
}

func DoubleValue(value float64) FieldValue {
	return FieldValue{Kind: TypeDouble, Double: value}
}

func TimestampValue(value time.Time) FieldValue {
	return FieldValue{Kind: TypeTimestamp, Time: value.UTC()}
}

func StringValue(value string) FieldValue {
	return FieldValue{Kind: TypeString, Str: value}
}

func BytesValue(value []byte) FieldValue {
	return FieldValue{Kind: TypeBytes, Bytes: value}
}

func ReferenceValue(database DatabaseID, key DocumentKey) FieldValue {
	return FieldValue{Kind: TypeReference, Reference: Reference{Database: database, Key: key}}
}

func GeoPointValue(latitude float64, longitude float64) FieldValue {
	return FieldValue{Kind: TypeGeoPoint, GeoPoint: GeoPoint{Latitude: latitude, Longitude: longitude}}
}

func ArrayValue(values []FieldValue) FieldValue {
	return FieldValue{Kind: TypeArray, Array: values}
}

func MapValue(values *ds.LinkedHashMap[string, FieldValue]) FieldValue {
	return FieldValue{Kind: TypeMap, Map: values}
}

// IsSet reports whether the value holds an actual variant.
func (r FieldValue) IsSet() bool {
	return r.Kind != TypeInvalid
}

// Interface renders the value as plain JSON-marshalable Go data. Map kinds
// become ordered maps so field order survives serialization.
func (r FieldValue) Interface() any {
	switch r.Kind {
	case TypeNull:
		return nil
	case TypeBoolean:
		return r.Boolean
	case TypeInteger:
		return r.Integer
	case TypeDouble:
		return r.Double
	case TypeTimestamp:
		return r.Time.Format(time.RFC3339Nano)
	case TypeString:
		return r.Str
	case TypeBytes:
		return base64.StdEncoding.EncodeToString(r.Bytes)
	case TypeReference:
		return r.Reference.String()
	case TypeGeoPoint:
		point := orderedmap.New()
		point.Set("latitude", r.GeoPoint.Latitude)
		point.Set("longitude", r.GeoPoint.Longitude)
		return point
	case TypeArray:
		return lo.Map(
			r.Array,
			func(value FieldValue, _ int) any {
				return value.Interface()
			},
		)
	case TypeMap:
		fields := orderedmap.New()
		for _, key := range r.Map.Keys() {
			value, _ := r.Map.Get(key)
			fields.Set(key, value.Interface())
		}
		return fields
	}
	return nil
}

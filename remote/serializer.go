// Package remote validates resource names against the locally configured
// database instance and decodes reference values, the way the wire
// protocol layer does it.
package remote

import (
	"go.einride.tech/aip/resourcename"

	"firebundle/bundle/jsonr"
	"firebundle/model"
)

// Serializer is read-only after construction and safe for concurrent use.
type Serializer struct {
	database      model.DatabaseID
	documentsRoot string
}

func NewSerializer(database model.DatabaseID) *Serializer {
	return &Serializer{
		database: database,
		documentsRoot: resourcename.Sprint(
			"projects/{project}/databases/{database}/documents",
			database.ProjectID, database.DatabaseID,
		),
	}
}

func (r *Serializer) DatabaseID() model.DatabaseID {
	return r.database
}

// IsLocalResourceName reports whether path lies at or under this
// database's documents root.
func (r *Serializer) IsLocalResourceName(path model.ResourcePath) bool {
	name := path.CanonicalString()
	return name == r.documentsRoot || resourcename.HasParent(name, r.documentsRoot)
}

// DecodeReference resolves a full resource name into a reference value.
// Failures land on the reader; the placeholder result must not be trusted
// afterwards.
func (r *Serializer) DecodeReference(reader *jsonr.Reader, name string) model.FieldValue {
	path, err := model.ResourcePathFromString(name)
	if err != nil {
		reader.SetErr(err)
		return model.FieldValue{}
	}
	if !r.IsLocalResourceName(path) {
		reader.Fail("Resource name is not valid for current instance: " + path.CanonicalString())
		return model.FieldValue{}
	}
	key, err := model.NewDocumentKey(path.PopFirst(5))
	if err != nil {
		reader.SetErr(err)
		return model.FieldValue{}
	}
	return model.ReferenceValue(r.database, key)
}

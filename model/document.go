package model

// DocumentState describes how a document relates to what the server has
// acknowledged.
type DocumentState int

const (
	// DocumentStateSynced means the document's version matches the server.
	DocumentStateSynced DocumentState = iota
	// DocumentStateLocalMutations means unacknowledged local edits exist.
	DocumentStateLocalMutations
	// DocumentStateCommittedMutations means edits were acknowledged but not
	// yet observed in a consistent snapshot.
	DocumentStateCommittedMutations
)

// Document is one decoded document: its key, the version it was read at,
// and its content as a map value.
type Document struct {
	Key     DocumentKey
	Version SnapshotVersion
	Value   FieldValue
	State   DocumentState
}

package bundle

import (
	"firebundle/core"
	"firebundle/model"
)

type (
	// Metadata identifies a bundle and the consistency point it was built
	// at.
	Metadata struct {
		ID             string
		Version        uint32
		CreateTime     model.SnapshotVersion
		TotalDocuments uint32
		TotalBytes     uint64
	}

	// Query is a query saved in a bundle together with its limit behavior.
	Query struct {
		Target    core.Target
		LimitType core.LimitType
	}

	// NamedQuery is a bundled query addressable by name, with the time its
	// results were read at.
	NamedQuery struct {
		Name     string
		Query    Query
		ReadTime model.SnapshotVersion
	}

	// DocumentMetadata describes one bundled document: whether it exists
	// and which named queries it belongs to. Query order and duplicates
	// are preserved as given.
	DocumentMetadata struct {
		Key      model.DocumentKey
		ReadTime model.SnapshotVersion
		Exists   bool
		Queries  []string
	}

	// Document wraps one decoded document, already tagged as synced with
	// the server.
	Document struct {
		Document model.Document
	}
)

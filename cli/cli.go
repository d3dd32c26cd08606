package cli

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/iancoleman/orderedmap"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.einride.tech/aip/resourcename"

	"firebundle/bundle"
	"firebundle/bundle/jsonr"
	"firebundle/ds"
	"firebundle/model"
	"firebundle/remote"
)

type (
	Args struct {
		Inspect *InspectCmd `arg:"subcommand:inspect"`
		Dump    *DumpCmd    `arg:"subcommand:dump"`
	}
	InspectCmd struct {
		From     string `arg:"required" help:"path to the bundle file" placeholder:"bundle.txt"`
		Database string `help:"database the bundle was exported from" placeholder:"projects/p/databases/d" default:"projects/demo/databases/(default)"`
	}
	DumpCmd struct {
		From     string `arg:"required" help:"path to the bundle file" placeholder:"bundle.txt"`
		Database string `help:"database the bundle was exported from" placeholder:"projects/p/databases/d" default:"projects/demo/databases/(default)"`
	}
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"A CLI utility to look inside bundle files:",
			"portable snapshots of queries and documents exported from the backend,",
			"framed as length-prefixed JSON elements.",
		},
		"\n",
	)
	des += "\n"
	return des
}

type contents struct {
	Metadata         bundle.Metadata
	NamedQueries     []bundle.NamedQuery
	DocumentMetadata []bundle.DocumentMetadata
	Documents        []bundle.Document
}

func parseDatabase(name string) (model.DatabaseID, error) {
	var project, database string
	err := resourcename.Sscan(name, "projects/{project}/databases/{database}", &project, &database)
	if err != nil {
		return model.DatabaseID{}, errors.Wrap(err, "parseDatabase error")
	}
	return model.DatabaseID{ProjectID: project, DatabaseID: database}, nil
}

func decodeFile(from string, database string) (*contents, error) {
	db, err := parseDatabase(database)
	if err != nil {
		return nil, errors.Wrap(err, "decodeFile error")
	}

	file, err := os.Open(from)
	if err != nil {
		return nil, errors.Wrap(err, "decodeFile error")
	}
	defer file.Close()

	serializer := bundle.NewSerializer(remote.NewSerializer(db))
	reader := bundle.NewReader(file)
	result := contents{}

	for index := 0; ; index++ {
		element, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decodeFile error: element %d", index)
		}

		r := jsonr.Reader{}
		switch element.Kind {
		case bundle.ElementMetadata:
			result.Metadata = serializer.DecodeMetadata(&r, element.JSON)
		case bundle.ElementNamedQuery:
			result.NamedQueries = append(result.NamedQueries, serializer.DecodeNamedQuery(&r, element.JSON))
		case bundle.ElementDocumentMetadata:
			result.DocumentMetadata = append(result.DocumentMetadata, serializer.DecodeDocumentMetadata(&r, element.JSON))
		case bundle.ElementDocument:
			result.Documents = append(result.Documents, serializer.DecodeDocument(&r, element.JSON))
		}
		if !r.Ok() {
			return nil, errors.Wrapf(r.Err(), "decodeFile error: element %d", index)
		}
	}

	return &result, nil
}

type metadataSummary struct {
	ID             string `json:"id"`
	Version        uint32 `json:"version"`
	CreateTime     string `json:"create_time"`
	TotalDocuments uint32 `json:"total_documents"`
	TotalBytes     uint64 `json:"total_bytes"`
}

func StartInspecting(from string, database string) error {
	result, err := decodeFile(from, database)
	if err != nil {
		return errors.Wrap(err, "StartInspecting error")
	}

	println("metadata: " + ds.DumpJSON(metadataSummary{
		ID:             result.Metadata.ID,
		Version:        result.Metadata.Version,
		CreateTime:     result.Metadata.CreateTime.Time.String(),
		TotalDocuments: result.Metadata.TotalDocuments,
		TotalBytes:     result.Metadata.TotalBytes,
	}))
	queryNames := lo.Map(
		result.NamedQueries,
		func(namedQuery bundle.NamedQuery, _ int) string {
			return namedQuery.Name
		},
	)
	println("named queries: " + ds.DumpJSON(queryNames))
	for _, documentMetadata := range result.DocumentMetadata {
		println("document: " + documentMetadata.Key.String() + " queries: " + ds.DumpJSON(documentMetadata.Queries))
	}
	return nil
}

func StartDumping(from string, database string) error {
	result, err := decodeFile(from, database)
	if err != nil {
		return errors.Wrap(err, "StartDumping error")
	}

	documents := orderedmap.New()
	for _, document := range result.Documents {
		documents.Set(document.Document.Key.String(), document.Document.Value.Interface())
	}
	bs, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return errors.Wrap(err, "StartDumping error")
	}
	println(string(bs))
	return nil
}

func Start() {
	args := Args{}
	parser := arg.MustParse(&args)

	switch {
	case args.Inspect != nil:
		if err := StartInspecting(args.Inspect.From, args.Inspect.Database); err != nil {
			println("Error happened inspecting bundle file: " + err.Error())
			os.Exit(1)
		}
	case args.Dump != nil:
		if err := StartDumping(args.Dump.From, args.Dump.Database); err != nil {
			println("Error happened dumping bundle file: " + err.Error())
			os.Exit(1)
		}
	default:
		parser.WriteHelp(os.Stdout)
	}
}

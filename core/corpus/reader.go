// Package corpus reads labelled documents and writes template-filling examples.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/siherrmann/timeliner/helper"
	"github.com/siherrmann/timeliner/model"
	"github.com/tidwall/gjson"
)

// ErrInvalidCorpus indicates an input that is not a JSON array of documents.
var ErrInvalidCorpus = errors.New("timeliner: invalid corpus")

// ReadOptions restricts which documents are returned.
type ReadOptions struct {
	// NumDocs keeps only the first NumDocs documents if positive.
	NumDocs int
	// DocIDs keeps only the listed documents if non-empty.
	DocIDs []string
}

// DocumentError records a document that could not be constructed.
type DocumentError struct {
	Index int
	DocID string
	Err   error
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("document %d (%s): %v", e.Index, e.DocID, e.Err)
}

func (e DocumentError) Unwrap() error {
	return e.Err
}

// ReadResult holds the constructed documents and the rejected ones.
type ReadResult struct {
	Documents []*model.Document
	Rejected  []DocumentError
}

// ReadDocuments reads a JSON array of documents from path.
func ReadDocuments(path string, opts ReadOptions) (*ReadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read corpus", err)
	}
	return ParseDocuments(data, opts)
}

// ParseDocuments constructs every element of a JSON array on its own.
// Elements failing to decode or validate are collected in Rejected and skipped.
func ParseDocuments(data []byte, opts ReadOptions) (*ReadResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidCorpus)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of documents, got %s", ErrInvalidCorpus, root.Type)
	}

	wanted := mapset.NewThreadUnsafeSet(opts.DocIDs...)
	result := &ReadResult{}

	index := 0
	root.ForEach(func(_, element gjson.Result) bool {
		defer func() { index++ }()

		docID := element.Get("doc_id").String()
		if wanted.Cardinality() > 0 && !wanted.Contains(docID) {
			return true
		}

		doc, err := decodeDocument(element.Raw)
		if err != nil {
			result.Rejected = append(result.Rejected, DocumentError{Index: index, DocID: docID, Err: err})
		} else {
			result.Documents = append(result.Documents, doc)
		}

		if wanted.Cardinality() > 0 && len(result.Documents)+len(result.Rejected) == wanted.Cardinality() {
			return false
		}
		return opts.NumDocs <= 0 || len(result.Documents) < opts.NumDocs
	})

	return result, nil
}

func decodeDocument(raw string) (*model.Document, error) {
	var rd model.RawDocument
	if err := json.Unmarshal([]byte(raw), &rd); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMalformedDocument, err)
	}
	return model.NewDocument(rd)
}

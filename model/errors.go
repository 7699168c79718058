package model

import "errors"

// Construction errors. A document failing with one of these is never processed.
var (
	// ErrMalformedDocument indicates a document that violates the structural invariants.
	ErrMalformedDocument = errors.New("timeliner: malformed document")

	// ErrInvalidMention indicates a mention with a bad type, source, string or span.
	ErrInvalidMention = errors.New("timeliner: invalid mention")
)

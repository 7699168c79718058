// Package format turns validated documents into template-filling examples.
package format

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/siherrmann/timeliner/model"
)

var (
	// ErrFaultyDCT marks a document whose creation time equals model.MinDate.
	// The document is skipped, the batch continues.
	ErrFaultyDCT = errors.New("timeliner: faulty dct")

	// ErrOffsetMismatch marks an example whose fillers do not point at their strings.
	ErrOffsetMismatch = errors.New("timeliner: filler offset mismatch")
)

const (
	headerStart = "Story begins: "
	headerEnd   = ". Story ends: "
)

// Shift maps field-local mention offsets into the reconstructed text.
// Title is only defined when HasTitle is set.
type Shift struct {
	Title    int
	Body     int
	HasTitle bool
}

// For returns the shift applying to mentions from source.
func (s Shift) For(source model.Source) int {
	if source == model.SourceTitle {
		return s.Title
	}
	return s.Body
}

// Header returns the anchor line prepended to every document.
func Header(dct string) string {
	return headerStart + model.MinDate + headerEnd + dct + "."
}

// FormatText builds the lower-cased document text: header, stripped title
// (if any) and stripped body, each on its own line.
func FormatText(doc *model.Document) (string, Shift, error) {
	if doc.DCT == model.MinDate {
		return "", Shift{}, fmt.Errorf("%w: document %s has faulty DCT %s", ErrFaultyDCT, doc.DocID, doc.DCT)
	}

	var shift Shift
	var sb strings.Builder

	header := Header(doc.DCT)
	sb.WriteString(header)
	length := utf8.RuneCountInString(header)

	if title := strings.TrimSpace(doc.Title); title != "" {
		// +1 for the newline, minus the leading whitespace dropped by the strip
		shift.Title = length - leadingSpace(doc.Title) + 1
		shift.HasTitle = true
		sb.WriteString("\n")
		sb.WriteString(title)
		length += 1 + utf8.RuneCountInString(title)
	}

	shift.Body = length - leadingSpace(doc.Body) + 1
	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(doc.Body))

	return strings.ToLower(sb.String()), shift, nil
}

func leadingSpace(s string) int {
	return utf8.RuneCountInString(s) - utf8.RuneCountInString(strings.TrimLeftFunc(s, unicode.IsSpace))
}

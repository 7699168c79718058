package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/timeliner/model"
)

// FormatEntityMentions re-offsets mentions into the reconstructed text.
// Strings are lower-cased to match the text.
func FormatEntityMentions(mentions []model.Mention, shift Shift) model.Slot {
	slot := make(model.Slot, 0, len(mentions))
	for _, m := range mentions {
		slot = append(slot, model.Filler{
			String: strings.ToLower(m.String),
			Offset: m.Span.Start + shift.For(m.Source),
		})
	}
	return slot
}

// Anchors are the synthetic story start and document creation time fillers.
type Anchors struct {
	Min model.Filler
	DCT model.Filler
}

// NewAnchors returns the anchors for a document with the given creation time.
// Both point into the header built by Header.
func NewAnchors(dct string) Anchors {
	minOffset := utf8.RuneCountInString(headerStart)
	return Anchors{
		Min: model.Filler{String: model.MinDate, Offset: minOffset},
		DCT: model.Filler{
			String: strings.ToLower(dct),
			Offset: minOffset + utf8.RuneCountInString(model.MinDate+headerEnd),
		},
	}
}

// VerifyOffsets checks that every filler of the example is found at its offset.
func VerifyOffsets(ex *model.Example) error {
	text := []rune(ex.DocText)
	for _, tmpl := range ex.Templates {
		for _, slot := range []model.Slot{tmpl.Medication, tmpl.StartMin, tmpl.StartMax, tmpl.StopMin, tmpl.StopMax} {
			for _, f := range slot {
				end := f.Offset + utf8.RuneCountInString(f.String)
				if f.Offset < 0 || end > len(text) || string(text[f.Offset:end]) != f.String {
					return fmt.Errorf("%w: document %s: %q at %d", ErrOffsetMismatch, ex.DocID, f.String, f.Offset)
				}
			}
		}
	}
	return nil
}

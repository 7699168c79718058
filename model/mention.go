package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// EntityType is the kind of entity a mention refers to.
type EntityType string

const (
	EntityTypeMedication EntityType = "med"
	EntityTypeDate       EntityType = "date"
	EntityTypeDuration   EntityType = "dur"
)

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeMedication, EntityTypeDate, EntityTypeDuration:
		return true
	}
	return false
}

// Source is the document field a mention was annotated in.
type Source int

const (
	SourceTitle Source = 0
	SourceBody  Source = 1
)

// Span is a half-open character range [Start, End) within a mention's source field.
// Offsets count characters (runes), not bytes.
type Span struct {
	Start int
	End   int
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// MarshalJSON encodes the span as [start, end].
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

// UnmarshalJSON decodes a span from [start, end].
func (s *Span) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("span must have exactly two offsets, got %d", len(pair))
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// Mention is one occurrence of a medication, date or duration phrase.
type Mention struct {
	Type      EntityType `json:"type"`
	EntityID  string     `json:"entity_id"`
	Source    Source     `json:"source"`
	Span      Span       `json:"span"`
	String    string     `json:"string"`
	MentionID string     `json:"mention_id,omitempty"`
	Info      Metadata   `json:"info,omitempty"`
}

var mentionFields = map[string]struct{}{
	"type":       {},
	"entity_id":  {},
	"source":     {},
	"span":       {},
	"string":     {},
	"mention_id": {},
	"info":       {},
}

// UnmarshalJSON decodes a mention. Unknown keys are folded into Info and
// the type is lower-cased.
func (m *Mention) UnmarshalJSON(data []byte) error {
	type mention Mention
	var decoded mention
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		if _, known := mentionFields[key.String()]; known {
			return true
		}
		if decoded.Info == nil {
			decoded.Info = Metadata{}
		}
		decoded.Info[key.String()] = value.Value()
		return true
	})

	decoded.Type = EntityType(strings.ToLower(string(decoded.Type)))
	*m = Mention(decoded)
	return nil
}

// Validate checks the mention on its own, without its document.
func (m Mention) Validate() error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: invalid entity type %q", ErrInvalidMention, m.Type)
	}
	if m.String == "" {
		return fmt.Errorf("%w: empty string for entity %s", ErrInvalidMention, m.EntityID)
	}
	if m.Source != SourceTitle && m.Source != SourceBody {
		return fmt.Errorf("%w: invalid source %d: must be 0 (title) or 1 (body)", ErrInvalidMention, m.Source)
	}
	if m.Span.Start < 0 || m.Span.End < 0 || m.Span.Start >= m.Span.End || utf8.RuneCountInString(m.String) != m.Span.Len() {
		return fmt.Errorf("%w: invalid span [%d %d] for %q", ErrInvalidMention, m.Span.Start, m.Span.End, m.String)
	}
	return nil
}

// runeSlice returns s[start:end] counted in runes. ok is false when the range is out of bounds.
func runeSlice(s string, start, end int) (sub string, ok bool) {
	if start < 0 || end < start {
		return "", false
	}
	runes := []rune(s)
	if end > len(runes) {
		return "", false
	}
	return string(runes[start:end]), true
}

package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// MinDate is the synthetic story start anchor. A document whose DCT equals it is faulty.
const MinDate = "0000-00-00"

// EntityGroups maps an entity id to its mentions ordered by (source, span start).
type EntityGroups map[string][]Mention

// IDs returns the entity ids in ascending order.
func (g EntityGroups) IDs() []string {
	return slices.Sorted(maps.Keys(g))
}

// GroupMentions groups mentions by entity id, orders every group by
// (source, span start) and assigns mention_0, mention_1, ... in that order.
// The input slice is not modified.
func GroupMentions(mentions []Mention) EntityGroups {
	groups := lo.GroupBy(mentions, func(m Mention) string {
		return m.EntityID
	})

	for _, group := range groups {
		slices.SortStableFunc(group, func(a, b Mention) int {
			if a.Source != b.Source {
				return int(a.Source) - int(b.Source)
			}
			return a.Span.Start - b.Span.Start
		})
		for i := range group {
			group[i].MentionID = fmt.Sprintf("mention_%d", i)
		}
	}

	return groups
}

// RawDocument is a document as found in the input corpus.
type RawDocument struct {
	DocID     string    `json:"doc_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DCT       string    `json:"dct"`
	Author    string    `json:"author"`
	Subreddit string    `json:"subreddit"`
	Meds      []Mention `json:"meds"`
	Dates     []Mention `json:"dates"`
	Durs      []Mention `json:"durs"`
	Labels    Labels    `json:"labels,omitempty"`
}

// Document is a validated, labelled timeline instance.
type Document struct {
	DocID     string       `json:"doc_id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	DCT       string       `json:"dct"`
	Author    string       `json:"author"`
	Subreddit string       `json:"subreddit"`
	Meds      EntityGroups `json:"meds"`
	Dates     EntityGroups `json:"dates"`
	Durs      EntityGroups `json:"durs"`
	Labels    Labels       `json:"labels,omitempty"`
}

// NewDocument groups and validates a raw document.
// Every failure wraps ErrMalformedDocument.
func NewDocument(raw RawDocument) (*Document, error) {
	if len(raw.Title) == 0 && len(raw.Body) == 0 {
		return nil, malformed(raw.DocID, "both title and body are empty")
	}
	if len(raw.Meds) == 0 {
		return nil, malformed(raw.DocID, "medication list cannot be empty")
	}

	doc := &Document{
		DocID:     raw.DocID,
		Title:     raw.Title,
		Body:      raw.Body,
		DCT:       raw.DCT,
		Author:    raw.Author,
		Subreddit: raw.Subreddit,
		Meds:      GroupMentions(raw.Meds),
		Dates:     GroupMentions(raw.Dates),
		Durs:      GroupMentions(raw.Durs),
		Labels:    raw.Labels,
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks the structural invariants of the document.
func (d *Document) Validate() error {
	if len(d.Title) == 0 && len(d.Body) == 0 {
		return malformed(d.DocID, "both title and body are empty")
	}
	if len(d.Meds) == 0 {
		return malformed(d.DocID, "medication list cannot be empty")
	}

	for _, typed := range d.typedEntities() {
		for _, entityID := range typed.groups.IDs() {
			if err := d.validateGroup(typed.entityType, entityID, typed.groups[entityID]); err != nil {
				return err
			}
		}
	}

	return d.validateLabels()
}

type typedGroups struct {
	entityType EntityType
	groups     EntityGroups
}

func (d *Document) typedEntities() []typedGroups {
	return []typedGroups{
		{EntityTypeMedication, d.Meds},
		{EntityTypeDate, d.Dates},
		{EntityTypeDuration, d.Durs},
	}
}

func (d *Document) validateGroup(entityType EntityType, entityID string, mentions []Mention) error {
	mentionIDs := mapset.NewThreadUnsafeSet[string]()

	for _, m := range mentions {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: document %s: %w", ErrMalformedDocument, d.DocID, err)
		}
		if m.Type != entityType {
			return malformed(d.DocID, fmt.Sprintf("entity %s has type %s, need to be of type %s", entityID, m.Type, entityType))
		}
		if m.EntityID != entityID {
			return malformed(d.DocID, fmt.Sprintf("misaligned entity %s in group %s", m.EntityID, entityID))
		}
		if !mentionIDs.Add(m.MentionID) {
			return malformed(d.DocID, fmt.Sprintf("non-unique mention id %s in entity %s", m.MentionID, entityID))
		}
		if err := d.validateAnchoring(m); err != nil {
			return err
		}
	}

	return nil
}

// validateAnchoring checks that the mention is found at its span in its source field.
// Both sides are compared lower-cased, the way they appear in the formatted text.
func (d *Document) validateAnchoring(m Mention) error {
	source := d.Body
	if m.Source == SourceTitle {
		if strings.TrimSpace(d.Title) == "" {
			return malformed(d.DocID, fmt.Sprintf("mention %q of %s references an empty title", m.String, m.EntityID))
		}
		source = d.Title
	}

	sub, ok := runeSlice(source, m.Span.Start, m.Span.End)
	if !ok || strings.ToLower(sub) != strings.ToLower(m.String) {
		return malformed(d.DocID, fmt.Sprintf("mention %q of %s does not match its source at [%d %d]", m.String, m.EntityID, m.Span.Start, m.Span.End))
	}

	return nil
}

func (d *Document) validateLabels() error {
	for _, medID := range slices.Sorted(maps.Keys(d.Labels)) {
		if _, ok := d.Meds[medID]; !ok {
			return malformed(d.DocID, fmt.Sprintf("labels reference unknown medication %s", medID))
		}

		seen := mapset.NewThreadUnsafeSet[string]()
		for _, dl := range d.Labels[medID] {
			if !seen.Add(dl.DateID) {
				return malformed(d.DocID, fmt.Sprintf("duplicate label for %s of medication %s", dl.DateID, medID))
			}
			if _, ok := d.Dates[dl.DateID]; !ok && dl.DateID != DCTKey {
				return malformed(d.DocID, fmt.Sprintf("labels of medication %s reference unknown date %s", medID, dl.DateID))
			}
			if !dl.Label.Valid() {
				return malformed(d.DocID, fmt.Sprintf("invalid label %q for %s of medication %s", dl.Label, dl.DateID, medID))
			}
		}
	}

	return nil
}

// String returns the indented JSON representation of the document.
func (d *Document) String() string {
	b, err := json.MarshalIndent(d, "", " ")
	if err != nil {
		return fmt.Sprintf("Document(%s)", d.DocID)
	}
	return string(b)
}

func malformed(docID, reason string) error {
	return fmt.Errorf("%w: document %s: %s", ErrMalformedDocument, docID, reason)
}

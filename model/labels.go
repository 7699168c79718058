package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// DCTKey is the label key standing for the document creation time.
const DCTKey = "DCT"

// Label relates a medication to a date entity or to the DCT.
type Label string

const (
	LabelBefore    Label = "before"
	LabelStart     Label = "start"
	LabelOn        Label = "on"
	LabelStop      Label = "stop"
	LabelAfter     Label = "after"
	LabelUncertain Label = "uncertain"
	LabelNoIntake  Label = "no_intake"
)

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelBefore, LabelStart, LabelOn, LabelStop, LabelAfter, LabelUncertain, LabelNoIntake:
		return true
	}
	return false
}

// DateLabel is the label of one medication towards one date entity (or DCTKey).
type DateLabel struct {
	DateID string
	Label  Label
}

// LabelSequence holds the labels of one medication in declared order.
// The declared order is the chronological order of the date entities.
type LabelSequence []DateLabel

// Get returns the label for dateID.
func (s LabelSequence) Get(dateID string) (Label, bool) {
	for _, dl := range s {
		if dl.DateID == dateID {
			return dl.Label, true
		}
	}
	return "", false
}

// Chronological returns the sequence with the DCT label moved to the front.
// All other labels keep their declared order.
func (s LabelSequence) Chronological() LabelSequence {
	ordered := make(LabelSequence, 0, len(s))
	for _, dl := range s {
		if dl.DateID == DCTKey {
			ordered = append(ordered, dl)
		}
	}
	for _, dl := range s {
		if dl.DateID != DCTKey {
			ordered = append(ordered, dl)
		}
	}
	return ordered
}

// UnmarshalJSON decodes a JSON object keeping the key order of the input.
func (s *LabelSequence) UnmarshalJSON(data []byte) error {
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("labels must be an object, got %s", result.Type)
	}

	var seq LabelSequence
	var err error
	result.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("label for %q must be a string", key.String())
			return false
		}
		seq = append(seq, DateLabel{DateID: key.String(), Label: Label(value.String())})
		return true
	})
	if err != nil {
		return err
	}

	*s = seq
	return nil
}

// MarshalJSON encodes the sequence as a JSON object in declared order.
func (s LabelSequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dl := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(dl.DateID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(string(dl.Label))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Labels maps a medication entity id to its label sequence.
type Labels map[string]LabelSequence

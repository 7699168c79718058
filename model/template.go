package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Filler is one [string, offset] role filler pointing into an example's doctext.
// Offset counts characters (runes).
type Filler struct {
	String string
	Offset int
}

// MarshalJSON encodes the filler as [string, offset].
func (f Filler) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.String, f.Offset})
}

// UnmarshalJSON decodes a filler from [string, offset].
func (f *Filler) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("filler must have exactly two elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.String); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &f.Offset)
}

// Slot is a template slot. A nil slot is encoded as null.
type Slot []Filler

// Equal reports whether both slots hold the same fillers.
func (s Slot) Equal(other Slot) bool {
	if (s == nil) != (other == nil) || len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Template is one medication intake timeline.
// The start lies in the open interval (StartMin, StartMax) unless both are equal,
// in which case the start is known exactly. The same holds for the stop.
type Template struct {
	MedicationID string `json:"-"`
	Medication   Slot   `json:"Medication"`
	StartMin     Slot   `json:"Start_min"`
	StartMax     Slot   `json:"Start_max"`
	StopMin      Slot   `json:"Stop_min"`
	StopMax      Slot   `json:"Stop_max"`
}

// StartKnown reports whether the start is known exactly.
func (t Template) StartKnown() bool {
	return t.StartMax != nil && t.StartMin.Equal(t.StartMax)
}

// StopKnown reports whether the stop is known exactly.
func (t Template) StopKnown() bool {
	return t.StopMax != nil && t.StopMin.Equal(t.StopMax)
}

// Templates is stored as a JSONB column.
type Templates []Template

// Value implements the driver.Valuer interface for database storage
func (t Templates) Value() (driver.Value, error) {
	if t == nil {
		t = Templates{}
	}
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface for database retrieval
func (t *Templates) Scan(value interface{}) error {
	if value == nil {
		*t = Templates{}
		return nil
	}
	return scanJSON(value, t)
}

// Example is one output record: the reconstructed text and its templates.
type Example struct {
	ID        int64     `json:"-"`
	RID       uuid.UUID `json:"-"`
	DocID     string    `json:"docid"`
	DocText   string    `json:"doctext"`
	Templates Templates `json:"templates"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

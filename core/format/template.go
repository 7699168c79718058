package format

import (
	"github.com/siherrmann/timeliner/model"
)

// ReduceLabels folds the labels of one medication into the four temporal slots.
// It returns false when the medication yields no template: the DCT is labelled
// before, or no label set Start_max.
func ReduceLabels(labels model.LabelSequence, dates model.EntityGroups, anchors Anchors, shift Shift) (model.Template, bool) {
	if label, ok := labels.Get(model.DCTKey); ok && label == model.LabelBefore {
		return model.Template{}, false
	}

	tmpl := model.Template{
		StartMin: model.Slot{anchors.Min},
		StopMin:  model.Slot{anchors.Min},
	}

loop:
	for _, dl := range labels.Chronological() {
		switch dl.Label {
		case model.LabelUncertain:
			continue
		case model.LabelNoIntake:
			break loop
		}

		role := model.Slot{anchors.DCT}
		if dl.DateID != model.DCTKey {
			role = FormatEntityMentions(dates[dl.DateID], shift)
		}

		if dl.Label == model.LabelBefore || dl.Label == model.LabelStart {
			tmpl.StartMin = role
		}
		if dl.Label != model.LabelBefore && tmpl.StartMax == nil {
			tmpl.StartMax = role
		}
		if dl.Label != model.LabelAfter {
			tmpl.StopMin = role
		}
		if dl.Label == model.LabelStop {
			tmpl.StopMax = role
		}
		if dl.Label == model.LabelAfter && tmpl.StopMax == nil {
			tmpl.StopMax = role
		}
	}

	// never observed to stop
	if tmpl.StopMax == nil {
		tmpl.StopMin = nil
	}

	return tmpl, tmpl.StartMax != nil
}

// FormatExample builds the output record of a document with one template per
// medication carrying a usable start bound. Medications are visited in entity id order.
func FormatExample(doc *model.Document) (*model.Example, error) {
	text, shift, err := FormatText(doc)
	if err != nil {
		return nil, err
	}

	anchors := NewAnchors(doc.DCT)
	example := &model.Example{
		DocID:     doc.DocID,
		DocText:   text,
		Templates: model.Templates{},
	}

	for _, medID := range doc.Meds.IDs() {
		tmpl, ok := ReduceLabels(doc.Labels[medID], doc.Dates, anchors, shift)
		if !ok {
			continue
		}
		tmpl.MedicationID = medID
		tmpl.Medication = FormatEntityMentions(doc.Meds[medID], shift)
		example.Templates = append(example.Templates, tmpl)
	}

	return example, nil
}

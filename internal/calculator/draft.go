package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/models"
)

// SplitDraft holds the in-progress state of a bill form: which participants
// are selected and, in custom mode, what each one was assigned.
type SplitDraft struct {
	Total decimal.Decimal
	Mode  models.SplitMode

	selected []string
	amounts  map[string]decimal.Decimal
}

// NewSplitDraft starts an empty draft.
func NewSplitDraft(total decimal.Decimal, mode models.SplitMode) *SplitDraft {
	return &SplitDraft{
		Total:   total,
		Mode:    mode,
		amounts: make(map[string]decimal.Decimal),
	}
}

// Select adds a participant to the split. In custom mode the participant's
// amount is reset to zero, even when they were already selected; other
// participants' amounts are never redistributed.
func (d *SplitDraft) Select(participantID string) {
	if !d.IsSelected(participantID) {
		d.selected = append(d.selected, participantID)
	}
	if d.Mode == models.SplitCustom {
		d.amounts[participantID] = decimal.Zero
	}
}

// Deselect removes a participant and forgets their amount.
func (d *SplitDraft) Deselect(participantID string) {
	for i, id := range d.selected {
		if id == participantID {
			d.selected = append(d.selected[:i:i], d.selected[i+1:]...)
			break
		}
	}
	delete(d.amounts, participantID)
}

// Toggle deselects a selected participant, or selects an unselected one.
func (d *SplitDraft) Toggle(participantID string) {
	if d.IsSelected(participantID) {
		d.Deselect(participantID)
		return
	}
	d.Select(participantID)
}

// SetAmount assigns a custom amount to a selected participant.
func (d *SplitDraft) SetAmount(participantID string, amount decimal.Decimal) error {
	if !d.IsSelected(participantID) {
		return ErrNotSelected
	}
	d.amounts[participantID] = amount
	return nil
}

// IsSelected reports whether participantID is part of the split.
func (d *SplitDraft) IsSelected(participantID string) bool {
	for _, id := range d.selected {
		if id == participantID {
			return true
		}
	}
	return false
}

// Selected returns a copy of the selection in order.
func (d *SplitDraft) Selected() []string {
	return append([]string(nil), d.selected...)
}

// Compute runs ComputeSplit over the current draft.
func (d *SplitDraft) Compute() (SplitResult, error) {
	return ComputeSplit(d.Total, d.selected, d.Mode, d.amounts)
}

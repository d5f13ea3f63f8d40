package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/models"
)

var (
	// customTolerance is the largest |total - Σ custom amounts| still
	// treated as reconciled.
	customTolerance = decimal.New(1, -1)

	cent = decimal.New(1, -2)
)

// Share is one participant's owed amount in a computed split.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// SplitResult is the outcome of ComputeSplit.
type SplitResult struct {
	// Shares are in the same order as the selected participants.
	Shares []Share

	// IsValid reports whether the shares reconcile with the total.
	IsValid bool

	// Diff is total minus the sum of shares. Positive means money is
	// still unassigned, negative means the shares exceed the total.
	Diff decimal.Decimal
}

// Sum returns the sum of all shares.
func (r SplitResult) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range r.Shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// Message returns the inline form message for an invalid split, or "" when
// the split is valid.
func (r SplitResult) Message() string {
	switch {
	case r.IsValid:
		return ""
	case r.Diff.IsPositive():
		return "missing " + r.Diff.Abs().String()
	default:
		return "over by " + r.Diff.Abs().String()
	}
}

// ValidateBillForm checks the bill-creation form before any split is
// computed.
func ValidateBillForm(title string, total decimal.Decimal, selected []string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if !total.IsPositive() {
		return ErrNonPositiveTotal
	}
	if len(selected) == 0 {
		return ErrNoParticipants
	}
	return nil
}

// ComputeSplit divides total among the selected participants.
//
// In SplitEqual mode every participant owes total/n rounded down to the
// cent; leftover cents go one each to the first participants in selection
// order, and any sub-cent residue goes to the first participant, so the
// shares always sum to exactly total.
//
// In SplitCustom mode every participant owes custom[id], defaulting to zero.
// The result is valid iff |total - Σ| < 0.1.
//
// ComputeSplit is pure: identical inputs yield identical results.
func ComputeSplit(total decimal.Decimal, selected []string, mode models.SplitMode, custom map[string]decimal.Decimal) (SplitResult, error) {
	if len(selected) == 0 {
		return SplitResult{}, ErrNoParticipants
	}
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			return SplitResult{}, ErrDuplicateParticipant
		}
		seen[id] = true
	}

	var shares []Share
	switch mode {
	case models.SplitEqual:
		shares = splitEqual(total, selected)
	case models.SplitCustom:
		shares = splitCustom(selected, custom)
	default:
		return SplitResult{}, ErrUnknownSplitMode
	}

	result := SplitResult{Shares: shares}
	result.Diff = total.Sub(result.Sum())
	result.IsValid = result.Diff.Abs().LessThan(customTolerance)
	return result, nil
}

func splitEqual(total decimal.Decimal, selected []string) []Share {
	n := decimal.NewFromInt(int64(len(selected)))
	base := total.Div(n).RoundFloor(2)
	extraCents := total.Sub(base.Mul(n)).Div(cent).IntPart()

	shares := make([]Share, len(selected))
	sum := decimal.Zero
	for i, id := range selected {
		amount := base
		if int64(i) < extraCents {
			amount = amount.Add(cent)
		}
		shares[i] = Share{ParticipantID: id, Amount: amount}
		sum = sum.Add(amount)
	}

	// Totals with more than two decimals leave a sub-cent residue.
	if residue := total.Sub(sum); !residue.IsZero() {
		shares[0].Amount = shares[0].Amount.Add(residue)
	}
	return shares
}

func splitCustom(selected []string, custom map[string]decimal.Decimal) []Share {
	shares := make([]Share, len(selected))
	for i, id := range selected {
		// Missing entries are the zero Decimal.
		shares[i] = Share{ParticipantID: id, Amount: custom[id]}
	}
	return shares
}

// ValidateSplit checks a computed split before it is persisted as a bill
// owed to creditorID.
func ValidateSplit(creditorID string, result SplitResult) error {
	for _, s := range result.Shares {
		if s.ParticipantID == creditorID {
			return ErrCreditorSelected
		}
	}
	if !result.IsValid {
		return ErrUnreconciled
	}
	for _, s := range result.Shares {
		if !s.Amount.IsPositive() {
			return ErrNonPositiveShare
		}
	}
	return nil
}

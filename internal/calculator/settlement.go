package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/tripsplit/internal/models"
)

// DebtAction is an event that moves a Debt between statuses.
type DebtAction string

const (
	// ActionSubmitSlip is sent by the debtor when attaching a payment slip.
	ActionSubmitSlip DebtAction = "submit_slip"
	// ActionApprove is sent by the creditor to accept a slip.
	ActionApprove DebtAction = "approve"
	// ActionReject is sent by the creditor to refuse a slip.
	ActionReject DebtAction = "reject"
)

// ParseDebtAction converts a wire literal into a DebtAction.
func ParseDebtAction(s string) (DebtAction, error) {
	switch a := DebtAction(s); a {
	case ActionSubmitSlip, ActionApprove, ActionReject:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// AuthorizationError is returned when an actor attempts a transition they
// are not allowed to perform.
type AuthorizationError struct {
	ActorID       string
	ParticipantID string
	Action        DebtAction
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %q may not %s the debt of %q", e.ActorID, e.Action, e.ParticipantID)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrNotAuthorized
}

// NextStatus returns the status reached by applying action to from.
//
//	unpaid    --submit_slip--> slip_sent
//	rejected  --submit_slip--> slip_sent
//	slip_sent --approve------> verified (terminal)
//	slip_sent --reject-------> rejected
func NextStatus(from models.DebtStatus, action DebtAction) (models.DebtStatus, error) {
	invalid := fmt.Errorf("%w: cannot %s a %s debt", ErrInvalidTransition, action, from)

	switch from {
	case models.DebtUnpaid, models.DebtRejected:
		switch action {
		case ActionSubmitSlip:
			return models.DebtSlipSent, nil
		case ActionApprove, ActionReject:
			return "", invalid
		}
	case models.DebtSlipSent:
		switch action {
		case ActionApprove:
			return models.DebtVerified, nil
		case ActionReject:
			return models.DebtRejected, nil
		case ActionSubmitSlip:
			return "", invalid
		}
	case models.DebtVerified:
		switch action {
		case ActionSubmitSlip, ActionApprove, ActionReject:
			return "", invalid
		}
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnknownDebtStatus, from)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// TransitionOption customises TransitionDebt.
type TransitionOption func(*transitionOptions)

type transitionOptions struct {
	slipRef string
}

// WithSlip records the payment slip reference on a submit_slip transition.
func WithSlip(ref string) TransitionOption {
	return func(o *transitionOptions) {
		o.slipRef = ref
	}
}

// TransitionDebt applies action to the debt owed by participantID on behalf
// of actorID and returns the updated bill. Only the debtor may submit a
// slip; only the bill's creditor may approve or reject one. On any error
// the returned bill is the input, unchanged.
func TransitionDebt(bill models.Bill, participantID string, action DebtAction, actorID string, opts ...TransitionOption) (models.Bill, error) {
	var o transitionOptions
	for _, opt := range opts {
		opt(&o)
	}

	debt, _, ok := bill.FindDebt(participantID)
	if !ok {
		return bill, fmt.Errorf("%w: %s on bill %s", ErrDebtNotFound, participantID, bill.ID)
	}

	if err := authorize(bill, debt, action, actorID); err != nil {
		return bill, err
	}

	next, err := NextStatus(debt.Status, action)
	if err != nil {
		return bill, err
	}

	return withDebt(bill, participantID, func(d *models.Debt) {
		d.Status = next
		if action == ActionSubmitSlip && o.slipRef != "" {
			d.SlipRef = o.slipRef
		}
	}), nil
}

func authorize(bill models.Bill, debt models.Debt, action DebtAction, actorID string) error {
	var allowed bool
	switch action {
	case ActionSubmitSlip:
		allowed = actorID == debt.ParticipantID
	case ActionApprove, ActionReject:
		allowed = actorID == bill.CreditorID
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if !allowed {
		return &AuthorizationError{ActorID: actorID, ParticipantID: debt.ParticipantID, Action: action}
	}
	return nil
}

// WithDebtStatus returns a copy of bill with participantID's debt set to
// status and IsCompleted recomputed. The input bill is not modified.
func WithDebtStatus(bill models.Bill, participantID string, status models.DebtStatus) models.Bill {
	return withDebt(bill, participantID, func(d *models.Debt) {
		d.Status = status
	})
}

func withDebt(bill models.Bill, participantID string, mutate func(*models.Debt)) models.Bill {
	debts := make([]models.Debt, len(bill.Debts))
	copy(debts, bill.Debts)
	for i := range debts {
		if debts[i].ParticipantID == participantID {
			mutate(&debts[i])
		}
	}
	bill.Debts = debts
	bill.IsCompleted = IsCompleted(debts)
	return bill
}

// IsCompleted reports whether every debt is verified.
func IsCompleted(debts []models.Debt) bool {
	for _, d := range debts {
		if d.Status != models.DebtVerified {
			return false
		}
	}
	return true
}

func displayPriority(s models.DebtStatus) int {
	switch s {
	case models.DebtSlipSent:
		return 1
	case models.DebtUnpaid, models.DebtRejected:
		return 2
	case models.DebtVerified:
		return 3
	}
	return 4
}

// SortDebtsForDisplay returns a copy of debts ordered for presentation:
// slip_sent first, then unpaid and rejected, then verified. The sort is
// stable.
func SortDebtsForDisplay(debts []models.Debt) []models.Debt {
	sorted := make([]models.Debt, len(debts))
	copy(sorted, debts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return displayPriority(sorted[i].Status) < displayPriority(sorted[j].Status)
	})
	return sorted
}

// MergeDebts builds the debt list for an edited bill. A debtor whose amount
// is unchanged keeps their status and slip; anyone else starts unpaid.
func MergeDebts(previous []models.Debt, shares []Share) []models.Debt {
	prev := make(map[string]models.Debt, len(previous))
	for _, d := range previous {
		prev[d.ParticipantID] = d
	}

	debts := make([]models.Debt, len(shares))
	for i, s := range shares {
		if old, ok := prev[s.ParticipantID]; ok && old.Amount.Equal(s.Amount) {
			debts[i] = old
			continue
		}
		debts[i] = models.Debt{
			ParticipantID: s.ParticipantID,
			Amount:        s.Amount,
			Status:        models.DebtUnpaid,
		}
	}
	return debts
}

// NewDebts turns computed shares into fresh unpaid debts.
func NewDebts(shares []Share) []models.Debt {
	return MergeDebts(nil, shares)
}

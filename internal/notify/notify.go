// Package notify tells participants when a debt changes state.
// Delivery is best-effort: callers log failures and carry on.
package notify

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/models"
)

// DebtEvent describes one settled transition.
type DebtEvent struct {
	BillID        string
	BillTitle     string
	CreditorID    string
	ParticipantID string
	Amount        decimal.Decimal
	Status        models.DebtStatus
}

// Recipient returns who should hear about the event: the creditor when a
// slip arrives, the debtor when it is approved or rejected.
func (e DebtEvent) Recipient() string {
	switch e.Status {
	case models.DebtSlipSent:
		return e.CreditorID
	case models.DebtVerified, models.DebtRejected:
		return e.ParticipantID
	}
	return ""
}

// Notifier delivers debt events.
type Notifier interface {
	DebtChanged(ctx context.Context, event DebtEvent) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) DebtChanged(context.Context, DebtEvent) error { return nil }

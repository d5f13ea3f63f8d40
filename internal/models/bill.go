package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownDebtStatus    = errors.New("unknown debt status")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrUnknownSplitMode     = errors.New("unknown split mode")
)

// DebtStatus is the payment state of one Debt.
type DebtStatus string

const (
	DebtUnpaid   DebtStatus = "unpaid"
	DebtSlipSent DebtStatus = "slip_sent"
	DebtVerified DebtStatus = "verified"
	DebtRejected DebtStatus = "rejected"
)

// ParseDebtStatus converts a stored or wire literal into a DebtStatus.
func ParseDebtStatus(s string) (DebtStatus, error) {
	switch st := DebtStatus(s); st {
	case DebtUnpaid, DebtSlipSent, DebtVerified, DebtRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDebtStatus, s)
}

// PaymentMethod tells debtors how to pay the creditor.
type PaymentMethod string

const (
	// PaymentQRImage means PaymentValue is a blob key of a QR code image.
	PaymentQRImage PaymentMethod = "qr_image"
	// PaymentBankAccount means PaymentValue is free-form bank account text.
	PaymentBankAccount PaymentMethod = "bank_account"
)

// ParsePaymentMethod converts a literal into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentQRImage, PaymentBankAccount:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
}

// SplitMode selects how a bill total is divided.
type SplitMode string

const (
	SplitEqual  SplitMode = "equal"
	SplitCustom SplitMode = "custom"
)

// ParseSplitMode converts a literal into a SplitMode.
func ParseSplitMode(s string) (SplitMode, error) {
	switch m := SplitMode(s); m {
	case SplitEqual, SplitCustom:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSplitMode, s)
}

// Bill represents money collected by one creditor from several debtors.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// TripID is the owning trip. Empty for standalone bills.
	TripID string

	// Title is the human-readable name for the bill.
	Title string

	// Total is the amount to be collected from debtors.
	Total decimal.Decimal

	// PaymentMethod and PaymentValue describe how to pay the creditor.
	PaymentMethod PaymentMethod
	PaymentValue  string

	// CreditorID is the participant who created the bill and is owed money.
	// The creditor never has a Debt of their own on the bill.
	CreditorID string

	// SplitMode records how Debts were computed.
	SplitMode SplitMode

	// Debts holds one entry per debtor, in selection order.
	Debts []Debt

	// IsCompleted is true iff every Debt is verified.
	IsCompleted bool

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// Debt is one participant's obligation on a bill.
type Debt struct {
	ParticipantID string
	Amount        decimal.Decimal
	Status        DebtStatus

	// SlipRef is the blob key of the latest payment slip, if any.
	SlipRef string

	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64
}

// FindDebt returns the debt owed by participantID and its index.
func (b *Bill) FindDebt(participantID string) (Debt, int, bool) {
	for i, d := range b.Debts {
		if d.ParticipantID == participantID {
			return d, i, true
		}
	}
	return Debt{}, -1, false
}

// IsParty reports whether userID is the creditor or one of the debtors.
func (b *Bill) IsParty(userID string) bool {
	if b.CreditorID == userID {
		return true
	}
	_, _, ok := b.FindDebt(userID)
	return ok
}

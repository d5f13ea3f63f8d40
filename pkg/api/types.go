// Package api defines the tripsplit.v1 wire messages.
//
// Messages are plain structs encoded as JSON. Money is carried as a
// decimal string ("1234.50") so no precision is lost in transit.
package api

import "github.com/shopspring/decimal"

// User is the public profile of a participant.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty"`
}

// Trip is a group of participants sharing bills.
type Trip struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	CreatedAt int64    `json:"created_at"`
}

// Debt is one participant's obligation on a bill.
type Debt struct {
	ParticipantID   string          `json:"participant_id"`
	ParticipantName string          `json:"participant_name,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	SlipRef         string          `json:"slip_ref,omitempty"`
	UpdatedAt       int64           `json:"updated_at"`
}

// Bill is a full bill with its debts in display order.
type Bill struct {
	ID            string          `json:"id"`
	TripID        string          `json:"trip_id,omitempty"`
	Title         string          `json:"title"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentValue  string          `json:"payment_value"`
	CreditorID    string          `json:"creditor_id"`
	CreditorName  string          `json:"creditor_name,omitempty"`
	SplitMode     string          `json:"split_mode"`
	Debts         []Debt          `json:"debts"`
	IsCompleted   bool            `json:"is_completed"`
	CreatedAt     int64           `json:"created_at"`
}

// BillSummary is the list view of a bill.
type BillSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Total       decimal.Decimal `json:"total"`
	CreditorID  string          `json:"creditor_id"`
	DebtCount   int             `json:"debt_count"`
	Outstanding decimal.Decimal `json:"outstanding"`
	IsCompleted bool            `json:"is_completed"`
	CreatedAt   int64           `json:"created_at"`
}

// Share is one computed split entry.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// MemberBalance is a member's position across outstanding trip debts.
type MemberBalance struct {
	MemberID    string          `json:"member_id"`
	DisplayName string          `json:"display_name,omitempty"`
	NetBalance  decimal.Decimal `json:"net_balance"`
	OwedToThem  decimal.Decimal `json:"owed_to_them"`
	TheyOwe     decimal.Decimal `json:"they_owe"`
}

// Transfer is a suggested payment settling part of the trip balances.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

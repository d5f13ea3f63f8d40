package api

import "github.com/shopspring/decimal"

// ComputeSplitRequest previews a split without persisting anything.
// CustomAmounts is read only in custom mode; missing entries count as zero.
type ComputeSplitRequest struct {
	Total          decimal.Decimal            `json:"total"`
	ParticipantIDs []string                   `json:"participant_ids"`
	SplitMode      string                     `json:"split_mode"`
	CustomAmounts  map[string]decimal.Decimal `json:"custom_amounts,omitempty"`
}

type ComputeSplitResponse struct {
	Shares  []*Share        `json:"shares"`
	Sum     decimal.Decimal `json:"sum"`
	Diff    decimal.Decimal `json:"diff"`
	IsValid bool            `json:"is_valid"`
	Message string          `json:"message,omitempty"`
}

// BillInput carries the creditor-editable fields of a bill.
type BillInput struct {
	Title          string                     `json:"title"`
	Total          decimal.Decimal            `json:"total"`
	PaymentMethod  string                     `json:"payment_method"`
	PaymentValue   string                     `json:"payment_value"`
	SplitMode      string                     `json:"split_mode"`
	ParticipantIDs []string                   `json:"participant_ids"`
	CustomAmounts  map[string]decimal.Decimal `json:"custom_amounts,omitempty"`
}

type CreateBillRequest struct {
	TripID string `json:"trip_id,omitempty"`
	BillInput
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

type ListBillsByTripRequest struct {
	TripID string `json:"trip_id"`
}

type ListBillsByTripResponse struct {
	Bills []*BillSummary `json:"bills"`
}

type UpdateBillRequest struct {
	BillID string `json:"bill_id"`
	BillInput
}

type UpdateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

// TransitionDebtRequest moves one debt through the settlement workflow.
// Action is one of submit_slip, approve, reject.
type TransitionDebtRequest struct {
	BillID        string `json:"bill_id"`
	ParticipantID string `json:"participant_id"`
	Action        string `json:"action"`
	SlipRef       string `json:"slip_ref,omitempty"`
}

type TransitionDebtResponse struct {
	Bill *Bill `json:"bill"`
}

// RequestUploadURLRequest asks for a presigned upload. Kind is "slip" or "qr".
type RequestUploadURLRequest struct {
	Kind string `json:"kind"`
}

type RequestUploadURLResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	ExpiresAt int64  `json:"expires_at"`
}

type GetSlipURLRequest struct {
	BillID        string `json:"bill_id"`
	ParticipantID string `json:"participant_id"`
}

type GetSlipURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

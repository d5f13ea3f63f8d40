package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.AvatarURL,
		TelegramChatID: u.TelegramChatID,
	}
}

func toAPITrip(t *models.Trip) *api.Trip {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return &api.Trip{
		ID:        t.ID,
		Name:      t.Name,
		MemberIDs: members,
		CreatedAt: t.CreatedAt,
	}
}

// toAPIBill converts a bill with its debts in display order. names maps
// participant IDs to display names and may be nil.
func toAPIBill(b *models.Bill, names map[string]*models.User) *api.Bill {
	name := func(id string) string {
		if u, ok := names[id]; ok {
			return u.DisplayName
		}
		return ""
	}

	debts := make([]api.Debt, 0, len(b.Debts))
	for _, d := range calculator.SortDebtsForDisplay(b.Debts) {
		debts = append(debts, api.Debt{
			ParticipantID:   d.ParticipantID,
			ParticipantName: name(d.ParticipantID),
			Amount:          d.Amount,
			Status:          string(d.Status),
			SlipRef:         d.SlipRef,
			UpdatedAt:       d.UpdatedAt,
		})
	}

	return &api.Bill{
		ID:            b.ID,
		TripID:        b.TripID,
		Title:         b.Title,
		Total:         b.Total,
		PaymentMethod: string(b.PaymentMethod),
		PaymentValue:  b.PaymentValue,
		CreditorID:    b.CreditorID,
		CreditorName:  name(b.CreditorID),
		SplitMode:     string(b.SplitMode),
		Debts:         debts,
		IsCompleted:   b.IsCompleted,
		CreatedAt:     b.CreatedAt,
	}
}

func toAPIBillSummary(b *models.Bill) *api.BillSummary {
	outstanding := decimal.Zero
	for _, d := range b.Debts {
		if d.Status != models.DebtVerified {
			outstanding = outstanding.Add(d.Amount)
		}
	}
	return &api.BillSummary{
		ID:          b.ID,
		Title:       b.Title,
		Total:       b.Total,
		CreditorID:  b.CreditorID,
		DebtCount:   len(b.Debts),
		Outstanding: outstanding,
		IsCompleted: b.IsCompleted,
		CreatedAt:   b.CreatedAt,
	}
}

func toAPIShares(shares []calculator.Share) []*api.Share {
	out := make([]*api.Share, len(shares))
	for i, s := range shares {
		out[i] = &api.Share{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	return out
}

package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsplit/internal/models"
)

func testBill(statuses ...models.DebtStatus) models.Bill {
	ids := []string{"u2", "u3", "u4", "u5", "u6"}
	bill := models.Bill{ID: "b1", CreditorID: "u1", Total: d("0")}
	for i, st := range statuses {
		bill.Debts = append(bill.Debts, models.Debt{
			ParticipantID: ids[i],
			Amount:        d("100"),
			Status:        st,
		})
		bill.Total = bill.Total.Add(d("100"))
	}
	bill.IsCompleted = IsCompleted(bill.Debts)
	return bill
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from    models.DebtStatus
		action  DebtAction
		want    models.DebtStatus
		wantErr error
	}{
		{models.DebtUnpaid, ActionSubmitSlip, models.DebtSlipSent, nil},
		{models.DebtRejected, ActionSubmitSlip, models.DebtSlipSent, nil},
		{models.DebtSlipSent, ActionApprove, models.DebtVerified, nil},
		{models.DebtSlipSent, ActionReject, models.DebtRejected, nil},

		{models.DebtUnpaid, ActionApprove, "", ErrInvalidTransition},
		{models.DebtUnpaid, ActionReject, "", ErrInvalidTransition},
		{models.DebtRejected, ActionApprove, "", ErrInvalidTransition},
		{models.DebtSlipSent, ActionSubmitSlip, "", ErrInvalidTransition},
		{models.DebtVerified, ActionSubmitSlip, "", ErrInvalidTransition},
		{models.DebtVerified, ActionApprove, "", ErrInvalidTransition},
		{models.DebtVerified, ActionReject, "", ErrInvalidTransition},

		{models.DebtStatus("paid"), ActionApprove, "", models.ErrUnknownDebtStatus},
		{models.DebtUnpaid, DebtAction("cancel"), "", ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.action)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionDebt_ApproveLastDebtCompletesBill(t *testing.T) {
	bill := testBill(models.DebtVerified, models.DebtSlipSent)
	require.False(t, bill.IsCompleted)

	updated, err := TransitionDebt(bill, "u3", ActionApprove, "u1")
	require.NoError(t, err)

	debt, _, _ := updated.FindDebt("u3")
	assert.Equal(t, models.DebtVerified, debt.Status)
	assert.True(t, updated.IsCompleted)

	// Input is untouched.
	orig, _, _ := bill.FindDebt("u3")
	assert.Equal(t, models.DebtSlipSent, orig.Status)
	assert.False(t, bill.IsCompleted)
}

func TestTransitionDebt_SubmitSlipRecordsReference(t *testing.T) {
	bill := testBill(models.DebtRejected)
	bill.Debts[0].SlipRef = "slip/old"

	updated, err := TransitionDebt(bill, "u2", ActionSubmitSlip, "u2", WithSlip("slip/new"))
	require.NoError(t, err)

	debt, _, _ := updated.FindDebt("u2")
	assert.Equal(t, models.DebtSlipSent, debt.Status)
	assert.Equal(t, "slip/new", debt.SlipRef)
	assert.Equal(t, "slip/old", bill.Debts[0].SlipRef)
}

func TestTransitionDebt_Authorization(t *testing.T) {
	tests := []struct {
		name        string
		status      models.DebtStatus
		action      DebtAction
		actor       string
		participant string
	}{
		{"debtor cannot approve another's debt", models.DebtSlipSent, ActionApprove, "u3", "u2"},
		{"debtor cannot approve own debt", models.DebtSlipSent, ActionApprove, "u2", "u2"},
		{"debtor cannot reject", models.DebtSlipSent, ActionReject, "u2", "u2"},
		{"creditor cannot submit for debtor", models.DebtUnpaid, ActionSubmitSlip, "u1", "u2"},
		{"other debtor cannot submit", models.DebtUnpaid, ActionSubmitSlip, "u3", "u2"},
		{"outsider cannot approve", models.DebtSlipSent, ActionApprove, "u9", "u2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := testBill(tt.status, models.DebtUnpaid)

			updated, err := TransitionDebt(bill, tt.participant, tt.action, tt.actor)
			require.Error(t, err)

			var authErr *AuthorizationError
			require.True(t, errors.As(err, &authErr), "expected AuthorizationError, got %T", err)
			assert.Equal(t, tt.actor, authErr.ActorID)
			assert.True(t, errors.Is(err, ErrNotAuthorized))

			debt, _, _ := updated.FindDebt(tt.participant)
			assert.Equal(t, tt.status, debt.Status, "status must be unchanged")
		})
	}
}

func TestTransitionDebt_UnknownDebtor(t *testing.T) {
	bill := testBill(models.DebtSlipSent)
	_, err := TransitionDebt(bill, "u1", ActionApprove, "u1")
	assert.True(t, errors.Is(err, ErrDebtNotFound))
}

func TestTransitionDebt_InvalidTransitionLeavesBill(t *testing.T) {
	bill := testBill(models.DebtVerified)
	updated, err := TransitionDebt(bill, "u2", ActionReject, "u1")
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, updated.IsCompleted)
}

func TestWithDebtStatus_CompletionDerivation(t *testing.T) {
	bill := testBill(models.DebtVerified, models.DebtVerified, models.DebtVerified)
	require.True(t, bill.IsCompleted)

	for _, id := range []string{"u2", "u3", "u4"} {
		flipped := WithDebtStatus(bill, id, models.DebtRejected)
		assert.False(t, flipped.IsCompleted, "flipping %s should clear completion", id)
		assert.True(t, bill.IsCompleted, "original must stay completed")

		restored := WithDebtStatus(flipped, id, models.DebtVerified)
		assert.True(t, restored.IsCompleted)
	}
}

func TestSortDebtsForDisplay(t *testing.T) {
	bill := testBill(models.DebtVerified, models.DebtUnpaid, models.DebtSlipSent, models.DebtRejected)

	sorted := SortDebtsForDisplay(bill.Debts)

	var got []models.DebtStatus
	for _, debt := range sorted {
		got = append(got, debt.Status)
	}
	assert.Equal(t, []models.DebtStatus{
		models.DebtSlipSent, models.DebtUnpaid, models.DebtRejected, models.DebtVerified,
	}, got)

	// Input order is preserved.
	assert.Equal(t, models.DebtVerified, bill.Debts[0].Status)
}

func TestSortDebtsForDisplay_StableWithinTies(t *testing.T) {
	bill := testBill(models.DebtRejected, models.DebtUnpaid, models.DebtRejected)
	sorted := SortDebtsForDisplay(bill.Debts)

	ids := []string{sorted[0].ParticipantID, sorted[1].ParticipantID, sorted[2].ParticipantID}
	assert.Equal(t, []string{"u2", "u3", "u4"}, ids)
}

func TestMergeDebts(t *testing.T) {
	previous := []models.Debt{
		{ParticipantID: "u2", Amount: d("50"), Status: models.DebtVerified, SlipRef: "slip/u2"},
		{ParticipantID: "u3", Amount: d("50"), Status: models.DebtSlipSent, SlipRef: "slip/u3"},
	}
	shares := []Share{
		{ParticipantID: "u2", Amount: d("50.00")},
		{ParticipantID: "u3", Amount: d("40")},
		{ParticipantID: "u4", Amount: d("10")},
	}

	debts := MergeDebts(previous, shares)
	require.Len(t, debts, 3)

	assert.Equal(t, models.DebtVerified, debts[0].Status)
	assert.Equal(t, "slip/u2", debts[0].SlipRef)

	assert.Equal(t, models.DebtUnpaid, debts[1].Status)
	assert.Empty(t, debts[1].SlipRef)
	assert.True(t, debts[1].Amount.Equal(d("40")))

	assert.Equal(t, models.DebtUnpaid, debts[2].Status)
	assert.False(t, IsCompleted(debts))
}

func TestParseDebtAction(t *testing.T) {
	a, err := ParseDebtAction("approve")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseDebtAction("settle")
	assert.True(t, errors.Is(err, ErrValidation))
}

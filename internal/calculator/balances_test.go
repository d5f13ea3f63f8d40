package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/models"
)

func TestCalculateTripBalances(t *testing.T) {
	bills := []models.Bill{
		{
			// Alice paid the hotel; Bob and Charlie owe her 300 each.
			CreditorID: "alice",
			Debts: []models.Debt{
				{ParticipantID: "bob", Amount: d("300"), Status: models.DebtUnpaid},
				{ParticipantID: "charlie", Amount: d("300"), Status: models.DebtSlipSent},
			},
		},
		{
			// Bob paid dinner; Alice owes him 100, Charlie already paid.
			CreditorID: "bob",
			Debts: []models.Debt{
				{ParticipantID: "alice", Amount: d("100"), Status: models.DebtRejected},
				{ParticipantID: "charlie", Amount: d("100"), Status: models.DebtVerified},
			},
		},
	}

	balances, transfers := CalculateTripBalances(bills)

	want := map[string]string{
		"alice":   "500",  // owed 600, owes 100
		"bob":     "-200", // owed 100, owes 300
		"charlie": "-300",
	}
	if len(balances) != len(want) {
		t.Fatalf("got %d balances, want %d", len(balances), len(want))
	}
	sum := decimal.Zero
	for _, b := range balances {
		if !b.NetBalance.Equal(d(want[b.MemberID])) {
			t.Errorf("%s net = %s, want %s", b.MemberID, b.NetBalance, want[b.MemberID])
		}
		sum = sum.Add(b.NetBalance)
	}
	if !sum.IsZero() {
		t.Errorf("balances should net to zero, got %s", sum)
	}

	if balances[0].MemberID != "alice" || balances[2].MemberID != "charlie" {
		t.Errorf("balances not sorted by member: %+v", balances)
	}

	// Charlie (largest debtor) pays Alice first, then Bob pays the rest.
	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2: %+v", len(transfers), transfers)
	}
	if transfers[0].From != "charlie" || transfers[0].To != "alice" || !transfers[0].Amount.Equal(d("300")) {
		t.Errorf("transfer[0] = %+v", transfers[0])
	}
	if transfers[1].From != "bob" || transfers[1].To != "alice" || !transfers[1].Amount.Equal(d("200")) {
		t.Errorf("transfer[1] = %+v", transfers[1])
	}
}

func TestCalculateTripBalances_AllVerified(t *testing.T) {
	bills := []models.Bill{{
		CreditorID: "alice",
		Debts: []models.Debt{
			{ParticipantID: "bob", Amount: d("10"), Status: models.DebtVerified},
		},
	}}

	balances, transfers := CalculateTripBalances(bills)
	if len(balances) != 0 {
		t.Errorf("expected no balances, got %+v", balances)
	}
	if len(transfers) != 0 {
		t.Errorf("expected no transfers, got %+v", transfers)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/pkg/api"
)

func TestComputeSplit(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	t.Run("equal split assigns leftover cents first", func(t *testing.T) {
		resp, err := env.bills.ComputeSplit(ctx, as("alice", &api.ComputeSplitRequest{
			Total:          dec("100"),
			ParticipantIDs: []string{"bob", "charlie", "dave"},
			SplitMode:      "equal",
		}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Shares, 3)
		assertAmount(t, "33.34", resp.Msg.Shares[0].Amount)
		assertAmount(t, "33.33", resp.Msg.Shares[1].Amount)
		assertAmount(t, "33.33", resp.Msg.Shares[2].Amount)
		assertAmount(t, "100", resp.Msg.Sum)
		assert.True(t, resp.Msg.IsValid)
	})

	t.Run("unreconciled custom split is reported", func(t *testing.T) {
		resp, err := env.bills.ComputeSplit(ctx, as("alice", &api.ComputeSplitRequest{
			Total:          dec("100"),
			ParticipantIDs: []string{"bob", "charlie"},
			SplitMode:      "custom",
			CustomAmounts:  map[string]decimal.Decimal{"bob": dec("60"), "charlie": dec("30")},
		}))
		require.NoError(t, err)
		assert.False(t, resp.Msg.IsValid)
		assertAmount(t, "10", resp.Msg.Diff)
		assertAmount(t, "90", resp.Msg.Sum)
		assert.NotEmpty(t, resp.Msg.Message)
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := env.bills.ComputeSplit(ctx, as("alice", &api.ComputeSplitRequest{
			Total: dec("100"), ParticipantIDs: []string{"bob"}, SplitMode: "weighted",
		}))
		assertCode(t, connect.CodeInvalidArgument, err)

		_, err = env.bills.ComputeSplit(ctx, as("alice", &api.ComputeSplitRequest{
			Total: dec("100"), ParticipantIDs: []string{"bob", "bob"}, SplitMode: "equal",
		}))
		assertCode(t, connect.CodeInvalidArgument, err)
	})
}

func TestCreateBill(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie", "eve")
	tripID := env.createTrip(t, "alice", "bob", "charlie")

	bill := env.createBill(t, "alice", tripID, "300", "bob", "charlie")
	assert.NotEmpty(t, bill.ID)
	assert.Equal(t, tripID, bill.TripID)
	assert.Equal(t, "alice", bill.CreditorID)
	assert.Equal(t, "Alice", bill.CreditorName)
	assert.False(t, bill.IsCompleted)
	require.Len(t, bill.Debts, 2)
	for _, d := range bill.Debts {
		assertAmount(t, "150", d.Amount)
		assert.Equal(t, string(models.DebtUnpaid), d.Status)
	}
	assert.Equal(t, "Bob", debtOf(bill, "bob").ParticipantName)

	stored, err := env.store.GetBill(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Debts, 2)
}

func TestCreateBill_Validation(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie", "eve")
	tripID := env.createTrip(t, "alice", "bob", "charlie")

	custom := func(total string, amounts map[string]string) api.BillInput {
		in := equalBill(total)
		in.SplitMode = "custom"
		in.CustomAmounts = make(map[string]decimal.Decimal)
		for id, a := range amounts {
			in.ParticipantIDs = append(in.ParticipantIDs, id)
			in.CustomAmounts[id] = dec(a)
		}
		return in
	}

	tests := []struct {
		name string
		user string
		in   api.BillInput
		code connect.Code
	}{
		{"empty title", "alice", func() api.BillInput { in := equalBill("100", "bob"); in.Title = " "; return in }(), connect.CodeInvalidArgument},
		{"zero total", "alice", equalBill("0", "bob"), connect.CodeInvalidArgument},
		{"no participants", "alice", equalBill("100"), connect.CodeInvalidArgument},
		{"creditor selected", "alice", equalBill("100", "alice", "bob"), connect.CodeInvalidArgument},
		{"unreconciled", "alice", custom("100", map[string]string{"bob": "60", "charlie": "30"}), connect.CodeInvalidArgument},
		{"zero share", "alice", custom("100", map[string]string{"bob": "100", "charlie": "0"}), connect.CodeInvalidArgument},
		{"outsider debtor", "alice", equalBill("100", "bob", "eve"), connect.CodeInvalidArgument},
		{"unknown payment method", "alice", func() api.BillInput { in := equalBill("100", "bob"); in.PaymentMethod = "cash"; return in }(), connect.CodeInvalidArgument},
		{"creditor outside trip", "eve", equalBill("100", "bob"), connect.CodePermissionDenied},
		{"anonymous", "", equalBill("100", "bob"), connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bills.CreateBill(context.Background(), as(tt.user, &api.CreateBillRequest{
				TripID:    tripID,
				BillInput: tt.in,
			}))
			assertCode(t, tt.code, err)
		})
	}

	bills, err := env.store.ListBillsByTrip(context.Background(), tripID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestCreateBill_Standalone(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob")

	bill := env.createBill(t, "alice", "", "80", "bob")
	assert.Empty(t, bill.TripID)

	_, err := env.bills.CreateBill(context.Background(), as("alice", &api.CreateBillRequest{
		BillInput: equalBill("80", "ghost"),
	}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestTransitionDebt_Workflow(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie")
	tripID := env.createTrip(t, "alice", "bob", "charlie")
	bill := env.createBill(t, "alice", tripID, "300", "bob", "charlie")

	// bob pays and alice approves
	got, err := env.transition("bob", bill.ID, "bob", "submit_slip")
	require.NoError(t, err)
	assert.Equal(t, "slip_sent", debtOf(got, "bob").Status)

	got, err = env.transition("alice", bill.ID, "bob", "approve")
	require.NoError(t, err)
	assert.Equal(t, "verified", debtOf(got, "bob").Status)
	assert.False(t, got.IsCompleted)

	// charlie is rejected once, then approved
	_, err = env.transition("charlie", bill.ID, "charlie", "submit_slip")
	require.NoError(t, err)
	got, err = env.transition("alice", bill.ID, "charlie", "reject")
	require.NoError(t, err)
	assert.Equal(t, "rejected", debtOf(got, "charlie").Status)

	_, err = env.transition("charlie", bill.ID, "charlie", "submit_slip")
	require.NoError(t, err)
	got, err = env.transition("alice", bill.ID, "charlie", "approve")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	stored, err := env.store.GetBill(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)

	events := env.notifier.Events()
	require.Len(t, events, 6)
	assert.Equal(t, models.DebtSlipSent, events[0].Status)
	assert.Equal(t, "alice", events[0].Recipient())
	assert.Equal(t, models.DebtVerified, events[1].Status)
	assert.Equal(t, "bob", events[1].Recipient())
}

func TestTransitionDebt_Rejections(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie")
	tripID := env.createTrip(t, "alice", "bob", "charlie")
	bill := env.createBill(t, "alice", tripID, "300", "bob", "charlie")

	_, err := env.transition("bob", bill.ID, "bob", "submit_slip")
	require.NoError(t, err)

	tests := []struct {
		name        string
		user        string
		participant string
		action      string
		code        connect.Code
	}{
		{"debtor approves own slip", "bob", "bob", "approve", connect.CodePermissionDenied},
		{"other debtor rejects", "charlie", "bob", "reject", connect.CodePermissionDenied},
		{"creditor submits for debtor", "alice", "charlie", "submit_slip", connect.CodePermissionDenied},
		{"resubmit while pending", "bob", "bob", "submit_slip", connect.CodeFailedPrecondition},
		{"approve unpaid", "alice", "charlie", "approve", connect.CodeFailedPrecondition},
		{"unknown action", "bob", "bob", "pay", connect.CodeInvalidArgument},
		{"no such debt", "alice", "alice", "approve", connect.CodeNotFound},
		{"anonymous", "", "bob", "approve", connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.transition(tt.user, bill.ID, tt.participant, tt.action)
			assertCode(t, tt.code, err)
		})
	}

	_, err = env.transition("alice", "missing", "bob", "approve")
	assertCode(t, connect.CodeNotFound, err)

	stored, err := env.store.GetBill(context.Background(), bill.ID)
	require.NoError(t, err)
	bob, _, _ := stored.FindDebt("bob")
	charlie, _, _ := stored.FindDebt("charlie")
	assert.Equal(t, models.DebtSlipSent, bob.Status)
	assert.Equal(t, models.DebtUnpaid, charlie.Status)

	// verified is terminal
	_, err = env.transition("alice", bill.ID, "bob", "approve")
	require.NoError(t, err)
	_, err = env.transition("alice", bill.ID, "bob", "reject")
	assertCode(t, connect.CodeFailedPrecondition, err)
}

func TestTransitionDebt_NotificationFailureIgnored(t *testing.T) {
	env := setupTestServer(t)
	env.notifier.err = errors.New("telegram down")
	env.seedUsers(t, "alice", "bob")
	bill := env.createBill(t, "alice", "", "50", "bob")

	got, err := env.transition("bob", bill.ID, "bob", "submit_slip")
	require.NoError(t, err)
	assert.Equal(t, "slip_sent", debtOf(got, "bob").Status)
	assert.Len(t, env.notifier.Events(), 1)
}

func TestGetBill(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie", "dave", "eve")
	ctx := context.Background()
	tripID := env.createTrip(t, "alice", "bob", "charlie", "dave")
	bill := env.createBill(t, "alice", tripID, "300", "bob", "charlie")

	_, err := env.transition("charlie", bill.ID, "charlie", "submit_slip")
	require.NoError(t, err)

	resp, err := env.bills.GetBill(ctx, as("bob", &api.GetBillRequest{BillID: bill.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Bill.Debts, 2)
	assert.Equal(t, "charlie", resp.Msg.Bill.Debts[0].ParticipantID, "pending slips come first")
	assert.Equal(t, "bob", resp.Msg.Bill.Debts[1].ParticipantID)

	// trip members who are not parties may look
	_, err = env.bills.GetBill(ctx, as("dave", &api.GetBillRequest{BillID: bill.ID}))
	require.NoError(t, err)

	_, err = env.bills.GetBill(ctx, as("eve", &api.GetBillRequest{BillID: bill.ID}))
	assertCode(t, connect.CodePermissionDenied, err)

	_, err = env.bills.GetBill(ctx, as("alice", &api.GetBillRequest{BillID: "missing"}))
	assertCode(t, connect.CodeNotFound, err)

	standalone := env.createBill(t, "alice", "", "10", "bob")
	_, err = env.bills.GetBill(ctx, as("dave", &api.GetBillRequest{BillID: standalone.ID}))
	assertCode(t, connect.CodePermissionDenied, err)
}

func TestListBillsByTrip(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie", "eve")
	ctx := context.Background()
	tripID := env.createTrip(t, "alice", "bob", "charlie")

	hotel := env.createBill(t, "alice", tripID, "300", "bob", "charlie")
	env.createBill(t, "bob", tripID, "100", "charlie")

	_, err := env.transition("bob", hotel.ID, "bob", "submit_slip")
	require.NoError(t, err)
	_, err = env.transition("alice", hotel.ID, "bob", "approve")
	require.NoError(t, err)

	resp, err := env.bills.ListBillsByTrip(ctx, as("charlie", &api.ListBillsByTripRequest{TripID: tripID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Bills, 2)
	for _, b := range resp.Msg.Bills {
		if b.ID == hotel.ID {
			assert.Equal(t, 2, b.DebtCount)
			assertAmount(t, "150", b.Outstanding)
			assert.False(t, b.IsCompleted)
		}
	}

	_, err = env.bills.ListBillsByTrip(ctx, as("eve", &api.ListBillsByTripRequest{TripID: tripID}))
	assertCode(t, connect.CodePermissionDenied, err)
}

func TestUpdateBill(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob", "charlie", "dave")
	ctx := context.Background()
	tripID := env.createTrip(t, "alice", "bob", "charlie", "dave")
	bill := env.createBill(t, "alice", tripID, "300", "bob", "charlie")

	_, err := env.transition("bob", bill.ID, "bob", "submit_slip")
	require.NoError(t, err)
	_, err = env.transition("charlie", bill.ID, "charlie", "submit_slip")
	require.NoError(t, err)

	in := equalBill("350")
	in.Title = "Hotel + breakfast"
	in.SplitMode = "custom"
	in.ParticipantIDs = []string{"bob", "charlie", "dave"}
	in.CustomAmounts = map[string]decimal.Decimal{"bob": dec("150"), "charlie": dec("120"), "dave": dec("80")}

	resp, err := env.bills.UpdateBill(ctx, as("alice", &api.UpdateBillRequest{BillID: bill.ID, BillInput: in}))
	require.NoError(t, err)
	got := resp.Msg.Bill
	assert.Equal(t, "Hotel + breakfast", got.Title)
	assertAmount(t, "350", got.Total)
	assert.Equal(t, "custom", got.SplitMode)
	assert.Equal(t, "slip_sent", debtOf(got, "bob").Status, "unchanged amount keeps status")
	assert.Equal(t, "unpaid", debtOf(got, "charlie").Status, "changed amount starts over")
	assert.Equal(t, "unpaid", debtOf(got, "dave").Status)
	assert.Equal(t, bill.CreatedAt, got.CreatedAt)

	_, err = env.bills.UpdateBill(ctx, as("bob", &api.UpdateBillRequest{BillID: bill.ID, BillInput: in}))
	assertCode(t, connect.CodePermissionDenied, err)

	bad := in
	bad.Total = dec("999")
	_, err = env.bills.UpdateBill(ctx, as("alice", &api.UpdateBillRequest{BillID: bill.ID, BillInput: bad}))
	assertCode(t, connect.CodeInvalidArgument, err)

	stored, err := env.store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Debts, 3)
	assert.True(t, stored.Total.Equal(dec("350")))
}

func TestDeleteBill(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob")
	ctx := context.Background()
	bill := env.createBill(t, "alice", "", "50", "bob")

	_, err := env.bills.DeleteBill(ctx, as("bob", &api.DeleteBillRequest{BillID: bill.ID}))
	assertCode(t, connect.CodePermissionDenied, err)

	_, err = env.bills.DeleteBill(ctx, as("alice", &api.DeleteBillRequest{BillID: bill.ID}))
	require.NoError(t, err)

	_, err = env.bills.GetBill(ctx, as("alice", &api.GetBillRequest{BillID: bill.ID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestUploads_Disabled(t *testing.T) {
	env := setupTestServer(t)
	env.seedUsers(t, "alice", "bob")
	ctx := context.Background()

	_, err := env.bills.RequestUploadURL(ctx, as("bob", &api.RequestUploadURLRequest{Kind: "slip"}))
	assertCode(t, connect.CodeUnimplemented, err)

	// without a bucket, slip refs are taken as given
	bill := env.createBill(t, "alice", "", "50", "bob")
	resp, err := env.bills.TransitionDebt(ctx, as("bob", &api.TransitionDebtRequest{
		BillID: bill.ID, ParticipantID: "bob", Action: "submit_slip", SlipRef: "transfer #991",
	}))
	require.NoError(t, err)
	assert.Equal(t, "transfer #991", debtOf(resp.Msg.Bill, "bob").SlipRef)

	_, err = env.bills.GetSlipURL(ctx, as("alice", &api.GetSlipURLRequest{BillID: bill.ID, ParticipantID: "bob"}))
	assertCode(t, connect.CodeUnimplemented, err)
}

func TestUploads_SlipFlow(t *testing.T) {
	env := setupTestServer(t, WithPresigner(fakePresigner{}))
	env.seedUsers(t, "alice", "bob", "charlie")
	ctx := context.Background()
	bill := env.createBill(t, "alice", "", "100", "bob", "charlie")

	_, err := env.bills.RequestUploadURL(ctx, as("bob", &api.RequestUploadURLRequest{Kind: "avatar"}))
	assertCode(t, connect.CodeInvalidArgument, err)
	_, err = env.bills.RequestUploadURL(ctx, as("bob", &api.RequestUploadURLRequest{Kind: "video"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	up, err := env.bills.RequestUploadURL(ctx, as("bob", &api.RequestUploadURLRequest{Kind: "slip"}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Msg.Key, "slip/"))
	assert.Contains(t, up.Msg.Key, "/bob/")
	assert.NotEmpty(t, up.Msg.UploadURL)
	assert.NotZero(t, up.Msg.ExpiresAt)

	// charlie cannot submit bob's upload as their own slip
	_, err = env.bills.TransitionDebt(ctx, as("charlie", &api.TransitionDebtRequest{
		BillID: bill.ID, ParticipantID: "charlie", Action: "submit_slip", SlipRef: up.Msg.Key,
	}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.bills.GetSlipURL(ctx, as("alice", &api.GetSlipURLRequest{BillID: bill.ID, ParticipantID: "bob"}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.bills.TransitionDebt(ctx, as("bob", &api.TransitionDebtRequest{
		BillID: bill.ID, ParticipantID: "bob", Action: "submit_slip", SlipRef: up.Msg.Key,
	}))
	require.NoError(t, err)

	slip, err := env.bills.GetSlipURL(ctx, as("alice", &api.GetSlipURLRequest{BillID: bill.ID, ParticipantID: "bob"}))
	require.NoError(t, err)
	assert.Contains(t, slip.Msg.URL, up.Msg.Key)

	_, err = env.bills.GetSlipURL(ctx, as("charlie", &api.GetSlipURLRequest{BillID: bill.ID, ParticipantID: "bob"}))
	assertCode(t, connect.CodePermissionDenied, err)
}

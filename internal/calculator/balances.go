package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripsplit/internal/models"
)

// settleFloor ignores leftovers below one cent when matching transfers.
var settleFloor = decimal.New(1, -2)

// MemberBalance is one trip member's position across outstanding debts.
type MemberBalance struct {
	MemberID   string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	OwedToThem decimal.Decimal // Outstanding amount others owe this member
	TheyOwe    decimal.Decimal // Outstanding amount this member owes others
}

// Transfer is a suggested payment from one member to another.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// CalculateTripBalances aggregates all non-verified debts across bills
// into per-member balances, then simplifies them into a list of transfers.
//
// Algorithm:
//   - For each outstanding debt: creditor is owed +amount, debtor owes amount
//   - Net balance = owed to them - they owe
//   - Transfers: greedy matching of largest debtor with largest creditor
//
// Members are returned sorted by ID so results are deterministic.
func CalculateTripBalances(bills []models.Bill) ([]MemberBalance, []Transfer) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{MemberID: id}
			balances[id] = b
		}
		return b
	}

	for _, bill := range bills {
		for _, d := range bill.Debts {
			if d.Status == models.DebtVerified {
				continue
			}
			creditor := get(bill.CreditorID)
			creditor.OwedToThem = creditor.OwedToThem.Add(d.Amount)
			debtor := get(d.ParticipantID)
			debtor.TheyOwe = debtor.TheyOwe.Add(d.Amount)
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.OwedToThem.Sub(b.TheyOwe)
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberID < memberBalances[j].MemberID
	})

	return memberBalances, simplify(memberBalances)
}

func simplify(memberBalances []MemberBalance) []Transfer {
	type position struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []position
	for _, b := range memberBalances {
		switch {
		case b.NetBalance.IsPositive():
			creditors = append(creditors, position{b.MemberID, b.NetBalance})
		case b.NetBalance.IsNegative():
			debtors = append(debtors, position{b.MemberID, b.NetBalance.Neg()})
		}
	}

	byAmount := func(ps []position) {
		sort.SliceStable(ps, func(i, j int) bool {
			return ps[i].amount.GreaterThan(ps[j].amount)
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		if amount.GreaterThanOrEqual(settleFloor) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(settleFloor) {
			i++
		}
		if creditors[j].amount.LessThan(settleFloor) {
			j++
		}
	}
	return transfers
}

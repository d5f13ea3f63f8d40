package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

const billColumns = `id, trip_id, title, total, payment_method, payment_value, creditor_id, split_mode, is_completed, created_at`

func scanBill(row scanner) (*models.Bill, error) {
	var (
		bill   models.Bill
		tripID sql.NullString
		method string
		mode   string
	)
	err := row.Scan(
		&bill.ID,
		&tripID,
		&bill.Title,
		&bill.Total,
		&method,
		&bill.PaymentValue,
		&bill.CreditorID,
		&mode,
		&bill.IsCompleted,
		&bill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	bill.TripID = tripID.String

	if bill.PaymentMethod, err = models.ParsePaymentMethod(method); err != nil {
		return nil, fmt.Errorf("bill %s: %w", bill.ID, err)
	}
	if bill.SplitMode, err = models.ParseSplitMode(mode); err != nil {
		return nil, fmt.Errorf("bill %s: %w", bill.ID, err)
	}
	return &bill, nil
}

// CreateBill persists a new bill and its debts in one transaction.
func (s *SQLStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(ctx context.Context, c conn) error {
		_, err := c.exec(ctx, `
			INSERT INTO bills (`+billColumns+`, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID,
			nullable(bill.TripID),
			bill.Title,
			bill.Total,
			string(bill.PaymentMethod),
			bill.PaymentValue,
			bill.CreditorID,
			string(bill.SplitMode),
			bill.IsCompleted,
			bill.CreatedAt,
			bill.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}
		return insertDebts(ctx, c, bill.ID, bill.Debts, bill.CreatedAt)
	})
}

func insertDebts(ctx context.Context, c conn, billID string, debts []models.Debt, now int64) error {
	for i := range debts {
		debt := &debts[i]
		if debt.UpdatedAt == 0 {
			debt.UpdatedAt = now
		}
		_, err := c.exec(ctx, `
			INSERT INTO debts (bill_id, participant_id, seq, amount, status, slip_ref, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			billID,
			debt.ParticipantID,
			i,
			debt.Amount,
			string(debt.Status),
			debt.SlipRef,
			debt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert debt: %w", err)
		}
	}
	return nil
}

// GetBill retrieves a bill by ID, including its debts in selection order.
func (s *SQLStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return getBill(ctx, s.conn(), billID, "")
}

func getBill(ctx context.Context, c conn, billID, suffix string) (*models.Bill, error) {
	bill, err := scanBill(c.queryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`+suffix, billID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	debts, err := loadDebts(ctx, c,
		"SELECT bill_id, participant_id, amount, status, slip_ref, updated_at FROM debts WHERE bill_id = ? ORDER BY seq",
		billID)
	if err != nil {
		return nil, err
	}
	bill.Debts = debts[bill.ID]
	return bill, nil
}

// loadDebts runs a debts query and groups the rows by bill ID.
func loadDebts(ctx context.Context, c conn, query string, args ...any) (map[string][]models.Debt, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get debts: %w", err)
	}
	defer rows.Close()

	debts := make(map[string][]models.Debt)
	for rows.Next() {
		var (
			billID string
			status string
			debt   models.Debt
		)
		if err := rows.Scan(&billID, &debt.ParticipantID, &debt.Amount, &status, &debt.SlipRef, &debt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		if debt.Status, err = models.ParseDebtStatus(status); err != nil {
			return nil, fmt.Errorf("bill %s: %w", billID, err)
		}
		debts[billID] = append(debts[billID], debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// ListBillsByTrip returns the bills of a trip, newest first.
func (s *SQLStore) ListBillsByTrip(ctx context.Context, tripID string) ([]*models.Bill, error) {
	c := s.conn()

	rows, err := c.query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE trip_id = ? ORDER BY created_at DESC, id`,
		tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	if len(bills) == 0 {
		return bills, nil
	}

	debts, err := loadDebts(ctx, c, `
		SELECT d.bill_id, d.participant_id, d.amount, d.status, d.slip_ref, d.updated_at
		FROM debts d
		JOIN bills b ON b.id = d.bill_id
		WHERE b.trip_id = ?
		ORDER BY d.bill_id, d.seq`,
		tripID)
	if err != nil {
		return nil, err
	}
	for _, bill := range bills {
		bill.Debts = debts[bill.ID]
	}
	return bills, nil
}

// UpdateBill applies fn to the stored bill and replaces the bill header
// and all debts with the result.
func (s *SQLStore) UpdateBill(ctx context.Context, billID string, fn storage.BillMutation) (*models.Bill, error) {
	var updated models.Bill
	err := s.withTx(ctx, func(ctx context.Context, c conn) error {
		current, err := getBill(ctx, c, billID, s.dialect.forUpdate())
		if err != nil {
			return err
		}

		next, err := fn(*current)
		if err != nil {
			return err
		}
		next.ID, next.CreatedAt = current.ID, current.CreatedAt

		now := time.Now().Unix()
		_, err = c.exec(ctx, `
			UPDATE bills
			SET trip_id = ?, title = ?, total = ?, payment_method = ?, payment_value = ?,
				creditor_id = ?, split_mode = ?, is_completed = ?, updated_at = ?
			WHERE id = ?`,
			nullable(next.TripID),
			next.Title,
			next.Total,
			string(next.PaymentMethod),
			next.PaymentValue,
			next.CreditorID,
			string(next.SplitMode),
			next.IsCompleted,
			now,
			next.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}

		if _, err := c.exec(ctx, "DELETE FROM debts WHERE bill_id = ?", next.ID); err != nil {
			return fmt.Errorf("failed to clear debts: %w", err)
		}
		next.Debts = append([]models.Debt(nil), next.Debts...)
		if err := insertDebts(ctx, c, next.ID, next.Debts, now); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateDebt applies fn to the stored bill and writes back only the debts
// whose status or slip changed, together with the completion flag.
func (s *SQLStore) UpdateDebt(ctx context.Context, billID string, fn storage.BillMutation) (*models.Bill, error) {
	var updated models.Bill
	err := s.withTx(ctx, func(ctx context.Context, c conn) error {
		current, err := getBill(ctx, c, billID, s.dialect.forUpdate())
		if err != nil {
			return err
		}

		next, err := fn(*current)
		if err != nil {
			return err
		}
		if len(next.Debts) != len(current.Debts) {
			return fmt.Errorf("bill %s: debt set changed during status update", billID)
		}

		now := time.Now().Unix()
		next.Debts = append([]models.Debt(nil), next.Debts...)
		for i := range next.Debts {
			debt := &next.Debts[i]
			prev := current.Debts[i]
			if debt.ParticipantID != prev.ParticipantID {
				return fmt.Errorf("bill %s: debt order changed during status update", billID)
			}
			if debt.Status == prev.Status && debt.SlipRef == prev.SlipRef {
				continue
			}
			debt.UpdatedAt = now
			res, err := c.exec(ctx, `
				UPDATE debts SET status = ?, slip_ref = ?, updated_at = ?
				WHERE bill_id = ? AND participant_id = ?`,
				string(debt.Status), debt.SlipRef, debt.UpdatedAt,
				billID, debt.ParticipantID,
			)
			if err != nil {
				return fmt.Errorf("failed to update debt: %w", err)
			}
			if err := expectOneRow(res, "debt", debt.ParticipantID); err != nil {
				return err
			}
		}

		_, err = c.exec(ctx,
			"UPDATE bills SET is_completed = ?, updated_at = ? WHERE id = ?",
			next.IsCompleted, now, billID,
		)
		if err != nil {
			return fmt.Errorf("failed to update bill completion: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBill deletes a bill; its debts cascade.
func (s *SQLStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.conn().exec(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return expectOneRow(res, "bill", billID)
}

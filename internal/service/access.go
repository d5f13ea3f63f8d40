package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
)

var errUnknownParticipant = fmt.Errorf("%w: unknown participant", calculator.ErrValidation)

// memberTrip loads a trip and checks that userID belongs to it.
func memberTrip(ctx context.Context, trips storage.TripStore, tripID, userID string) (*models.Trip, error) {
	trip, err := trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.HasMember(userID) {
		return nil, errNotTripMember
	}
	return trip, nil
}

// canViewBill reports whether userID may read bill: its parties always can,
// and so can members of the owning trip.
func canViewBill(ctx context.Context, trips storage.TripStore, bill *models.Bill, userID string) error {
	if bill.IsParty(userID) {
		return nil
	}
	if bill.TripID == "" {
		return errNotBillParty
	}
	if _, err := memberTrip(ctx, trips, bill.TripID, userID); err != nil {
		if errors.Is(err, errNotTripMember) {
			return errNotBillParty
		}
		return err
	}
	return nil
}

// resolveUsers loads every id and fails if any is unregistered.
func resolveUsers(ctx context.Context, users storage.UserStore, ids []string) (map[string]*models.User, error) {
	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownParticipant, id)
		}
	}
	return found, nil
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first occurrence order.
func uniqueIDs(ids ...string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// billPartyIDs lists the creditor followed by every debtor.
func billPartyIDs(bill *models.Bill) []string {
	ids := make([]string, 0, len(bill.Debts)+1)
	ids = append(ids, bill.CreditorID)
	for _, d := range bill.Debts {
		ids = append(ids, d.ParticipantID)
	}
	return ids
}

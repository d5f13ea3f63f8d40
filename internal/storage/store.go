// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tripsplit/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
)

// BillMutation transforms a loaded bill into its next state.
// Returning an error aborts the surrounding transaction.
type BillMutation func(bill models.Bill) (models.Bill, error)

// UserStore persists participants.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return ErrNotFound for unknown users.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser overwrites the profile fields of an existing user.
	UpdateUser(ctx context.Context, user *models.User) error
}

// TripStore persists trips and their membership.
type TripStore interface {
	// CreateTrip assigns ID and CreatedAt when unset.
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsByMember returns the trips userID belongs to, newest first.
	ListTripsByMember(ctx context.Context, userID string) ([]*models.Trip, error)

	// AddTripMembers adds users to a trip. Existing members are ignored.
	AddTripMembers(ctx context.Context, tripID string, userIDs []string) error

	// DeleteTrip removes the trip with its bills and debts.
	DeleteTrip(ctx context.Context, tripID string) error
}

// BillStore persists bills and their debts.
type BillStore interface {
	// CreateBill writes the bill and all of its debts in one transaction.
	// ID and CreatedAt are assigned when unset.
	CreateBill(ctx context.Context, bill *models.Bill) error

	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsByTrip returns the bills of a trip, newest first.
	ListBillsByTrip(ctx context.Context, tripID string) ([]*models.Bill, error)

	// UpdateBill loads the bill, applies fn and replaces the stored bill
	// and its debts with the result atomically.
	UpdateBill(ctx context.Context, billID string, fn BillMutation) (*models.Bill, error)

	// UpdateDebt loads the bill, applies fn and persists the changed debt
	// rows together with the derived completion flag atomically.
	UpdateDebt(ctx context.Context, billID string, fn BillMutation) (*models.Bill, error)

	DeleteBill(ctx context.Context, billID string) error
}

// Store defines the full persistence surface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	TripStore
	BillStore

	// Close releases any resources held by the store.
	Close() error
}

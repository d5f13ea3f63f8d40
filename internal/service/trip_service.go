package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/storage"
	"github.com/mmynk/tripsplit/pkg/api"
)

var errEmptyTripName = fmt.Errorf("%w: trip name is required", calculator.ErrValidation)

// TripService implements the Connect TripService.
type TripService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store, logger *slog.Logger) *TripService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TripService{store: store, logger: logger}
}

// CreateTrip creates a trip. The caller always becomes its first member.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateTrip request received", "user_id", userID, "members_count", len(req.Msg.MemberIDs))

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEmptyTripName)
	}

	members := uniqueIDs(append([]string{userID}, req.Msg.MemberIDs...)...)
	if _, err := resolveUsers(ctx, s.store, members); err != nil {
		return nil, toConnectError(ctx, s.logger, "create trip", err)
	}

	trip := &models.Trip{Name: name, Members: members}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, toConnectError(ctx, s.logger, "create trip", err)
	}

	s.logger.Info("Trip created", "trip_id", trip.ID)
	return connect.NewResponse(&api.CreateTripResponse{Trip: toAPITrip(trip)}), nil
}

// GetTrip returns a trip with its member profiles.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	trip, err := memberTrip(ctx, s.store, req.Msg.TripID, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get trip", err)
	}

	users, err := s.store.GetUsersByIDs(ctx, trip.Members)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get trip", err)
	}
	members := make([]*api.User, 0, len(trip.Members))
	for _, id := range trip.Members {
		if u, ok := users[id]; ok {
			members = append(members, toAPIUser(u))
		}
	}

	return connect.NewResponse(&api.GetTripResponse{Trip: toAPITrip(trip), Members: members}), nil
}

// ListTrips returns the caller's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	trips, err := s.store.ListTripsByMember(ctx, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "list trips", err)
	}

	out := make([]*api.Trip, len(trips))
	for i, t := range trips {
		out[i] = toAPITrip(t)
	}

	s.logger.Info("ListTrips successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// AddMembers adds participants to a trip by ID or registered email.
// Only existing members can invite.
func (s *TripService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("AddMembers request received", "trip_id", req.Msg.TripID, "ids", len(req.Msg.MemberIDs), "emails", len(req.Msg.Emails))

	if _, err := memberTrip(ctx, s.store, req.Msg.TripID, userID); err != nil {
		return nil, toConnectError(ctx, s.logger, "add members", err)
	}

	ids := uniqueIDs(req.Msg.MemberIDs...)
	if _, err := resolveUsers(ctx, s.store, ids); err != nil {
		return nil, toConnectError(ctx, s.logger, "add members", err)
	}
	for _, email := range req.Msg.Emails {
		u, err := s.store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: no participant registered as %q", errUnknownParticipant, email))
		}
		if err != nil {
			return nil, toConnectError(ctx, s.logger, "add members", err)
		}
		ids = append(ids, u.ID)
	}
	ids = uniqueIDs(ids...)

	if len(ids) > 0 {
		if err := s.store.AddTripMembers(ctx, req.Msg.TripID, ids); err != nil {
			return nil, toConnectError(ctx, s.logger, "add members", err)
		}
	}

	trip, err := s.store.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "add members", err)
	}

	s.logger.Info("Members added", "trip_id", trip.ID, "members_count", len(trip.Members))
	return connect.NewResponse(&api.AddMembersResponse{Trip: toAPITrip(trip)}), nil
}

// GetTripBalances nets every outstanding debt in the trip per member and
// suggests the transfers that settle them.
func (s *TripService) GetTripBalances(ctx context.Context, req *connect.Request[api.GetTripBalancesRequest]) (*connect.Response[api.GetTripBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	trip, err := memberTrip(ctx, s.store, req.Msg.TripID, userID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get trip balances", err)
	}

	bills, err := s.store.ListBillsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get trip balances", err)
	}
	values := make([]models.Bill, len(bills))
	for i, b := range bills {
		values[i] = *b
	}
	balances, transfers := calculator.CalculateTripBalances(values)

	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.MemberID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, toConnectError(ctx, s.logger, "get trip balances", err)
	}

	resp := &api.GetTripBalancesResponse{
		Balances:  make([]*api.MemberBalance, len(balances)),
		Transfers: make([]*api.Transfer, len(transfers)),
	}
	for i, b := range balances {
		mb := &api.MemberBalance{
			MemberID:   b.MemberID,
			NetBalance: b.NetBalance,
			OwedToThem: b.OwedToThem,
			TheyOwe:    b.TheyOwe,
		}
		if u, ok := users[b.MemberID]; ok {
			mb.DisplayName = u.DisplayName
		}
		resp.Balances[i] = mb
	}
	for i, t := range transfers {
		resp.Transfers[i] = &api.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}

	s.logger.Info("GetTripBalances successful", "trip_id", trip.ID, "bills", len(bills), "transfers", len(transfers))
	return connect.NewResponse(resp), nil
}

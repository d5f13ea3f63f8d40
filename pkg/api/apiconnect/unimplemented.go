package apiconnect

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/pkg/api"
)

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}

// UnimplementedAuthServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAuthServiceHandler struct{}

func (UnimplementedAuthServiceHandler) Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return nil, unimplemented(AuthServiceRegisterProcedure)
}

func (UnimplementedAuthServiceHandler) Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return nil, unimplemented(AuthServiceLoginProcedure)
}

func (UnimplementedAuthServiceHandler) GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return nil, unimplemented(AuthServiceGetCurrentUserProcedure)
}

func (UnimplementedAuthServiceHandler) UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return nil, unimplemented(AuthServiceUpdateProfileProcedure)
}

// UnimplementedTripServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedTripServiceHandler struct{}

func (UnimplementedTripServiceHandler) CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	return nil, unimplemented(TripServiceCreateTripProcedure)
}

func (UnimplementedTripServiceHandler) GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	return nil, unimplemented(TripServiceGetTripProcedure)
}

func (UnimplementedTripServiceHandler) ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	return nil, unimplemented(TripServiceListTripsProcedure)
}

func (UnimplementedTripServiceHandler) AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return nil, unimplemented(TripServiceAddMembersProcedure)
}

func (UnimplementedTripServiceHandler) GetTripBalances(context.Context, *connect.Request[api.GetTripBalancesRequest]) (*connect.Response[api.GetTripBalancesResponse], error) {
	return nil, unimplemented(TripServiceGetTripBalancesProcedure)
}

// UnimplementedBillServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBillServiceHandler struct{}

func (UnimplementedBillServiceHandler) ComputeSplit(context.Context, *connect.Request[api.ComputeSplitRequest]) (*connect.Response[api.ComputeSplitResponse], error) {
	return nil, unimplemented(BillServiceComputeSplitProcedure)
}

func (UnimplementedBillServiceHandler) CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return nil, unimplemented(BillServiceCreateBillProcedure)
}

func (UnimplementedBillServiceHandler) GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return nil, unimplemented(BillServiceGetBillProcedure)
}

func (UnimplementedBillServiceHandler) ListBillsByTrip(context.Context, *connect.Request[api.ListBillsByTripRequest]) (*connect.Response[api.ListBillsByTripResponse], error) {
	return nil, unimplemented(BillServiceListBillsByTripProcedure)
}

func (UnimplementedBillServiceHandler) UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	return nil, unimplemented(BillServiceUpdateBillProcedure)
}

func (UnimplementedBillServiceHandler) DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return nil, unimplemented(BillServiceDeleteBillProcedure)
}

func (UnimplementedBillServiceHandler) TransitionDebt(context.Context, *connect.Request[api.TransitionDebtRequest]) (*connect.Response[api.TransitionDebtResponse], error) {
	return nil, unimplemented(BillServiceTransitionDebtProcedure)
}

func (UnimplementedBillServiceHandler) RequestUploadURL(context.Context, *connect.Request[api.RequestUploadURLRequest]) (*connect.Response[api.RequestUploadURLResponse], error) {
	return nil, unimplemented(BillServiceRequestUploadURLProcedure)
}

func (UnimplementedBillServiceHandler) GetSlipURL(context.Context, *connect.Request[api.GetSlipURLRequest]) (*connect.Response[api.GetSlipURLResponse], error) {
	return nil, unimplemented(BillServiceGetSlipURLProcedure)
}

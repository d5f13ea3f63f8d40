package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/pkg/api"
)

// TripServiceName is the fully-qualified name of the TripService service.
const TripServiceName = "tripsplit.v1.TripService"

const (
	TripServiceCreateTripProcedure      = "/tripsplit.v1.TripService/CreateTrip"
	TripServiceGetTripProcedure         = "/tripsplit.v1.TripService/GetTrip"
	TripServiceListTripsProcedure       = "/tripsplit.v1.TripService/ListTrips"
	TripServiceAddMembersProcedure      = "/tripsplit.v1.TripService/AddMembers"
	TripServiceGetTripBalancesProcedure = "/tripsplit.v1.TripService/GetTripBalances"
)

// TripServiceHandler is implemented by the server side of TripService.
type TripServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	GetTripBalances(context.Context, *connect.Request[api.GetTripBalancesRequest]) (*connect.Response[api.GetTripBalancesResponse], error)
}

// NewTripServiceHandler builds an HTTP handler for svc. It returns the path
// to mount the handler on.
func NewTripServiceHandler(svc TripServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createTrip := connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...)
	getTrip := connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...)
	listTrips := connect.NewUnaryHandler(TripServiceListTripsProcedure, svc.ListTrips, opts...)
	addMembers := connect.NewUnaryHandler(TripServiceAddMembersProcedure, svc.AddMembers, opts...)
	getTripBalances := connect.NewUnaryHandler(TripServiceGetTripBalancesProcedure, svc.GetTripBalances, opts...)

	return "/" + TripServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TripServiceCreateTripProcedure:
			createTrip.ServeHTTP(w, r)
		case TripServiceGetTripProcedure:
			getTrip.ServeHTTP(w, r)
		case TripServiceListTripsProcedure:
			listTrips.ServeHTTP(w, r)
		case TripServiceAddMembersProcedure:
			addMembers.ServeHTTP(w, r)
		case TripServiceGetTripBalancesProcedure:
			getTripBalances.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// TripServiceClient is a client for TripService.
type TripServiceClient interface {
	CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error)
	AddMembers(context.Context, *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error)
	GetTripBalances(context.Context, *connect.Request[api.GetTripBalancesRequest]) (*connect.Response[api.GetTripBalancesResponse], error)
}

// NewTripServiceClient constructs a client for the service at baseURL.
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TripServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &tripServiceClient{
		createTrip:      connect.NewClient[api.CreateTripRequest, api.CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		getTrip:         connect.NewClient[api.GetTripRequest, api.GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		listTrips:       connect.NewClient[api.ListTripsRequest, api.ListTripsResponse](httpClient, baseURL+TripServiceListTripsProcedure, opts...),
		addMembers:      connect.NewClient[api.AddMembersRequest, api.AddMembersResponse](httpClient, baseURL+TripServiceAddMembersProcedure, opts...),
		getTripBalances: connect.NewClient[api.GetTripBalancesRequest, api.GetTripBalancesResponse](httpClient, baseURL+TripServiceGetTripBalancesProcedure, opts...),
	}
}

type tripServiceClient struct {
	createTrip      *connect.Client[api.CreateTripRequest, api.CreateTripResponse]
	getTrip         *connect.Client[api.GetTripRequest, api.GetTripResponse]
	listTrips       *connect.Client[api.ListTripsRequest, api.ListTripsResponse]
	addMembers      *connect.Client[api.AddMembersRequest, api.AddMembersResponse]
	getTripBalances *connect.Client[api.GetTripBalancesRequest, api.GetTripBalancesResponse]
}

func (c *tripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *tripServiceClient) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *tripServiceClient) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *tripServiceClient) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *tripServiceClient) GetTripBalances(ctx context.Context, req *connect.Request[api.GetTripBalancesRequest]) (*connect.Response[api.GetTripBalancesResponse], error) {
	return c.getTripBalances.CallUnary(ctx, req)
}

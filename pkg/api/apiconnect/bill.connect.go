package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tripsplit/pkg/api"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "tripsplit.v1.BillService"

const (
	BillServiceComputeSplitProcedure     = "/tripsplit.v1.BillService/ComputeSplit"
	BillServiceCreateBillProcedure       = "/tripsplit.v1.BillService/CreateBill"
	BillServiceGetBillProcedure          = "/tripsplit.v1.BillService/GetBill"
	BillServiceListBillsByTripProcedure  = "/tripsplit.v1.BillService/ListBillsByTrip"
	BillServiceUpdateBillProcedure       = "/tripsplit.v1.BillService/UpdateBill"
	BillServiceDeleteBillProcedure       = "/tripsplit.v1.BillService/DeleteBill"
	BillServiceTransitionDebtProcedure   = "/tripsplit.v1.BillService/TransitionDebt"
	BillServiceRequestUploadURLProcedure = "/tripsplit.v1.BillService/RequestUploadURL"
	BillServiceGetSlipURLProcedure       = "/tripsplit.v1.BillService/GetSlipURL"
)

// BillServiceHandler is implemented by the server side of BillService.
type BillServiceHandler interface {
	ComputeSplit(context.Context, *connect.Request[api.ComputeSplitRequest]) (*connect.Response[api.ComputeSplitResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ListBillsByTrip(context.Context, *connect.Request[api.ListBillsByTripRequest]) (*connect.Response[api.ListBillsByTripResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	TransitionDebt(context.Context, *connect.Request[api.TransitionDebtRequest]) (*connect.Response[api.TransitionDebtResponse], error)
	RequestUploadURL(context.Context, *connect.Request[api.RequestUploadURLRequest]) (*connect.Response[api.RequestUploadURLResponse], error)
	GetSlipURL(context.Context, *connect.Request[api.GetSlipURLRequest]) (*connect.Response[api.GetSlipURLResponse], error)
}

// NewBillServiceHandler builds an HTTP handler for svc. It returns the path
// to mount the handler on.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	handlers := map[string]http.Handler{
		BillServiceComputeSplitProcedure:     connect.NewUnaryHandler(BillServiceComputeSplitProcedure, svc.ComputeSplit, opts...),
		BillServiceCreateBillProcedure:       connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...),
		BillServiceGetBillProcedure:          connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...),
		BillServiceListBillsByTripProcedure:  connect.NewUnaryHandler(BillServiceListBillsByTripProcedure, svc.ListBillsByTrip, opts...),
		BillServiceUpdateBillProcedure:       connect.NewUnaryHandler(BillServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		BillServiceDeleteBillProcedure:       connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...),
		BillServiceTransitionDebtProcedure:   connect.NewUnaryHandler(BillServiceTransitionDebtProcedure, svc.TransitionDebt, opts...),
		BillServiceRequestUploadURLProcedure: connect.NewUnaryHandler(BillServiceRequestUploadURLProcedure, svc.RequestUploadURL, opts...),
		BillServiceGetSlipURLProcedure:       connect.NewUnaryHandler(BillServiceGetSlipURLProcedure, svc.GetSlipURL, opts...),
	}

	return "/" + BillServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// BillServiceClient is a client for BillService.
type BillServiceClient interface {
	ComputeSplit(context.Context, *connect.Request[api.ComputeSplitRequest]) (*connect.Response[api.ComputeSplitResponse], error)
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ListBillsByTrip(context.Context, *connect.Request[api.ListBillsByTripRequest]) (*connect.Response[api.ListBillsByTripResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	TransitionDebt(context.Context, *connect.Request[api.TransitionDebtRequest]) (*connect.Response[api.TransitionDebtResponse], error)
	RequestUploadURL(context.Context, *connect.Request[api.RequestUploadURLRequest]) (*connect.Response[api.RequestUploadURLResponse], error)
	GetSlipURL(context.Context, *connect.Request[api.GetSlipURLRequest]) (*connect.Response[api.GetSlipURLResponse], error)
}

// NewBillServiceClient constructs a client for the service at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &billServiceClient{
		computeSplit:     connect.NewClient[api.ComputeSplitRequest, api.ComputeSplitResponse](httpClient, baseURL+BillServiceComputeSplitProcedure, opts...),
		createBill:       connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		getBill:          connect.NewClient[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		listBillsByTrip:  connect.NewClient[api.ListBillsByTripRequest, api.ListBillsByTripResponse](httpClient, baseURL+BillServiceListBillsByTripProcedure, opts...),
		updateBill:       connect.NewClient[api.UpdateBillRequest, api.UpdateBillResponse](httpClient, baseURL+BillServiceUpdateBillProcedure, opts...),
		deleteBill:       connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		transitionDebt:   connect.NewClient[api.TransitionDebtRequest, api.TransitionDebtResponse](httpClient, baseURL+BillServiceTransitionDebtProcedure, opts...),
		requestUploadURL: connect.NewClient[api.RequestUploadURLRequest, api.RequestUploadURLResponse](httpClient, baseURL+BillServiceRequestUploadURLProcedure, opts...),
		getSlipURL:       connect.NewClient[api.GetSlipURLRequest, api.GetSlipURLResponse](httpClient, baseURL+BillServiceGetSlipURLProcedure, opts...),
	}
}

type billServiceClient struct {
	computeSplit     *connect.Client[api.ComputeSplitRequest, api.ComputeSplitResponse]
	createBill       *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	getBill          *connect.Client[api.GetBillRequest, api.GetBillResponse]
	listBillsByTrip  *connect.Client[api.ListBillsByTripRequest, api.ListBillsByTripResponse]
	updateBill       *connect.Client[api.UpdateBillRequest, api.UpdateBillResponse]
	deleteBill       *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
	transitionDebt   *connect.Client[api.TransitionDebtRequest, api.TransitionDebtResponse]
	requestUploadURL *connect.Client[api.RequestUploadURLRequest, api.RequestUploadURLResponse]
	getSlipURL       *connect.Client[api.GetSlipURLRequest, api.GetSlipURLResponse]
}

func (c *billServiceClient) ComputeSplit(ctx context.Context, req *connect.Request[api.ComputeSplitRequest]) (*connect.Response[api.ComputeSplitResponse], error) {
	return c.computeSplit.CallUnary(ctx, req)
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ListBillsByTrip(ctx context.Context, req *connect.Request[api.ListBillsByTripRequest]) (*connect.Response[api.ListBillsByTripResponse], error) {
	return c.listBillsByTrip.CallUnary(ctx, req)
}

func (c *billServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *billServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *billServiceClient) TransitionDebt(ctx context.Context, req *connect.Request[api.TransitionDebtRequest]) (*connect.Response[api.TransitionDebtResponse], error) {
	return c.transitionDebt.CallUnary(ctx, req)
}

func (c *billServiceClient) RequestUploadURL(ctx context.Context, req *connect.Request[api.RequestUploadURLRequest]) (*connect.Response[api.RequestUploadURLResponse], error) {
	return c.requestUploadURL.CallUnary(ctx, req)
}

func (c *billServiceClient) GetSlipURL(ctx context.Context, req *connect.Request[api.GetSlipURLRequest]) (*connect.Response[api.GetSlipURLResponse], error) {
	return c.getSlipURL.CallUnary(ctx, req)
}

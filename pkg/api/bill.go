package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the BillService.
const BillServiceName = "patungan.v1.BillService"

const (
	BillServiceGetBillProcedure        = "/patungan.v1.BillService/GetBill"
	BillServiceSaveBillProcedure       = "/patungan.v1.BillService/SaveBill"
	BillServiceDeleteBillProcedure     = "/patungan.v1.BillService/DeleteBill"
	BillServiceListBillsProcedure      = "/patungan.v1.BillService/ListBills"
	BillServiceCalculateSplitProcedure = "/patungan.v1.BillService/CalculateSplit"
	BillServiceShareBillProcedure      = "/patungan.v1.BillService/ShareBill"
	BillServiceGetSharedBillProcedure  = "/patungan.v1.BillService/GetSharedBill"
)

// BillServiceHandler is implemented by the server.
type BillServiceHandler interface {
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error)
	SaveBill(context.Context, *connect.Request[SaveBillRequest]) (*connect.Response[SaveBillResponse], error)
	DeleteBill(context.Context, *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error)
	ListBills(context.Context, *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error)
	CalculateSplit(context.Context, *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error)
	ShareBill(context.Context, *connect.Request[ShareBillRequest]) (*connect.Response[ShareBillResponse], error)
	GetSharedBill(context.Context, *connect.Request[GetSharedBillRequest]) (*connect.Response[GetSharedBillResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(BillServiceGetBillProcedure, connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...))
	mux.Handle(BillServiceSaveBillProcedure, connect.NewUnaryHandler(BillServiceSaveBillProcedure, svc.SaveBill, opts...))
	mux.Handle(BillServiceDeleteBillProcedure, connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...))
	mux.Handle(BillServiceListBillsProcedure, connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...))
	mux.Handle(BillServiceCalculateSplitProcedure, connect.NewUnaryHandler(BillServiceCalculateSplitProcedure, svc.CalculateSplit, opts...))
	mux.Handle(BillServiceShareBillProcedure, connect.NewUnaryHandler(BillServiceShareBillProcedure, svc.ShareBill, opts...))
	mux.Handle(BillServiceGetSharedBillProcedure, connect.NewUnaryHandler(BillServiceGetSharedBillProcedure, svc.GetSharedBill, opts...))
	return "/" + BillServiceName + "/", mux
}

// BillServiceClient calls a remote BillService.
type BillServiceClient struct {
	getBill        *connect.Client[GetBillRequest, GetBillResponse]
	saveBill       *connect.Client[SaveBillRequest, SaveBillResponse]
	deleteBill     *connect.Client[DeleteBillRequest, DeleteBillResponse]
	listBills      *connect.Client[ListBillsRequest, ListBillsResponse]
	calculateSplit *connect.Client[CalculateSplitRequest, CalculateSplitResponse]
	shareBill      *connect.Client[ShareBillRequest, ShareBillResponse]
	getSharedBill  *connect.Client[GetSharedBillRequest, GetSharedBillResponse]
}

// NewBillServiceClient constructs a client for the BillService at baseURL,
// for example http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	opts = clientOptions(opts)
	return &BillServiceClient{
		getBill:        connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		saveBill:       connect.NewClient[SaveBillRequest, SaveBillResponse](httpClient, baseURL+BillServiceSaveBillProcedure, opts...),
		deleteBill:     connect.NewClient[DeleteBillRequest, DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		listBills:      connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		calculateSplit: connect.NewClient[CalculateSplitRequest, CalculateSplitResponse](httpClient, baseURL+BillServiceCalculateSplitProcedure, opts...),
		shareBill:      connect.NewClient[ShareBillRequest, ShareBillResponse](httpClient, baseURL+BillServiceShareBillProcedure, opts...),
		getSharedBill:  connect.NewClient[GetSharedBillRequest, GetSharedBillResponse](httpClient, baseURL+BillServiceGetSharedBillProcedure, opts...),
	}
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) SaveBill(ctx context.Context, req *connect.Request[SaveBillRequest]) (*connect.Response[SaveBillResponse], error) {
	return c.saveBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteBill(ctx context.Context, req *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) CalculateSplit(ctx context.Context, req *connect.Request[CalculateSplitRequest]) (*connect.Response[CalculateSplitResponse], error) {
	return c.calculateSplit.CallUnary(ctx, req)
}

func (c *BillServiceClient) ShareBill(ctx context.Context, req *connect.Request[ShareBillRequest]) (*connect.Response[ShareBillResponse], error) {
	return c.shareBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetSharedBill(ctx context.Context, req *connect.Request[GetSharedBillRequest]) (*connect.Response[GetSharedBillResponse], error) {
	return c.getSharedBill.CallUnary(ctx, req)
}

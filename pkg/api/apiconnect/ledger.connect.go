package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "groupledger.v1.LedgerService"

// Procedure paths of LedgerService.
const (
	LedgerServicePreviewSplitProcedure    = "/groupledger.v1.LedgerService/PreviewSplit"
	LedgerServiceCreateEntryProcedure     = "/groupledger.v1.LedgerService/CreateEntry"
	LedgerServiceEditEntryProcedure       = "/groupledger.v1.LedgerService/EditEntry"
	LedgerServiceDeleteEntryProcedure     = "/groupledger.v1.LedgerService/DeleteEntry"
	LedgerServiceGetEntryProcedure        = "/groupledger.v1.LedgerService/GetEntry"
	LedgerServiceListEntriesProcedure     = "/groupledger.v1.LedgerService/ListEntries"
	LedgerServiceSettleProcedure          = "/groupledger.v1.LedgerService/Settle"
	LedgerServiceListSettlementsProcedure = "/groupledger.v1.LedgerService/ListSettlements"
)

// LedgerServiceClient is a client for the groupledger.v1.LedgerService service.
type LedgerServiceClient interface {
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateEntry(context.Context, *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error)
	EditEntry(context.Context, *connect.Request[api.EditEntryRequest]) (*connect.Response[api.EditEntryResponse], error)
	DeleteEntry(context.Context, *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error)
	GetEntry(context.Context, *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewLedgerServiceClient constructs a client for the groupledger.v1.LedgerService service.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		previewSplit:    connect.NewClient[api.PreviewSplitRequest, api.PreviewSplitResponse](httpClient, baseURL+LedgerServicePreviewSplitProcedure, opts...),
		createEntry:     connect.NewClient[api.CreateEntryRequest, api.CreateEntryResponse](httpClient, baseURL+LedgerServiceCreateEntryProcedure, opts...),
		editEntry:       connect.NewClient[api.EditEntryRequest, api.EditEntryResponse](httpClient, baseURL+LedgerServiceEditEntryProcedure, opts...),
		deleteEntry:     connect.NewClient[api.DeleteEntryRequest, api.DeleteEntryResponse](httpClient, baseURL+LedgerServiceDeleteEntryProcedure, opts...),
		getEntry:        connect.NewClient[api.GetEntryRequest, api.GetEntryResponse](httpClient, baseURL+LedgerServiceGetEntryProcedure, opts...),
		listEntries:     connect.NewClient[api.ListEntriesRequest, api.ListEntriesResponse](httpClient, baseURL+LedgerServiceListEntriesProcedure, opts...),
		settle:          connect.NewClient[api.SettleRequest, api.SettleResponse](httpClient, baseURL+LedgerServiceSettleProcedure, opts...),
		listSettlements: connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	previewSplit    *connect.Client[api.PreviewSplitRequest, api.PreviewSplitResponse]
	createEntry     *connect.Client[api.CreateEntryRequest, api.CreateEntryResponse]
	editEntry       *connect.Client[api.EditEntryRequest, api.EditEntryResponse]
	deleteEntry     *connect.Client[api.DeleteEntryRequest, api.DeleteEntryResponse]
	getEntry        *connect.Client[api.GetEntryRequest, api.GetEntryResponse]
	listEntries     *connect.Client[api.ListEntriesRequest, api.ListEntriesResponse]
	settle          *connect.Client[api.SettleRequest, api.SettleResponse]
	listSettlements *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

func (c *ledgerServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CreateEntry(ctx context.Context, req *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error) {
	return c.createEntry.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) EditEntry(ctx context.Context, req *connect.Request[api.EditEntryRequest]) (*connect.Response[api.EditEntryResponse], error) {
	return c.editEntry.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteEntry(ctx context.Context, req *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	return c.deleteEntry.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetEntry(ctx context.Context, req *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error) {
	return c.getEntry.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return c.listEntries.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	return c.settle.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// LedgerServiceHandler is an implementation of the groupledger.v1.LedgerService service.
type LedgerServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateEntry(context.Context, *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error)
	EditEntry(context.Context, *connect.Request[api.EditEntryRequest]) (*connect.Response[api.EditEntryResponse], error)
	DeleteEntry(context.Context, *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error)
	GetEntry(context.Context, *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	routes := map[string]http.Handler{
		LedgerServicePreviewSplitProcedure:    connect.NewUnaryHandler(LedgerServicePreviewSplitProcedure, svc.PreviewSplit, opts...),
		LedgerServiceCreateEntryProcedure:     connect.NewUnaryHandler(LedgerServiceCreateEntryProcedure, svc.CreateEntry, opts...),
		LedgerServiceEditEntryProcedure:       connect.NewUnaryHandler(LedgerServiceEditEntryProcedure, svc.EditEntry, opts...),
		LedgerServiceDeleteEntryProcedure:     connect.NewUnaryHandler(LedgerServiceDeleteEntryProcedure, svc.DeleteEntry, opts...),
		LedgerServiceGetEntryProcedure:        connect.NewUnaryHandler(LedgerServiceGetEntryProcedure, svc.GetEntry, opts...),
		LedgerServiceListEntriesProcedure:     connect.NewUnaryHandler(LedgerServiceListEntriesProcedure, svc.ListEntries, opts...),
		LedgerServiceSettleProcedure:          connect.NewUnaryHandler(LedgerServiceSettleProcedure, svc.Settle, opts...),
		LedgerServiceListSettlementsProcedure: connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...),
	}
	return "/" + LedgerServiceName + "/", routeHandler(routes)
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	return nil, unimplemented(LedgerServicePreviewSplitProcedure)
}

func (UnimplementedLedgerServiceHandler) CreateEntry(context.Context, *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error) {
	return nil, unimplemented(LedgerServiceCreateEntryProcedure)
}

func (UnimplementedLedgerServiceHandler) EditEntry(context.Context, *connect.Request[api.EditEntryRequest]) (*connect.Response[api.EditEntryResponse], error) {
	return nil, unimplemented(LedgerServiceEditEntryProcedure)
}

func (UnimplementedLedgerServiceHandler) DeleteEntry(context.Context, *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	return nil, unimplemented(LedgerServiceDeleteEntryProcedure)
}

func (UnimplementedLedgerServiceHandler) GetEntry(context.Context, *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error) {
	return nil, unimplemented(LedgerServiceGetEntryProcedure)
}

func (UnimplementedLedgerServiceHandler) ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return nil, unimplemented(LedgerServiceListEntriesProcedure)
}

func (UnimplementedLedgerServiceHandler) Settle(context.Context, *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	return nil, unimplemented(LedgerServiceSettleProcedure)
}

func (UnimplementedLedgerServiceHandler) ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return nil, unimplemented(LedgerServiceListSettlementsProcedure)
}

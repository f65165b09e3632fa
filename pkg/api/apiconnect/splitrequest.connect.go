package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/pkg/api"
)

// SplitRequestServiceName is the fully-qualified name of the SplitRequestService service.
const SplitRequestServiceName = "groupledger.v1.SplitRequestService"

// Procedure paths of SplitRequestService.
const (
	SplitRequestServiceCreateSplitRequestProcedure  = "/groupledger.v1.SplitRequestService/CreateSplitRequest"
	SplitRequestServiceGetSplitRequestProcedure     = "/groupledger.v1.SplitRequestService/GetSplitRequest"
	SplitRequestServiceListSplitRequestsProcedure   = "/groupledger.v1.SplitRequestService/ListSplitRequests"
	SplitRequestServiceMarkParticipantPaidProcedure = "/groupledger.v1.SplitRequestService/MarkParticipantPaid"
	SplitRequestServiceCancelSplitRequestProcedure  = "/groupledger.v1.SplitRequestService/CancelSplitRequest"
)

// SplitRequestServiceClient is a client for the groupledger.v1.SplitRequestService service.
type SplitRequestServiceClient interface {
	CreateSplitRequest(context.Context, *connect.Request[api.CreateSplitRequestRequest]) (*connect.Response[api.CreateSplitRequestResponse], error)
	GetSplitRequest(context.Context, *connect.Request[api.GetSplitRequestRequest]) (*connect.Response[api.GetSplitRequestResponse], error)
	ListSplitRequests(context.Context, *connect.Request[api.ListSplitRequestsRequest]) (*connect.Response[api.ListSplitRequestsResponse], error)
	MarkParticipantPaid(context.Context, *connect.Request[api.MarkParticipantPaidRequest]) (*connect.Response[api.MarkParticipantPaidResponse], error)
	CancelSplitRequest(context.Context, *connect.Request[api.CancelSplitRequestRequest]) (*connect.Response[api.CancelSplitRequestResponse], error)
}

// NewSplitRequestServiceClient constructs a client for the groupledger.v1.SplitRequestService service.
func NewSplitRequestServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitRequestServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &splitRequestServiceClient{
		createSplitRequest:  connect.NewClient[api.CreateSplitRequestRequest, api.CreateSplitRequestResponse](httpClient, baseURL+SplitRequestServiceCreateSplitRequestProcedure, opts...),
		getSplitRequest:     connect.NewClient[api.GetSplitRequestRequest, api.GetSplitRequestResponse](httpClient, baseURL+SplitRequestServiceGetSplitRequestProcedure, opts...),
		listSplitRequests:   connect.NewClient[api.ListSplitRequestsRequest, api.ListSplitRequestsResponse](httpClient, baseURL+SplitRequestServiceListSplitRequestsProcedure, opts...),
		markParticipantPaid: connect.NewClient[api.MarkParticipantPaidRequest, api.MarkParticipantPaidResponse](httpClient, baseURL+SplitRequestServiceMarkParticipantPaidProcedure, opts...),
		cancelSplitRequest:  connect.NewClient[api.CancelSplitRequestRequest, api.CancelSplitRequestResponse](httpClient, baseURL+SplitRequestServiceCancelSplitRequestProcedure, opts...),
	}
}

type splitRequestServiceClient struct {
	createSplitRequest  *connect.Client[api.CreateSplitRequestRequest, api.CreateSplitRequestResponse]
	getSplitRequest     *connect.Client[api.GetSplitRequestRequest, api.GetSplitRequestResponse]
	listSplitRequests   *connect.Client[api.ListSplitRequestsRequest, api.ListSplitRequestsResponse]
	markParticipantPaid *connect.Client[api.MarkParticipantPaidRequest, api.MarkParticipantPaidResponse]
	cancelSplitRequest  *connect.Client[api.CancelSplitRequestRequest, api.CancelSplitRequestResponse]
}

func (c *splitRequestServiceClient) CreateSplitRequest(ctx context.Context, req *connect.Request[api.CreateSplitRequestRequest]) (*connect.Response[api.CreateSplitRequestResponse], error) {
	return c.createSplitRequest.CallUnary(ctx, req)
}

func (c *splitRequestServiceClient) GetSplitRequest(ctx context.Context, req *connect.Request[api.GetSplitRequestRequest]) (*connect.Response[api.GetSplitRequestResponse], error) {
	return c.getSplitRequest.CallUnary(ctx, req)
}

func (c *splitRequestServiceClient) ListSplitRequests(ctx context.Context, req *connect.Request[api.ListSplitRequestsRequest]) (*connect.Response[api.ListSplitRequestsResponse], error) {
	return c.listSplitRequests.CallUnary(ctx, req)
}

func (c *splitRequestServiceClient) MarkParticipantPaid(ctx context.Context, req *connect.Request[api.MarkParticipantPaidRequest]) (*connect.Response[api.MarkParticipantPaidResponse], error) {
	return c.markParticipantPaid.CallUnary(ctx, req)
}

func (c *splitRequestServiceClient) CancelSplitRequest(ctx context.Context, req *connect.Request[api.CancelSplitRequestRequest]) (*connect.Response[api.CancelSplitRequestResponse], error) {
	return c.cancelSplitRequest.CallUnary(ctx, req)
}

// SplitRequestServiceHandler is an implementation of the groupledger.v1.SplitRequestService service.
type SplitRequestServiceHandler interface {
	CreateSplitRequest(context.Context, *connect.Request[api.CreateSplitRequestRequest]) (*connect.Response[api.CreateSplitRequestResponse], error)
	GetSplitRequest(context.Context, *connect.Request[api.GetSplitRequestRequest]) (*connect.Response[api.GetSplitRequestResponse], error)
	ListSplitRequests(context.Context, *connect.Request[api.ListSplitRequestsRequest]) (*connect.Response[api.ListSplitRequestsResponse], error)
	MarkParticipantPaid(context.Context, *connect.Request[api.MarkParticipantPaidRequest]) (*connect.Response[api.MarkParticipantPaidResponse], error)
	CancelSplitRequest(context.Context, *connect.Request[api.CancelSplitRequestRequest]) (*connect.Response[api.CancelSplitRequestResponse], error)
}

// NewSplitRequestServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSplitRequestServiceHandler(svc SplitRequestServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	routes := map[string]http.Handler{
		SplitRequestServiceCreateSplitRequestProcedure:  connect.NewUnaryHandler(SplitRequestServiceCreateSplitRequestProcedure, svc.CreateSplitRequest, opts...),
		SplitRequestServiceGetSplitRequestProcedure:     connect.NewUnaryHandler(SplitRequestServiceGetSplitRequestProcedure, svc.GetSplitRequest, opts...),
		SplitRequestServiceListSplitRequestsProcedure:   connect.NewUnaryHandler(SplitRequestServiceListSplitRequestsProcedure, svc.ListSplitRequests, opts...),
		SplitRequestServiceMarkParticipantPaidProcedure: connect.NewUnaryHandler(SplitRequestServiceMarkParticipantPaidProcedure, svc.MarkParticipantPaid, opts...),
		SplitRequestServiceCancelSplitRequestProcedure:  connect.NewUnaryHandler(SplitRequestServiceCancelSplitRequestProcedure, svc.CancelSplitRequest, opts...),
	}
	return "/" + SplitRequestServiceName + "/", routeHandler(routes)
}

// UnimplementedSplitRequestServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSplitRequestServiceHandler struct{}

func (UnimplementedSplitRequestServiceHandler) CreateSplitRequest(context.Context, *connect.Request[api.CreateSplitRequestRequest]) (*connect.Response[api.CreateSplitRequestResponse], error) {
	return nil, unimplemented(SplitRequestServiceCreateSplitRequestProcedure)
}

func (UnimplementedSplitRequestServiceHandler) GetSplitRequest(context.Context, *connect.Request[api.GetSplitRequestRequest]) (*connect.Response[api.GetSplitRequestResponse], error) {
	return nil, unimplemented(SplitRequestServiceGetSplitRequestProcedure)
}

func (UnimplementedSplitRequestServiceHandler) ListSplitRequests(context.Context, *connect.Request[api.ListSplitRequestsRequest]) (*connect.Response[api.ListSplitRequestsResponse], error) {
	return nil, unimplemented(SplitRequestServiceListSplitRequestsProcedure)
}

func (UnimplementedSplitRequestServiceHandler) MarkParticipantPaid(context.Context, *connect.Request[api.MarkParticipantPaidRequest]) (*connect.Response[api.MarkParticipantPaidResponse], error) {
	return nil, unimplemented(SplitRequestServiceMarkParticipantPaidProcedure)
}

func (UnimplementedSplitRequestServiceHandler) CancelSplitRequest(context.Context, *connect.Request[api.CancelSplitRequestRequest]) (*connect.Response[api.CancelSplitRequestResponse], error) {
	return nil, unimplemented(SplitRequestServiceCancelSplitRequestProcedure)
}

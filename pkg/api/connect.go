package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// TipServiceName is the fully-qualified name of the TipService service.
const TipServiceName = "tipcalc.v1.TipService"

// Procedure paths of the TipService RPCs.
const (
	TipServiceCalculateProcedure      = "/tipcalc.v1.TipService/Calculate"
	TipServiceOpenSessionProcedure    = "/tipcalc.v1.TipService/OpenSession"
	TipServiceGetSessionProcedure     = "/tipcalc.v1.TipService/GetSession"
	TipServiceEditBillProcedure       = "/tipcalc.v1.TipService/EditBill"
	TipServiceMoveSliderProcedure     = "/tipcalc.v1.TipService/MoveSlider"
	TipServiceIncrementSplitProcedure = "/tipcalc.v1.TipService/IncrementSplit"
	TipServiceDecrementSplitProcedure = "/tipcalc.v1.TipService/DecrementSplit"
	TipServiceSubmitBillProcedure     = "/tipcalc.v1.TipService/SubmitBill"
	TipServiceCloseSessionProcedure   = "/tipcalc.v1.TipService/CloseSession"
)

// OpenProcedures lists the procedures callable without a session token.
var OpenProcedures = []string{
	TipServiceCalculateProcedure,
	TipServiceOpenSessionProcedure,
}

// TipServiceHandler is implemented by the tip calculator service.
type TipServiceHandler interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	OpenSession(context.Context, *connect.Request[OpenSessionRequest]) (*connect.Response[OpenSessionResponse], error)
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error)
	EditBill(context.Context, *connect.Request[EditBillRequest]) (*connect.Response[SessionResponse], error)
	MoveSlider(context.Context, *connect.Request[MoveSliderRequest]) (*connect.Response[SessionResponse], error)
	IncrementSplit(context.Context, *connect.Request[IncrementSplitRequest]) (*connect.Response[SessionResponse], error)
	DecrementSplit(context.Context, *connect.Request[DecrementSplitRequest]) (*connect.Response[SessionResponse], error)
	SubmitBill(context.Context, *connect.Request[SubmitBillRequest]) (*connect.Response[SessionResponse], error)
	CloseSession(context.Context, *connect.Request[CloseSessionRequest]) (*connect.Response[CloseSessionResponse], error)
}

// NewTipServiceHandler builds an HTTP handler for svc and returns the path
// prefix to mount it on.
func NewTipServiceHandler(svc TipServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	handlers := map[string]http.Handler{
		TipServiceCalculateProcedure:      connect.NewUnaryHandler(TipServiceCalculateProcedure, svc.Calculate, opts...),
		TipServiceOpenSessionProcedure:    connect.NewUnaryHandler(TipServiceOpenSessionProcedure, svc.OpenSession, opts...),
		TipServiceGetSessionProcedure:     connect.NewUnaryHandler(TipServiceGetSessionProcedure, svc.GetSession, opts...),
		TipServiceEditBillProcedure:       connect.NewUnaryHandler(TipServiceEditBillProcedure, svc.EditBill, opts...),
		TipServiceMoveSliderProcedure:     connect.NewUnaryHandler(TipServiceMoveSliderProcedure, svc.MoveSlider, opts...),
		TipServiceIncrementSplitProcedure: connect.NewUnaryHandler(TipServiceIncrementSplitProcedure, svc.IncrementSplit, opts...),
		TipServiceDecrementSplitProcedure: connect.NewUnaryHandler(TipServiceDecrementSplitProcedure, svc.DecrementSplit, opts...),
		TipServiceSubmitBillProcedure:     connect.NewUnaryHandler(TipServiceSubmitBillProcedure, svc.SubmitBill, opts...),
		TipServiceCloseSessionProcedure:   connect.NewUnaryHandler(TipServiceCloseSessionProcedure, svc.CloseSession, opts...),
	}

	return "/" + TipServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// TipServiceClient calls the tip calculator service.
type TipServiceClient interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	OpenSession(context.Context, *connect.Request[OpenSessionRequest]) (*connect.Response[OpenSessionResponse], error)
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error)
	EditBill(context.Context, *connect.Request[EditBillRequest]) (*connect.Response[SessionResponse], error)
	MoveSlider(context.Context, *connect.Request[MoveSliderRequest]) (*connect.Response[SessionResponse], error)
	IncrementSplit(context.Context, *connect.Request[IncrementSplitRequest]) (*connect.Response[SessionResponse], error)
	DecrementSplit(context.Context, *connect.Request[DecrementSplitRequest]) (*connect.Response[SessionResponse], error)
	SubmitBill(context.Context, *connect.Request[SubmitBillRequest]) (*connect.Response[SessionResponse], error)
	CloseSession(context.Context, *connect.Request[CloseSessionRequest]) (*connect.Response[CloseSessionResponse], error)
}

// NewTipServiceClient constructs a client for the service at baseURL,
// e.g. http://localhost:8080.
func NewTipServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TipServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &tipServiceClient{
		calculate:      connect.NewClient[CalculateRequest, CalculateResponse](httpClient, baseURL+TipServiceCalculateProcedure, opts...),
		openSession:    connect.NewClient[OpenSessionRequest, OpenSessionResponse](httpClient, baseURL+TipServiceOpenSessionProcedure, opts...),
		getSession:     connect.NewClient[GetSessionRequest, SessionResponse](httpClient, baseURL+TipServiceGetSessionProcedure, opts...),
		editBill:       connect.NewClient[EditBillRequest, SessionResponse](httpClient, baseURL+TipServiceEditBillProcedure, opts...),
		moveSlider:     connect.NewClient[MoveSliderRequest, SessionResponse](httpClient, baseURL+TipServiceMoveSliderProcedure, opts...),
		incrementSplit: connect.NewClient[IncrementSplitRequest, SessionResponse](httpClient, baseURL+TipServiceIncrementSplitProcedure, opts...),
		decrementSplit: connect.NewClient[DecrementSplitRequest, SessionResponse](httpClient, baseURL+TipServiceDecrementSplitProcedure, opts...),
		submitBill:     connect.NewClient[SubmitBillRequest, SessionResponse](httpClient, baseURL+TipServiceSubmitBillProcedure, opts...),
		closeSession:   connect.NewClient[CloseSessionRequest, CloseSessionResponse](httpClient, baseURL+TipServiceCloseSessionProcedure, opts...),
	}
}

type tipServiceClient struct {
	calculate      *connect.Client[CalculateRequest, CalculateResponse]
	openSession    *connect.Client[OpenSessionRequest, OpenSessionResponse]
	getSession     *connect.Client[GetSessionRequest, SessionResponse]
	editBill       *connect.Client[EditBillRequest, SessionResponse]
	moveSlider     *connect.Client[MoveSliderRequest, SessionResponse]
	incrementSplit *connect.Client[IncrementSplitRequest, SessionResponse]
	decrementSplit *connect.Client[DecrementSplitRequest, SessionResponse]
	submitBill     *connect.Client[SubmitBillRequest, SessionResponse]
	closeSession   *connect.Client[CloseSessionRequest, CloseSessionResponse]
}

func (c *tipServiceClient) Calculate(ctx context.Context, req *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

func (c *tipServiceClient) OpenSession(ctx context.Context, req *connect.Request[OpenSessionRequest]) (*connect.Response[OpenSessionResponse], error) {
	return c.openSession.CallUnary(ctx, req)
}

func (c *tipServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *tipServiceClient) EditBill(ctx context.Context, req *connect.Request[EditBillRequest]) (*connect.Response[SessionResponse], error) {
	return c.editBill.CallUnary(ctx, req)
}

func (c *tipServiceClient) MoveSlider(ctx context.Context, req *connect.Request[MoveSliderRequest]) (*connect.Response[SessionResponse], error) {
	return c.moveSlider.CallUnary(ctx, req)
}

func (c *tipServiceClient) IncrementSplit(ctx context.Context, req *connect.Request[IncrementSplitRequest]) (*connect.Response[SessionResponse], error) {
	return c.incrementSplit.CallUnary(ctx, req)
}

func (c *tipServiceClient) DecrementSplit(ctx context.Context, req *connect.Request[DecrementSplitRequest]) (*connect.Response[SessionResponse], error) {
	return c.decrementSplit.CallUnary(ctx, req)
}

func (c *tipServiceClient) SubmitBill(ctx context.Context, req *connect.Request[SubmitBillRequest]) (*connect.Response[SessionResponse], error) {
	return c.submitBill.CallUnary(ctx, req)
}

func (c *tipServiceClient) CloseSession(ctx context.Context, req *connect.Request[CloseSessionRequest]) (*connect.Response[CloseSessionResponse], error) {
	return c.closeSession.CallUnary(ctx, req)
}

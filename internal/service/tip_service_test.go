package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/tipcalc/internal/auth"
	"github.com/mmynk/tipcalc/internal/middleware"
	"github.com/mmynk/tipcalc/internal/session"
	"github.com/mmynk/tipcalc/pkg/api"
)

type testServer struct {
	client   api.TipServiceClient
	sessions *session.Registry
	token    string
}

// setupTestServer creates a test server backed by an in-memory registry.
// Calls carry whatever ts.token holds at call time.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tokens := auth.NewTokenManager("test-secret-test-secret-test-sec", time.Hour)
	ts := &testServer{sessions: session.NewRegistry(time.Hour, 6, session.Hooks{})}

	svc := NewTipService(ts.sessions, tokens)
	path, handler := api.NewTipServiceHandler(svc, connect.WithInterceptors(
		middleware.RequireSession(tokens, api.OpenProcedures...),
		middleware.LoggingInterceptor(),
	))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ts.client = api.NewTipServiceClient(
		http.DefaultClient,
		server.URL,
		connect.WithInterceptors(middleware.BearerToken(func() string { return ts.token })),
	)
	return ts
}

func (ts *testServer) open(t *testing.T) api.Session {
	t.Helper()
	resp, err := ts.client.OpenSession(context.Background(), connect.NewRequest(&api.OpenSessionRequest{}))
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	if resp.Msg.Token == "" {
		t.Fatal("OpenSession returned no token")
	}
	ts.token = resp.Msg.Token
	return resp.Msg.Session
}

func TestCalculate(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := ts.client.Calculate(context.Background(), connect.NewRequest(&api.CalculateRequest{
		Bill:       100,
		TipPercent: 20,
		SplitCount: 4,
	}))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	want := &api.CalculateResponse{
		TipAmount:      20,
		TotalPerPerson: 30,
		Display: api.Display{
			TotalPerPerson:  "$30.00",
			TipAmount:       "$20.00",
			TipPercent:      "20%",
			SplitCount:      "4",
			ControlsVisible: true,
		},
	}
	if diff := cmp.Diff(want, resp.Msg); diff != "" {
		t.Errorf("Calculate mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculate_InvalidArgument(t *testing.T) {
	ts := setupTestServer(t)

	tests := map[string]*api.CalculateRequest{
		"zero split":       {Bill: 100, TipPercent: 20, SplitCount: 0},
		"negative split":   {Bill: 100, TipPercent: 20, SplitCount: -2},
		"negative percent": {Bill: 100, TipPercent: -5, SplitCount: 1},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ts.client.Calculate(context.Background(), connect.NewRequest(req))
			if connect.CodeOf(err) != connect.CodeInvalidArgument {
				t.Errorf("error = %v, want InvalidArgument", err)
			}
		})
	}
}

func TestSession_FullFlow(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	initial := ts.open(t)
	if initial.ControlsVisible || initial.SplitCount != 1 || !initial.InputFocused {
		t.Errorf("unexpected initial session %+v", initial)
	}
	if initial.Display.TipAmount != "" {
		t.Errorf("hidden controls displayed tip %q", initial.Display.TipAmount)
	}

	if _, err := ts.client.EditBill(ctx, connect.NewRequest(&api.EditBillRequest{BillText: "100"})); err != nil {
		t.Fatalf("EditBill failed: %v", err)
	}
	if _, err := ts.client.MoveSlider(ctx, connect.NewRequest(&api.MoveSliderRequest{Position: 0.5})); err != nil {
		t.Fatalf("MoveSlider failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := ts.client.IncrementSplit(ctx, connect.NewRequest(&api.IncrementSplitRequest{})); err != nil {
			t.Fatalf("IncrementSplit failed: %v", err)
		}
	}
	if _, err := ts.client.DecrementSplit(ctx, connect.NewRequest(&api.DecrementSplitRequest{})); err != nil {
		t.Fatalf("DecrementSplit failed: %v", err)
	}
	resp, err := ts.client.SubmitBill(ctx, connect.NewRequest(&api.SubmitBillRequest{}))
	if err != nil {
		t.Fatalf("SubmitBill failed: %v", err)
	}

	got := resp.Msg.Session
	if got.SessionID != initial.SessionID {
		t.Errorf("session ID changed from %s to %s", initial.SessionID, got.SessionID)
	}
	if got.TipPercent != 50 || got.SplitCount != 3 {
		t.Errorf("tip=%d split=%d, want 50 and 3", got.TipPercent, got.SplitCount)
	}
	if math.Abs(got.TotalPerPerson-50) > 1e-9 {
		t.Errorf("TotalPerPerson = %v, want 50", got.TotalPerPerson)
	}
	if got.InputFocused {
		t.Error("input still focused after submit")
	}
	wantDisplay := api.Display{
		TotalPerPerson:  "$50.00",
		TipAmount:       "$50.00",
		TipPercent:      "50%",
		SplitCount:      "3",
		ControlsVisible: true,
	}
	if diff := cmp.Diff(wantDisplay, got.Display); diff != "" {
		t.Errorf("display mismatch (-want +got):\n%s", diff)
	}

	fetched, err := ts.client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if diff := cmp.Diff(got, fetched.Msg.Session); diff != "" {
		t.Errorf("GetSession mismatch (-submit +get):\n%s", diff)
	}
}

func TestSession_HiddenControls(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	ts.open(t)

	_, err := ts.client.IncrementSplit(ctx, connect.NewRequest(&api.IncrementSplitRequest{}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("IncrementSplit on blank bill error = %v, want FailedPrecondition", err)
	}
	_, err = ts.client.SubmitBill(ctx, connect.NewRequest(&api.SubmitBillRequest{}))
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("SubmitBill on blank bill error = %v, want FailedPrecondition", err)
	}
}

func TestSession_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	_, err := ts.client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("GetSession without token error = %v, want Unauthenticated", err)
	}

	ts.token = "garbage"
	_, err = ts.client.EditBill(ctx, connect.NewRequest(&api.EditBillRequest{BillText: "5"}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("EditBill with bad token error = %v, want Unauthenticated", err)
	}
}

func TestSession_Close(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	ts.open(t)

	if _, err := ts.client.CloseSession(ctx, connect.NewRequest(&api.CloseSessionRequest{})); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	if ts.sessions.Len() != 0 {
		t.Errorf("registry still holds %d sessions", ts.sessions.Len())
	}

	_, err := ts.client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("GetSession after close error = %v, want NotFound", err)
	}
}

func TestSession_TokensAreIsolated(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	first := ts.open(t)
	firstToken := ts.token
	ts.client.EditBill(ctx, connect.NewRequest(&api.EditBillRequest{BillText: "42"}))

	second := ts.open(t)
	if second.SessionID == first.SessionID {
		t.Fatal("two sessions share an ID")
	}
	resp, err := ts.client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if resp.Msg.Session.BillText != "" {
		t.Errorf("second session sees bill %q", resp.Msg.Session.BillText)
	}

	ts.token = firstToken
	resp, err = ts.client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if resp.Msg.Session.BillText != "42" {
		t.Errorf("first session bill = %q, want 42", resp.Msg.Session.BillText)
	}
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{session.ErrSessionNotFound, connect.CodeNotFound},
		{session.ErrControlsHidden, connect.CodeFailedPrecondition},
		{session.ErrUnknownEvent, connect.CodeInvalidArgument},
		{errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := connect.CodeOf(toConnectError(tt.err)); got != tt.want {
			t.Errorf("toConnectError(%v) code = %v, want %v", tt.err, got, tt.want)
		}
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tipcalc/internal/auth"
	"github.com/mmynk/tipcalc/internal/calculator"
	"github.com/mmynk/tipcalc/internal/middleware"
	"github.com/mmynk/tipcalc/internal/models"
	"github.com/mmynk/tipcalc/internal/session"
	"github.com/mmynk/tipcalc/pkg/api"
)

// Ensure TipService implements the generated handler interface.
var _ api.TipServiceHandler = (*TipService)(nil)

// TipService implements the Connect TipService on top of a session registry.
type TipService struct {
	sessions *session.Registry
	tokens   *auth.TokenManager
	validate *validator.Validate
}

// NewTipService creates a new TipService over sessions, issuing tokens with tokens.
func NewTipService(sessions *session.Registry, tokens *auth.TokenManager) *TipService {
	return &TipService{
		sessions: sessions,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Calculate runs the tip and split engines once, without a session.
func (s *TipService) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		slog.Debug("Calculate validation failed", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid calculate request: %w", err))
	}

	bill := req.Msg.Bill
	tip := calculator.ComputeTip(bill, req.Msg.TipPercent)
	perPerson := calculator.ComputePerPerson(bill, req.Msg.SplitCount, req.Msg.TipPercent)
	slog.Debug("Calculated",
		"bill", bill,
		"tip_percent", req.Msg.TipPercent,
		"split", req.Msg.SplitCount,
		"tip", tip,
		"total_per_person", perPerson,
	)

	return connect.NewResponse(&api.CalculateResponse{
		TipAmount:      tip,
		TotalPerPerson: perPerson,
		Display: api.Display{
			TotalPerPerson:  models.FormatMoney(perPerson),
			TipAmount:       models.FormatMoney(tip),
			TipPercent:      models.FormatPercent(req.Msg.TipPercent),
			SplitCount:      strconv.Itoa(req.Msg.SplitCount),
			ControlsVisible: true,
		},
	}), nil
}

// OpenSession starts a new screen session and returns its bearer token.
func (s *TipService) OpenSession(ctx context.Context, req *connect.Request[api.OpenSessionRequest]) (*connect.Response[api.OpenSessionResponse], error) {
	id, snap := s.sessions.Open()

	token, err := s.tokens.Generate(id)
	if err != nil {
		slog.Error("OpenSession failed to issue token", "session_id", id, "error", err)
		_ = s.sessions.Close(id)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.OpenSessionResponse{
		Token:   token,
		Session: toAPISession(id, snap),
	}), nil
}

// GetSession returns the caller's current session view.
func (s *TipService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.sessions.Get(id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(id, snap), nil
}

// EditBill applies a text-change event to the bill field.
func (s *TipService) EditBill(ctx context.Context, req *connect.Request[api.EditBillRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.apply(ctx, session.EventEditBill, req.Msg.BillText, 0)
}

// MoveSlider applies a slider-change event.
func (s *TipService) MoveSlider(ctx context.Context, req *connect.Request[api.MoveSliderRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.apply(ctx, session.EventMoveSlider, "", req.Msg.Position)
}

// IncrementSplit taps the split "+" button.
func (s *TipService) IncrementSplit(ctx context.Context, req *connect.Request[api.IncrementSplitRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.apply(ctx, session.EventIncrementSplit, "", 0)
}

// DecrementSplit taps the split "-" button.
func (s *TipService) DecrementSplit(ctx context.Context, req *connect.Request[api.DecrementSplitRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.apply(ctx, session.EventDecrementSplit, "", 0)
}

// SubmitBill commits the bill entry and yields input focus.
func (s *TipService) SubmitBill(ctx context.Context, req *connect.Request[api.SubmitBillRequest]) (*connect.Response[api.SessionResponse], error) {
	return s.apply(ctx, session.EventSubmit, "", 0)
}

// CloseSession ends the caller's session.
func (s *TipService) CloseSession(ctx context.Context, req *connect.Request[api.CloseSessionRequest]) (*connect.Response[api.CloseSessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Close(id); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CloseSessionResponse{}), nil
}

func (s *TipService) apply(ctx context.Context, kind session.EventKind, text string, position float64) (*connect.Response[api.SessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.sessions.Apply(id, kind, text, position)
	if err != nil {
		slog.Debug("Session event rejected", "session_id", id, "event", kind, "error", err)
		return nil, toConnectError(err)
	}
	return sessionResponse(id, snap), nil
}

// sessionID returns the session bound to the caller's token.
func sessionID(ctx context.Context) (string, error) {
	id := middleware.GetSessionID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrControlsHidden):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrUnknownEvent):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func sessionResponse(id string, snap models.Snapshot) *connect.Response[api.SessionResponse] {
	return connect.NewResponse(&api.SessionResponse{Session: toAPISession(id, snap)})
}

func toAPISession(id string, snap models.Snapshot) api.Session {
	d := snap.Display()
	return api.Session{
		SessionID:       id,
		BillText:        snap.BillText,
		SliderPosition:  snap.SliderPosition,
		SplitCount:      snap.SplitCount,
		BillAmount:      snap.BillAmount,
		TipPercent:      snap.TipPercent,
		TipAmount:       snap.TipAmount,
		TotalPerPerson:  snap.TotalPerPerson,
		ControlsVisible: snap.ControlsVisible,
		InputFocused:    snap.InputFocused,
		Revision:        snap.Revision,
		Display: api.Display{
			TotalPerPerson:  d.TotalPerPerson,
			TipAmount:       d.TipAmount,
			TipPercent:      d.TipPercent,
			SplitCount:      d.SplitCount,
			ControlsVisible: d.ControlsVisible,
		},
	}
}

package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tipcalc/internal/middleware"
	"github.com/mmynk/tipcalc/internal/models"
	"github.com/mmynk/tipcalc/internal/session"
	"github.com/mmynk/tipcalc/pkg/api"
)

// Controller applies input events to a tip session and returns the
// recomputed snapshot.
type Controller interface {
	EditBill(ctx context.Context, text string) (models.Snapshot, error)
	MoveSlider(ctx context.Context, position float64) (models.Snapshot, error)
	IncrementSplit(ctx context.Context) (models.Snapshot, error)
	DecrementSplit(ctx context.Context) (models.Snapshot, error)
	Submit(ctx context.Context) (models.Snapshot, error)
	Snapshot(ctx context.Context) (models.Snapshot, error)
	Close(ctx context.Context) error
}

// Local drives an in-process session.State.
type Local struct {
	State *session.State
}

func NewLocal(opts ...session.Option) *Local {
	return &Local{State: session.New(opts...)}
}

func (l *Local) EditBill(_ context.Context, text string) (models.Snapshot, error) {
	return l.State.EditBill(text), nil
}

func (l *Local) MoveSlider(_ context.Context, position float64) (models.Snapshot, error) {
	return l.State.MoveSlider(position)
}

func (l *Local) IncrementSplit(context.Context) (models.Snapshot, error) {
	return l.State.IncrementSplit()
}

func (l *Local) DecrementSplit(context.Context) (models.Snapshot, error) {
	return l.State.DecrementSplit()
}

func (l *Local) Submit(context.Context) (models.Snapshot, error) {
	return l.State.Submit()
}

func (l *Local) Snapshot(context.Context) (models.Snapshot, error) {
	return l.State.Snapshot(), nil
}

func (l *Local) Close(context.Context) error { return nil }

// Remote drives a session held by a tip service.
type Remote struct {
	client api.TipServiceClient
	token  string
}

// Dial opens a session on the service at baseURL.
func Dial(ctx context.Context, httpClient *http.Client, baseURL string) (*Remote, error) {
	r := &Remote{}
	r.client = api.NewTipServiceClient(httpClient, baseURL,
		connect.WithInterceptors(middleware.BearerToken(func() string { return r.token })),
	)

	resp, err := r.client.OpenSession(ctx, connect.NewRequest(&api.OpenSessionRequest{}))
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	r.token = resp.Msg.Token
	return r, nil
}

func (r *Remote) EditBill(ctx context.Context, text string) (models.Snapshot, error) {
	return unwrap(r.client.EditBill(ctx, connect.NewRequest(&api.EditBillRequest{BillText: text})))
}

func (r *Remote) MoveSlider(ctx context.Context, position float64) (models.Snapshot, error) {
	return unwrap(r.client.MoveSlider(ctx, connect.NewRequest(&api.MoveSliderRequest{Position: position})))
}

func (r *Remote) IncrementSplit(ctx context.Context) (models.Snapshot, error) {
	return unwrap(r.client.IncrementSplit(ctx, connect.NewRequest(&api.IncrementSplitRequest{})))
}

func (r *Remote) DecrementSplit(ctx context.Context) (models.Snapshot, error) {
	return unwrap(r.client.DecrementSplit(ctx, connect.NewRequest(&api.DecrementSplitRequest{})))
}

func (r *Remote) Submit(ctx context.Context) (models.Snapshot, error) {
	return unwrap(r.client.SubmitBill(ctx, connect.NewRequest(&api.SubmitBillRequest{})))
}

func (r *Remote) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return unwrap(r.client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{})))
}

// Close ends the remote session.
func (r *Remote) Close(ctx context.Context) error {
	_, err := r.client.CloseSession(ctx, connect.NewRequest(&api.CloseSessionRequest{}))
	return err
}

// unwrap converts a session response back into a snapshot. A rejected
// event maps back to session.ErrControlsHidden.
func unwrap(resp *connect.Response[api.SessionResponse], err error) (models.Snapshot, error) {
	if err != nil {
		if connect.CodeOf(err) == connect.CodeFailedPrecondition {
			return models.Snapshot{}, errors.Join(session.ErrControlsHidden, err)
		}
		return models.Snapshot{}, err
	}
	s := resp.Msg.Session
	return models.Snapshot{
		Inputs: models.Inputs{
			BillText:       s.BillText,
			SliderPosition: s.SliderPosition,
			SplitCount:     s.SplitCount,
		},
		BillAmount:      s.BillAmount,
		TipPercent:      s.TipPercent,
		TipAmount:       s.TipAmount,
		TotalPerPerson:  s.TotalPerPerson,
		ControlsVisible: s.ControlsVisible,
		InputFocused:    s.InputFocused,
		Revision:        s.Revision,
	}, nil
}

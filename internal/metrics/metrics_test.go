package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tipcalc/internal/session"
)

func TestHooks(t *testing.T) {
	m := New("test", prometheus.NewRegistry())
	hooks := m.Hooks()

	hooks.Opened("a")
	hooks.Opened("b")
	hooks.Opened("c")
	hooks.Closed("a", false)
	hooks.Closed("b", true)
	hooks.Applied(session.EventEditBill, nil)
	hooks.Applied(session.EventEditBill, nil)
	hooks.Applied(session.EventIncrementSplit, session.ErrControlsHidden)
	hooks.Applied(session.EventKind("shake"), session.ErrUnknownEvent)

	if got := testutil.ToFloat64(m.OpenSessions); got != 1 {
		t.Errorf("open sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ClosedSessions.WithLabelValues("expired")); got != 1 {
		t.Errorf("expired sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Events.WithLabelValues("edit_bill")); got != 2 {
		t.Errorf("edit_bill events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RejectedEvents.WithLabelValues("increment_split")); got != 1 {
		t.Errorf("rejected increment_split = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.RejectedEvents); got != 1 {
		t.Errorf("rejected series = %d, want 1 (unknown events are not hidden-control rejections)", got)
	}
	if got := testutil.CollectAndCount(m.Events); got != 1 {
		t.Errorf("event series = %d, want 1", got)
	}
}

func TestNew_PanicsOnDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	New("dup", reg)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on duplicate registration")
		}
		var are prometheus.AlreadyRegisteredError
		if err, ok := r.(error); !ok || !errors.As(err, &are) {
			t.Errorf("panic = %v, want AlreadyRegisteredError", r)
		}
	}()
	New("dup", reg)
}

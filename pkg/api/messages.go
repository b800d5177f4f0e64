// Package api defines the wire messages of the tip calculator service and
// its Connect bindings. Messages travel as JSON.
package api

// CalculateRequest asks for a one-off calculation without a session.
type CalculateRequest struct {
	Bill       float64 `json:"bill"`
	TipPercent int     `json:"tip_percent" validate:"gte=0"`
	SplitCount int     `json:"split_count" validate:"gte=1"`
}

// CalculateResponse carries the engine results for a CalculateRequest.
type CalculateResponse struct {
	TipAmount      float64 `json:"tip_amount"`
	TotalPerPerson float64 `json:"total_per_person"`
	Display        Display `json:"display"`
}

// Display holds the formatted strings a screen shows.
// Controls-only fields are empty while the controls are hidden.
type Display struct {
	TotalPerPerson  string `json:"total_per_person"`
	TipAmount       string `json:"tip_amount,omitempty"`
	TipPercent      string `json:"tip_percent,omitempty"`
	SplitCount      string `json:"split_count,omitempty"`
	ControlsVisible bool   `json:"controls_visible"`
}

// Session is the wire form of one session snapshot.
type Session struct {
	SessionID       string  `json:"session_id"`
	BillText        string  `json:"bill_text"`
	SliderPosition  float64 `json:"slider_position"`
	SplitCount      int     `json:"split_count"`
	BillAmount      float64 `json:"bill_amount"`
	TipPercent      int     `json:"tip_percent"`
	TipAmount       float64 `json:"tip_amount"`
	TotalPerPerson  float64 `json:"total_per_person"`
	ControlsVisible bool    `json:"controls_visible"`
	InputFocused    bool    `json:"input_focused"`
	Revision        uint64  `json:"revision"`
	Display         Display `json:"display"`
}

type OpenSessionRequest struct{}

// OpenSessionResponse returns the new session and the bearer token every
// later call on it must carry.
type OpenSessionResponse struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

type GetSessionRequest struct{}

type EditBillRequest struct {
	BillText string `json:"bill_text"`
}

type MoveSliderRequest struct {
	Position float64 `json:"position"`
}

type IncrementSplitRequest struct{}

type DecrementSplitRequest struct{}

type SubmitBillRequest struct{}

type CloseSessionRequest struct{}

type CloseSessionResponse struct{}

// SessionResponse is returned by every call that reads or changes a session.
type SessionResponse struct {
	Session Session `json:"session"`
}

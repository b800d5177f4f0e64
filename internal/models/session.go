package models

import (
	"fmt"
	"strconv"
)

// CurrencySymbol prefixes every money amount on the display.
const CurrencySymbol = "$"

// Inputs are the leaf values of a tip session.
type Inputs struct {
	// BillText is the raw text of the bill field, exactly as typed.
	BillText string

	// SliderPosition is the tip slider position in [0, 1].
	SliderPosition float64

	// SplitCount is the number of people sharing the bill. Always >= 1.
	SplitCount int
}

// Snapshot is a consistent view of a session at one instant.
type Snapshot struct {
	Inputs

	// BillAmount is BillText parsed; zero when the text is not a number.
	BillAmount float64

	// TipPercent is the slider position as a whole percentage in [0, 100].
	TipPercent int

	// TipAmount is the tip on BillAmount at TipPercent.
	TipAmount float64

	// TotalPerPerson is (BillAmount + TipAmount) / SplitCount.
	TotalPerPerson float64

	// ControlsVisible reports whether the split stepper, tip slider and tip
	// display are shown. They are hidden while the bill field is blank.
	ControlsVisible bool

	// InputFocused reports whether the bill field holds input focus.
	// Submitting the bill yields focus.
	InputFocused bool

	// Revision increases by one for every accepted input event.
	Revision uint64
}

// Display holds the formatted strings shown for a Snapshot.
// Controls-only fields are empty when the controls are hidden.
type Display struct {
	TotalPerPerson  string
	TipAmount       string
	TipPercent      string
	SplitCount      string
	ControlsVisible bool
}

// Display formats s for a screen.
func (s Snapshot) Display() Display {
	d := Display{
		TotalPerPerson:  FormatMoney(s.TotalPerPerson),
		ControlsVisible: s.ControlsVisible,
	}
	if s.ControlsVisible {
		d.TipAmount = FormatMoney(s.TipAmount)
		d.TipPercent = FormatPercent(s.TipPercent)
		d.SplitCount = strconv.Itoa(s.SplitCount)
	}
	return d
}

// FormatMoney renders an amount with two decimals and the currency prefix.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%s%.2f", CurrencySymbol, amount)
}

// FormatPercent renders a whole percentage, e.g. "15%".
func FormatPercent(percent int) string {
	return strconv.Itoa(percent) + "%"
}

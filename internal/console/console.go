// Package console is a line-oriented display for a tip session. Each input
// line is one input event; the display is redrawn after every event.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmynk/tipcalc/internal/models"
	"github.com/mmynk/tipcalc/internal/session"
)

// Console reads commands and renders the session display.
type Console struct {
	ctrl   Controller
	out    io.Writer
	prompt bool
}

// New creates a Console over ctrl writing to out. With prompt set, a
// prompt is printed before every line is read.
func New(ctrl Controller, out io.Writer, prompt bool) *Console {
	return &Console{ctrl: ctrl, out: out, prompt: prompt}
}

// Run processes lines from in until EOF, a quit command or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	snap, err := c.ctrl.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	c.render(snap)

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.prompt {
			fmt.Fprint(c.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		cmd, err := ParseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "%v (try \"help\")\n", err)
			continue
		}
		if cmd.Op == OpQuit {
			return nil
		}
		if cmd.Op == OpHelp {
			fmt.Fprint(c.out, helpText)
			continue
		}

		snap, err := c.dispatch(ctx, cmd)
		switch {
		case errors.Is(err, session.ErrControlsHidden):
			fmt.Fprintln(c.out, "Enter a bill first.")
			continue
		case err != nil:
			slog.Error("Console event failed", "error", err)
			return err
		}
		c.render(snap)
	}
}

func (c *Console) dispatch(ctx context.Context, cmd Command) (models.Snapshot, error) {
	switch cmd.Op {
	case OpEditBill:
		return c.ctrl.EditBill(ctx, cmd.Text)
	case OpMoveSlider:
		return c.ctrl.MoveSlider(ctx, cmd.Position)
	case OpIncrement:
		return c.ctrl.IncrementSplit(ctx)
	case OpDecrement:
		return c.ctrl.DecrementSplit(ctx)
	case OpSubmit:
		return c.ctrl.Submit(ctx)
	}
	return c.ctrl.Snapshot(ctx)
}

func (c *Console) render(snap models.Snapshot) {
	fmt.Fprint(c.out, Render(snap))
}

// Render formats snap as the text display.
func Render(snap models.Snapshot) string {
	d := snap.Display()
	s := fmt.Sprintf("Total Per Person: %s\n", d.TotalPerPerson)
	if !d.ControlsVisible {
		return s + "Enter Bill: " + models.CurrencySymbol + snap.BillText + "\n"
	}
	return s + fmt.Sprintf("Enter Bill: %s%s\nSplit: - %s +\nTip: %s\n%s\n",
		models.CurrencySymbol, snap.BillText, d.SplitCount, d.TipAmount, d.TipPercent)
}

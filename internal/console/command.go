package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op is a console command.
type Op int

const (
	OpEditBill Op = iota
	OpMoveSlider
	OpIncrement
	OpDecrement
	OpSubmit
	OpShow
	OpHelp
	OpQuit
)

// Command is one parsed input line.
type Command struct {
	Op       Op
	Text     string
	Position float64
}

var errUnknownCommand = errors.New("unknown command")

// ParseCommand turns an input line into a Command. A bare line that is
// not a command keyword is taken as new bill text.
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	word, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "", "submit", "ok":
		return Command{Op: OpSubmit}, nil
	case "+", "inc":
		return Command{Op: OpIncrement}, nil
	case "-", "dec":
		return Command{Op: OpDecrement}, nil
	case "show":
		return Command{Op: OpShow}, nil
	case "help", "?":
		return Command{Op: OpHelp}, nil
	case "quit", "exit", "q":
		return Command{Op: OpQuit}, nil
	case "bill":
		return Command{Op: OpEditBill, Text: rest}, nil
	case "tip":
		pos, err := parsePosition(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpMoveSlider, Position: pos}, nil
	}

	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Command{Op: OpEditBill, Text: trimmed}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", errUnknownCommand, word)
}

// parsePosition reads a slider position, either as a fraction in [0, 1]
// or as a percentage such as "15%".
func parsePosition(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("tip needs a slider position or a percentage")
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return 0, fmt.Errorf("bad tip percentage %q", s)
		}
		return v / 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad slider position %q", s)
	}
	return v, nil
}

const helpText = `Commands:
  <amount> | bill <text>   set the bill
  tip <0..1> | tip <N>%    move the tip slider
  + | -                    add or remove a person from the split
  submit | <enter>         commit the bill
  show                     redraw the display
  help                     show this help
  quit                     leave
`

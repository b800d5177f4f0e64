// Command tipcalc is an interactive tip calculator for the terminal. With
// -remote it drives a session on a running tip server instead of a local
// one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/mmynk/tipcalc/internal/calculator"
	"github.com/mmynk/tipcalc/internal/config"
	"github.com/mmynk/tipcalc/internal/console"
	"github.com/mmynk/tipcalc/internal/session"
	"github.com/mmynk/tipcalc/pkg/logging"
)

func main() {
	var (
		remote   = flag.String("remote", "", "base URL of a tip server to drive, e.g. http://localhost:8080")
		steps    = flag.Int("steps", calculator.SliderSteps, "tip slider steps across [0,1]; 0 for a continuous slider")
		logLevel = flag.String("log-level", "warn", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logging.Setup(os.Stderr, config.ParseLevel(*logLevel), "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *remote, *steps); err != nil {
		fmt.Fprintf(os.Stderr, "tipcalc: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, remote string, steps int) error {
	var ctrl console.Controller
	if remote != "" {
		r, err := console.Dial(ctx, &http.Client{Timeout: 10 * time.Second}, remote)
		if err != nil {
			return err
		}
		slog.Info("Connected to tip server", "url", remote)
		ctrl = r
	} else {
		ctrl = console.NewLocal(session.WithSliderSteps(steps))
	}
	defer func() {
		if err := ctrl.Close(context.Background()); err != nil {
			slog.Warn("Failed to close session", "error", err)
		}
	}()

	interactive := logging.IsTerminal(os.Stdin)
	if interactive {
		fmt.Println(`Type a bill amount to begin, "help" for commands.`)
	}
	return console.New(ctrl, os.Stdout, interactive).Run(ctx, os.Stdin)
}

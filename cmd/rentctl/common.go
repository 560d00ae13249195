package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/app"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/config"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

var commands = []subcommands.Command{
	&reconcileCmd{},
	&validateCmd{},
	&cleanupCmd{},
	&kpisCmd{},
	&trendCmd{},
	&compareCmd{},
}

// session carries the flags every command shares and the wired application.
type session struct {
	user     string
	currency string
	raw      bool

	app *app.App
	cfg *config.Config
}

func (s *session) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.user, "user", os.Getenv("RENTCTL_USER"), "user id to act as (defaults to $RENTCTL_USER)")
	f.StringVar(&s.currency, "currency", "", "display currency (defaults to DISPLAY_CURRENCY)")
	f.BoolVar(&s.raw, "raw", false, "print markdown without terminal rendering")
}

// open validates the shared flags and wires the application.
func (s *session) open(ctx context.Context) error {
	if err := validation.ValidateUUID(s.user); err != nil {
		return fmt.Errorf("-user: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if s.currency == "" {
		s.currency = cfg.Display.Currency
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	s.app = a
	s.cfg = cfg
	return nil
}

func (s *session) close() {
	if s.app != nil {
		s.app.Close()
	}
}

// run opens the session, calls fn and prints its markdown, mapping failures to exit codes.
func (s *session) run(ctx context.Context, fn func(ctx context.Context) (string, error)) subcommands.ExitStatus {
	if err := s.open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer s.close()

	md, err := fn(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	s.print(md)
	return subcommands.ExitSuccess
}

func (s *session) print(md string) {
	if s.raw {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

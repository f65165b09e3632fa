// Command ledgerctl runs maintenance tasks against the ledger database.
//
// Usage:
//
//	ledgerctl reconcile
//	ledgerctl token -user <id> [-email <email>]
//
// Both commands read the same environment as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/config"
	"github.com/mmynk/groupledger/internal/splitrequest"
	"github.com/mmynk/groupledger/internal/storage/backend"
	"github.com/mmynk/groupledger/pkg/logging"
)

func main() {
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("ledgerctl failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: ledgerctl <reconcile|token> [flags]")
	}

	switch args[0] {
	case "reconcile":
		return reconcile(ctx, cfg, out)
	case "token":
		return token(cfg, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func reconcile(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := splitrequest.New(store).Reconcile(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "checked=%d repaired=%d inconsistent=%d\n",
		report.Checked, report.Repaired, report.Inconsistent)
	return err
}

func token(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.String("user", "", "user ID to embed in the token")
	email := fs.String("email", "", "optional email claim")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("-user is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	tok, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL).Generate(*userID, *email)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

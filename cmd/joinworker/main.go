package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"teamjoin/internal/browser"
	"teamjoin/internal/config"
	"teamjoin/internal/models"
)

const usage = "Usage: joinworker <email> <code> <invite_link>"

type joinFunc func(ctx context.Context, cfg config.BrowserConfig, cred browser.Credentials) models.JoinOutcome

// joinworker prints exactly one outcome line to stdout: "success",
// "failed: ..." or "error: ...". Exit code 1 only for usage errors and
// rejected invites.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, browserJoin)
	stop()
	os.Exit(code)
}

func browserJoin(ctx context.Context, cfg config.BrowserConfig, cred browser.Credentials) models.JoinOutcome {
	return browser.NewJoiner(cfg).Join(ctx, cred)
}

func run(ctx context.Context, argv []string, stdout io.Writer, join joinFunc) int {
	var configPath string
	flagSet := pflag.NewFlagSet("joinworker", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&configPath, "config", config.DefaultPath, "path to config.yaml (browser section)")
	if err := flagSet.Parse(argv); err != nil {
		fmt.Fprintln(stdout, usage)
		return 1
	}
	args := flagSet.Args()
	if len(args) != 3 {
		fmt.Fprintln(stdout, usage)
		return 1
	}

	cfg, err := config.LoadBrowser(configPath)
	if err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 0
	}

	outcome := join(ctx, cfg, browser.Credentials{
		Email:     args[0],
		Code:      args[1],
		InviteURL: args[2],
	})
	fmt.Fprintln(stdout, outcome.String())
	return exitCode(outcome)
}

// exitCode: 1 только для отклонённого инвайта, остальные исходы 0
func exitCode(o models.JoinOutcome) int {
	if o.Rejected() {
		return 1
	}
	return 0
}

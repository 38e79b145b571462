package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/afsui-staker/internal/history"
)

const usage = `Usage: staker [-config path] [-summary table|csv|json|none] [command]

Commands:
  tui              interactive staking terminal (default)
  info             show exchange rate and validator details
  balance          show the SUI balance of the keystore account
  price            show the current SUI price in USD
  expect <amount>  estimate afSUI received for <amount> SUI
  stake <amount>   stake <amount> SUI and wait for confirmation

Stakes attempted during a tui or stake run are summarised on exit.
`

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	summary := flag.String("summary", string(history.FormatTable), "Session summary format")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{configPath: *configPath, summary: *summary}, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

var commands = map[string]bool{
	"tui":     true,
	"info":    true,
	"balance": true,
	"price":   true,
	"expect":  true,
	"stake":   true,
}

type options struct {
	configPath string
	summary    string // history format, or "none"
}

func run(ctx context.Context, opts options, args []string) error {
	command := "tui"
	if len(args) > 0 {
		command = args[0]
	}
	if !commands[command] {
		return errUsage
	}

	needsAmount := command == "stake" || command == "expect"
	if needsAmount && len(args) != 2 {
		return errUsage
	}
	if !needsAmount && len(args) > 1 {
		return errUsage
	}

	var summary history.Format
	if opts.summary != "none" && opts.summary != "" {
		f, err := history.ParseFormat(opts.summary)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		summary = f
	}

	app, err := newApp(opts.configPath, command == "tui")
	if err != nil {
		return err
	}
	if command == "tui" || command == "stake" {
		app.summary = summary
	}
	defer app.Close()

	switch command {
	case "tui":
		return app.runTUI(ctx)
	case "info":
		return app.printInfo(ctx)
	case "balance":
		return app.printBalance(ctx)
	case "price":
		return app.printPrice(ctx)
	case "expect":
		return app.printExpected(ctx, args[1])
	default:
		return app.stake(ctx, args[1])
	}
}

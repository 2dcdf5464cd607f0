package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wallet_enricher/internal/app/bootstrap"
	"wallet_enricher/internal/config"
)

const usage = `usage: dune_table [-job labels|portfolios] create | clear | delete | insert <csv>`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dune_table", flag.ContinueOnError)
	job := fs.String("job", "labels", "table to manage: labels or portfolios")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	app, err := bootstrap.New(config.PathFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: %v\n", err)
		return 1
	}
	defer app.Zap.Sync()

	if err := app.Config.ValidateDune(); err != nil {
		app.Zap.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	var table config.TableConfig
	switch *job {
	case "labels":
		table = app.Config.Labels.Table
	case "portfolios":
		table = app.Config.Portfolios.Table
	default:
		fmt.Fprintf(os.Stderr, "unknown job %q\n%s\n", *job, usage)
		return 2
	}
	if table.Namespace == "" || table.Name == "" {
		app.Zap.Error("Table namespace and name are required", zap.String("job", *job))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch fs.Arg(0) {
	case "create":
		_, err = app.Dune.CreateTable(ctx, table.CreateRequest())
	case "clear":
		err = app.Dune.ClearTable(ctx, table.Namespace, table.Name)
	case "delete":
		err = app.Dune.DeleteTable(ctx, table.Namespace, table.Name)
	case "insert":
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, usage)
			return 2
		}
		_, err = app.Dune.InsertCSV(ctx, table.Namespace, table.Name, fs.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", fs.Arg(0), usage)
		return 2
	}
	if err != nil {
		app.Zap.Error("Table command failed", zap.String("command", fs.Arg(0)), zap.String("table", table.FullName()), zap.Error(err))
		return 1
	}
	return 0
}

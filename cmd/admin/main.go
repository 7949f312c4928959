package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/lifestyle/internal/admin"
	"github.com/dmitrijs2005/lifestyle/internal/buildinfo"
	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/config"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifestyle/internal/server/services"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	cmd, args := admin.SplitCommand(os.Args[1:])

	db, err := dbx.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := &repomanager.PostgresRepositoryManager{}
	app := admin.New(
		services.NewUserService(db, rm).WithPasswordValidation(true),
		admin.NewMigrator(db, rm),
		os.Stdin,
		os.Stdout,
	)
	return app.Run(ctx, cmd, args)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"teamjoin/internal/app"
	"teamjoin/internal/config"
)

// @title                       teamjoin admin API
// @version                     1.0
// @description                 Участники, инвайты и PDF-отчёт бота.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	var configPath string
	flagSet := pflag.NewFlagSet("bot", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", config.DefaultPath, "path to config.yaml")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("config: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

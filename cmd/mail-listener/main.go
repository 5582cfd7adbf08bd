package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/listener"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	fmt.Printf("price-list listener starting provider=%s label=%s interval=%ds\n",
		cfg.MailListenerProvider, cfg.MailListenerLabel, cfg.MailListenerIntervalSec)

	svc := listener.NewService(db, cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

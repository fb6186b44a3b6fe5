// Command greensentinel runs the GreenSentinel client core: it opens
// the durable store, wires the offline queue to the remote API, and
// keeps the connectivity trigger alive until the process is stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/api"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/auth"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/config"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/connectivity"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/logging"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/dispatch"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/queue"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/trigger"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/store"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "greensentinel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(os.Stdout, logging.LogLevel(cfg.Log.Level))
	logging.Info("greensentinel core starting", map[string]interface{}{
		"version": Version,
	})

	durable, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer durable.Close()

	session := auth.NewSession(durable)
	client := api.NewClient(cfg.API.BaseURL, session, cfg.API.Timeout)

	table, err := dispatch.NewTable(api.Executors(client)...)
	if err != nil {
		return err
	}

	monitor := connectivity.NewMonitor(true)

	service := offline.NewService(durable, table, session, monitor,
		offline.WithQueueOptions(queue.WithStorageKey(cfg.Queue.StorageKey)),
		offline.WithProcessorOptions(
			offline.WithMaxAttempts(cfg.Queue.MaxAttempts),
			offline.WithRetention(cfg.Queue.Retention),
		),
		offline.WithTriggerOptions(trigger.WithSettleDelay(cfg.Queue.SettleDelay)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.Initialize(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	status := service.Status()
	logging.Info("greensentinel core stopping", map[string]interface{}{
		"queued_total":   status.Total,
		"queued_pending": status.Pending,
	})
	return nil
}

func openStore(cfg *config.Config) (store.DurableStore, error) {
	switch cfg.Store.Backend {
	case "file":
		return store.OpenFile(cfg.Store.DataDir)
	default:
		return store.OpenSQLite(cfg.Store.DataDir)
	}
}

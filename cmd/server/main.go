package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/account-ledger/internal/config"
	"github.com/sheikh-saqib/account-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/account-ledger/internal/handler"
	interfaces "github.com/sheikh-saqib/account-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger/internal/ledger"
	"github.com/sheikh-saqib/account-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/account-ledger/internal/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so its deferred closes always execute.
// They run in reverse order: ledger (flushes queued events), publisher, store.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closer.Close()

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		compression, err := kafka.ParseCompression(cfg.KafkaCompression)
		if err != nil {
			return fmt.Errorf("invalid KAFKA_COMPRESSION: %w", err)
		}
		p := kafka.NewPublisher(cfg.KafkaBrokers, compression)
		defer p.Close()
		publisher = p
		log.Printf("Publishing ledger events to %v", cfg.KafkaBrokers)
	}

	ledgerService := ledger.NewLedger(store, publisher)
	defer ledgerService.Close()
	fmt.Println("Account ledger loaded. Version:", ledgerService.Version())

	if cfg.HTTPAddr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	return serve(ctx, ln, ledgerService)
}

// serve runs the HTTP API until ctx is cancelled and returns only after
// in-flight requests have drained.
func serve(ctx context.Context, ln net.Listener, l interfaces.AccountLedger) error {
	router := gin.Default()
	handler.NewLedgerHandler(l).Register(router)

	srv := &http.Server{Handler: router}
	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting server on %s", ln.Addr())
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	if err := <-shutdownDone; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured backing store. The returned closer
// releases whatever the store holds open.
func openStore(ctx context.Context, cfg *config.Config) (interfaces.LedgerStore, io.Closer, error) {
	if cfg.Store != config.StorePostgres {
		return memory.NewMemoryLedgerStore(), io.NopCloser(nil), nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.NewPostgresLedgerStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return store, db, nil
}

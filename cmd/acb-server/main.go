// Command acb-server runs the ACB ledger's HTTP service. Flag-based
// configuration and a short-lived bootstrap sequence, in the style of the
// teacher's cmd/app.go package-level flag.String/flag.Bool wiring.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/canledger/acb/api"
	"github.com/canledger/acb/catalog"
	"github.com/canledger/acb/coordinator"
	"github.com/canledger/acb/fx"
	"github.com/canledger/acb/ledger"
	"github.com/canledger/acb/ledger/memstore"
	"github.com/canledger/acb/ledger/sqlitestore"
)

var (
	addr               = flag.String("addr", ":8080", "address to listen on")
	sqlitePath         = flag.String("sqlite-path", "", "path to the sqlite database file; empty uses an in-memory store")
	fxAPIBase          = flag.String("fx-api-base", "", "base URL of the FX rate provider; empty disables auto-fill of fxRate")
	fxQPS              = flag.Float64("fx-qps", 5, "FX provider requests per second")
	fxBurst            = flag.Int("fx-burst", 5, "FX provider request burst")
	bulkImportTimeout  = flag.Duration("bulk-import-timeout", coordinator.DefaultSliceTimeout, "per-slice timeout for bulk import")
	verbose            = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	store, closeStore, err := openStore(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	cat := catalog.New()
	coord := coordinator.New(store, cat)

	if *fxAPIBase != "" {
		provider := fx.NewRestyProvider(*fxAPIBase, *fxQPS, *fxBurst)
		coord = coord.WithFXProvider(provider)
		log.Info().Str("base", *fxAPIBase).Msg("fx provider configured")
	}

	srv := api.NewWithBulkImportTimeout(coord, cat, log, *bulkImportTimeout)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", *addr).Dur("bulkImportTimeout", *bulkImportTimeout).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	waitForShutdown(log, httpServer)
}

func openStore(log zerolog.Logger) (ledger.Store, func(), error) {
	if *sqlitePath == "" {
		log.Info().Msg("using in-memory store")
		return memstore.New(), func() {}, nil
	}
	log.Info().Str("path", *sqlitePath).Msg("opening sqlite store")
	store, err := sqlitestore.Open(*sqlitePath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func waitForShutdown(log zerolog.Logger, httpServer *http.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

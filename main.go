package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
	"github.com/Jep4/diabete-random-generate/internal/store"
)

// loadCatalog reads the food table from DB_URL, or the embedded table when unset.
func loadCatalog(ctx context.Context, dsn string) (exchange.Catalog, error) {
	src, err := store.Open(ctx, dsn)
	if err != nil {
		return exchange.Catalog{}, err
	}
	defer src.Close()
	return src.LoadCatalog(ctx)
}

func main() {
	log.SetPrefix("diabete-random-generate: ")

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	cfg.logSummary()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	catalog, err := loadCatalog(loadCtx, cfg.DBURL)
	loadCancel()
	if err != nil {
		log.Fatalf("[main] load food catalog: %v", err)
	}

	sessions := newSessionStore(cfg.SessionTTL, nil)
	go sessions.runJanitor(ctx, time.Minute)

	h := newHandler(cfg, catalog, exchange.NewSampler(nil), sessions)
	srv := &http.Server{
		Addr:              cfg.addr(),
		Handler:           h.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on %s", cfg.addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[main] received shutdown signal")
	case err := <-errCh:
		log.Printf("[main] server error: %v", err)
	}

	cancel()
	sessions.closeAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

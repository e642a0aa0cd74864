package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lendo.org/internal/cache"
	"lendo.org/internal/httpapi"
	"lendo.org/internal/loan"
	"lendo.org/internal/obs"
	"lendo.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Without a DSN the service runs on the in-memory ledger, which is
	// enough for local development and smoke tests.
	var (
		loans loan.Service
		probe httpapi.ReadyProbe
		store *pg.Store
	)
	if dsn := os.Getenv("LENDO_PG_DSN"); dsn != "" {
		var err error
		store, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		loans = store
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		log.Println("LENDO_PG_DSN not set, using in-memory store")
		loans = loan.NewInMemory()
	}

	var redisCache *cache.Redis
	if addr := os.Getenv("LENDO_REDIS_ADDR"); addr != "" {
		redisCache = cache.NewRedis(addr, 24*time.Hour)
		loans = cache.Wrap(loans, redisCache)
	}

	api := httpapi.New(probe, version, loans)

	addr := os.Getenv("LENDO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting lendo-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if store != nil {
		_ = store.Close()
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	log.Println("Stopped")
}

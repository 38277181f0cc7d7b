package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicport/patient-portal/internal/config"
	"github.com/clinicport/patient-portal/internal/db"
	"github.com/clinicport/patient-portal/internal/scheduling"
	"github.com/clinicport/patient-portal/pkg/logging"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("slot-generator starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running slot generator in env=%s horizon=%dd interval=%s",
		cfg.Env, cfg.SlotHorizonDays, cfg.GeneratorInterval)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	repo := scheduling.NewPgRepository(pgPool)
	gen := scheduling.NewGenerator(repo, logging.New(cfg.LogLevel), nil)

	// Run once at startup so the inventory is populated before demand
	runOnce(rootCtx, gen, cfg.SlotHorizonDays)

	ticker := time.NewTicker(cfg.GeneratorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping slot generator")
			return
		case <-ticker.C:
			runOnce(rootCtx, gen, cfg.SlotHorizonDays)
		}
	}
}

func runOnce(ctx context.Context, gen *scheduling.Generator, daysAhead int) {
	runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	start := time.Now()
	inserted, err := gen.Generate(runCtx, daysAhead)
	if err != nil {
		log.Printf("generation run error: %v", err)
		return
	}
	log.Printf("generation run complete: %d slots inserted in %s", inserted, time.Since(start))
}

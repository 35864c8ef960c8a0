package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jt828/go-measured/internal/bootstrap"
	"github.com/jt828/go-measured/internal/workload"
	"github.com/jt828/go-measured/pkg/observability"
	"github.com/jt828/go-measured/pkg/observability/implementation"
)

var errReportUnavailable = errors.New("report unavailable")

func processData() int {
	time.Sleep(time.Duration(5+rand.Intn(20)) * time.Millisecond)
	return 42
}

func fetchReport(ctx context.Context) (string, error) {
	delay := time.Duration(10+rand.Intn(40)) * time.Millisecond
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if rand.Intn(10) == 0 {
		return "", errReportUnavailable
	}
	return "ok", nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		panic(err)
	}

	obs, err := implementation.NewObservability(cfg.Observability)
	if err != nil {
		panic(err)
	}
	log := obs.Logger()

	if err := obs.Start(ctx); err != nil {
		log.Error("failed to start observability", observability.Err(err))
	}

	m, err := bootstrap.InitializeMeasurer(cfg, obs)
	if err != nil {
		log.Fatal("failed to initialize measurer", observability.Err(err))
	}

	w := workload.New(m, obs.Meter(), log, processData, fetchReport)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Info("Shutting down demo...")
		cancel()
	}()

	log.Info("measuring demo workload",
		observability.String("metrics_addr", cfg.Observability.MetricsAddr),
		observability.String("metrics_backend", cfg.Observability.MetricsBackend),
		observability.String("precision", cfg.Precision.String()),
	)

	w.Run(ctx, 250*time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := obs.Close(shutdownCtx); err != nil {
		log.Error("failed to close observability", observability.Err(err))
	}
}

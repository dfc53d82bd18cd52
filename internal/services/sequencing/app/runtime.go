package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"sequent.dev/internal/services/outreach/classify"
	"sequent.dev/internal/services/outreach/deliver"
	"sequent.dev/internal/services/outreach/draft"
	"sequent.dev/internal/services/outreach/inbox"
	"sequent.dev/internal/services/sequencing/domain"
	"sequent.dev/internal/services/sequencing/seed"
	"sequent.dev/internal/services/sequencing/storage"
	"sequent.dev/internal/services/sequencing/storage/sqlite"
)

const (
	defaultHealthPort = 8089
	defaultDBPath     = "data/sequencer.db"
)

// RuntimeConfig controls daemon startup, collaborator wiring, and the scan
// loop.
type RuntimeConfig struct {
	DBPath   string
	SeedPath string
	// HealthPort is the gRPC health listener port. The endpoint reports
	// NOT_SERVING until the store is open and seeded.
	HealthPort int
	// ScanInterval is the period of the background response scan. Zero or
	// negative disables the ticker; scan_run still works on demand.
	ScanInterval time.Duration

	// Collaborators. ModelGenerator may be nil; drafting then uses the
	// deterministic template. Sender, Inbox, and Classifier may be nil
	// when delivery or scanning is not used.
	ModelGenerator draft.Generator
	Sender         deliver.Sender
	Inbox          inbox.Source
	Classifier     classify.Classifier
	MinConfidence  float64
	Locale         string
}

// Runtime holds the wired services handed to the serve callback.
type Runtime struct {
	Sequencing *domain.Service
	Outreach   *Outreach
}

// NewSequencingService builds the domain service over a storage backend.
func NewSequencingService(store storage.Store, clock func() time.Time, newID func() (string, error)) *domain.Service {
	return domain.NewService(newStoreAdapter(store), clock, newID)
}

// Run opens the store, seeds the roster, starts the health listener and
// scan ticker, and then blocks in serve until the context ends. The serve
// callback typically runs the MCP transport.
func Run(ctx context.Context, cfg RuntimeConfig, serve func(context.Context, *Runtime) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if serve == nil {
		return fmt.Errorf("serve callback is required")
	}
	if cfg.HealthPort <= 0 {
		cfg.HealthPort = defaultHealthPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultDBPath
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sequencer storage dir: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open sequencing store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close sequencing store: %v", closeErr)
		}
	}()

	sequencing := NewSequencingService(store, nil, nil)
	outreach, err := NewOutreach(OutreachConfig{
		Sequencing:     sequencing,
		ModelGenerator: cfg.ModelGenerator,
		Sender:         cfg.Sender,
		Inbox:          cfg.Inbox,
		Classifier:     cfg.Classifier,
		MinConfidence:  cfg.MinConfidence,
		Locale:         cfg.Locale,
	})
	if err != nil {
		return fmt.Errorf("wire outreach: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus("sequencer.runtime", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()
	log.Printf("health server listening at %v", listener.Addr())

	if strings.TrimSpace(cfg.SeedPath) != "" {
		inputs, err := seed.Load(cfg.SeedPath)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		seeded, err := sequencing.Seed(ctx, inputs)
		if err != nil {
			return fmt.Errorf("seed roster: %w", err)
		}
		if len(seeded) > 0 {
			log.Printf("seeded %d participants from %s", len(seeded), cfg.SeedPath)
		}
	}

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("sequencer.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	runtime := &Runtime{Sequencing: sequencing, Outreach: outreach}

	if cfg.ScanInterval > 0 {
		scanCtx, stopScan := context.WithCancel(ctx)
		defer stopScan()
		go runScanLoop(scanCtx, outreach, cfg.ScanInterval)
	}

	return serve(ctx, runtime)
}

// runScanLoop runs one scan pass per tick until the context ends. A failed
// pass is logged and the loop keeps going; individual item failures are
// already isolated inside Scan.
func runScanLoop(ctx context.Context, outreach *Outreach, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := outreach.Scan(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("scan pass failed: %v", err)
				continue
			}
			logScanReport(report)
		}
	}
}

func logScanReport(report ScanReport) {
	if report.Scanned == 0 {
		return
	}
	log.Printf("scan pass: scanned=%d classified=%d failed=%d", report.Scanned, report.Classified(), report.Failed())
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			log.Printf("scan %s: %v", outcome.ParticipantID, outcome.Err)
		}
	}
}

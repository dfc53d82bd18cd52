// Package sequencer parses daemon flags and launches the sequencing runtime.
package sequencer

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	entrypoint "sequent.dev/internal/platform/cmd"
	platformgrpc "sequent.dev/internal/platform/grpc"
	"sequent.dev/internal/platform/timeouts"
	mcpservice "sequent.dev/internal/services/mcp/service"
	"sequent.dev/internal/services/outreach/classify"
	"sequent.dev/internal/services/outreach/deliver"
	"sequent.dev/internal/services/outreach/draft"
	"sequent.dev/internal/services/outreach/inbox"
	"sequent.dev/internal/services/sequencing/app"
)

// Config holds sequencer command configuration.
type Config struct {
	DBPath        string        `env:"SEQUENT_DB_PATH" envDefault:"data/sequencer.db"`
	SeedPath      string        `env:"SEQUENT_SEED_PATH"`
	HealthPort    int           `env:"SEQUENT_HEALTH_PORT" envDefault:"8089"`
	Transport     string        `env:"SEQUENT_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr      string        `env:"SEQUENT_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	ScanInterval  time.Duration `env:"SEQUENT_SCAN_INTERVAL" envDefault:"0"`
	InboxDir      string        `env:"SEQUENT_INBOX_DIR"`
	ResponsesURL  string        `env:"SEQUENT_OPENAI_RESPONSES_URL"`
	Model         string        `env:"SEQUENT_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	APIKey        string        `env:"SEQUENT_OPENAI_API_KEY"`
	MinConfidence float64       `env:"SEQUENT_CLASSIFY_MIN_CONFIDENCE" envDefault:"0"`
	WebhookURL    string        `env:"SEQUENT_DELIVERY_WEBHOOK_URL"`
	Locale        string        `env:"SEQUENT_ROSTER_LOCALE" envDefault:"en"`

	// HealthCheck probes a running daemon's health endpoint and exits
	// instead of serving. Flag-only; meant for container orchestration.
	HealthCheck bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The sequencer SQLite database path")
	fs.StringVar(&cfg.SeedPath, "seed-path", cfg.SeedPath, "The participant seed YAML path (empty skips seeding)")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The sequencer health gRPC server port")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "MCP transport: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "MCP HTTP listen address (for the http transport)")
	fs.DurationVar(&cfg.ScanInterval, "scan-interval", cfg.ScanInterval, "Background response scan interval (0 disables)")
	fs.StringVar(&cfg.InboxDir, "inbox-dir", cfg.InboxDir, "Inbound response drop directory")
	fs.StringVar(&cfg.WebhookURL, "delivery-webhook-url", cfg.WebhookURL, "Delivery webhook URL (empty logs sends instead)")
	fs.Float64Var(&cfg.MinConfidence, "classify-min-confidence", cfg.MinConfidence, "Classification confidence floor; below it results are treated as unclear")
	fs.StringVar(&cfg.Locale, "roster-locale", cfg.Locale, "Collation locale for the confirmed-name roster")
	fs.BoolVar(&cfg.HealthCheck, "healthcheck", false, "Probe the health endpoint of a running sequencer and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the sequencer runtime, or probes a running one when the
// healthcheck flag is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		return probeHealth(ctx, cfg.HealthPort)
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSequencer, func(context.Context) error {
		runtimeCfg := app.RuntimeConfig{
			DBPath:        cfg.DBPath,
			SeedPath:      cfg.SeedPath,
			HealthPort:    cfg.HealthPort,
			ScanInterval:  cfg.ScanInterval,
			MinConfidence: cfg.MinConfidence,
			Locale:        cfg.Locale,
		}

		if strings.TrimSpace(cfg.APIKey) != "" {
			runtimeCfg.ModelGenerator = draft.NewOpenAIGenerator(draft.OpenAIConfig{
				ResponsesURL: cfg.ResponsesURL,
				Model:        cfg.Model,
				APIKey:       cfg.APIKey,
			})
			runtimeCfg.Classifier = classify.NewOpenAIClassifier(classify.OpenAIConfig{
				ResponsesURL: cfg.ResponsesURL,
				Model:        cfg.Model,
				APIKey:       cfg.APIKey,
			})
		} else {
			runtimeCfg.Classifier = classify.NewKeywordClassifier()
		}

		if strings.TrimSpace(cfg.WebhookURL) != "" {
			runtimeCfg.Sender = deliver.NewWebhookSender(deliver.WebhookConfig{URL: cfg.WebhookURL})
		} else {
			runtimeCfg.Sender = deliver.NewLogSender(nil)
		}

		if strings.TrimSpace(cfg.InboxDir) != "" {
			source, err := inbox.NewDirSource(cfg.InboxDir)
			if err != nil {
				return fmt.Errorf("open inbox directory: %w", err)
			}
			runtimeCfg.Inbox = source
		}

		return app.Run(ctx, runtimeCfg, func(ctx context.Context, runtime *app.Runtime) error {
			return mcpservice.Run(ctx, mcpservice.Deps{
				Sequencing: runtime.Sequencing,
				Outreach:   runtime.Outreach,
				Locale:     cfg.Locale,
			}, mcpservice.Config{
				Transport: mcpservice.TransportKind(cfg.Transport),
				HTTPAddr:  cfg.HTTPAddr,
			})
		})
	})
}

// probeHealth dials the local health endpoint and reports whether the
// daemon is SERVING.
func probeHealth(ctx context.Context, port int) error {
	if port <= 0 {
		return fmt.Errorf("health port is required")
	}
	addr := fmt.Sprintf("localhost:%d", port)

	probeCtx, cancel := context.WithTimeout(ctx, timeouts.HealthProbe)
	defer cancel()

	if err := platformgrpc.ProbeHealth(probeCtx, addr, timeouts.GRPCDial, log.Printf); err != nil {
		return fmt.Errorf("health probe %s: %w", addr, err)
	}
	return nil
}

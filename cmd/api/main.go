package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"bench-api/internal/config"
	"bench-api/internal/graph"
	"bench-api/internal/http"
	"bench-api/internal/llm"
	"bench-api/internal/nodes"
	"bench-api/internal/service"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// Demonstration API: health, static demo payloads, a CPU-bound Fibonacci endpoint,
// and chat through a single-node language-model pipeline.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Bench API
//   description: |
//     Small benchmark target. /chat forwards a message to an OpenAI-compatible
//     backend; /chat/mock answers locally with "mock: " plus the message.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

const (
	name = "bench-api"

	// backendProbeTimeout bounds the startup check against the model backend.
	backendProbeTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "serve the demo API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "port to listen on (overrides PORT)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format: text or json (overrides LOG_FORMAT)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Configuration errors abort startup before anything listens.
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := cfg.Apply(config.Overrides{
				Port:      int(cmd.Int("port")),
				LogLevel:  cmd.String("log-level"),
				LogFormat: cmd.String("log-format"),
			}); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			return run(ctx, cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	setupLogging(cfg)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, llm.WithTimeout(cfg.LLMTimeout))
	probeBackend(ctx, llmClient, cfg.LLMModelName)

	livePipeline := graph.New("llm", nodes.NewLiveModel(llmClient, llm.ChatParams{
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: llm.Float64(cfg.LLMTemperature),
	}))
	mockPipeline := graph.New("mock", nodes.Mock{})
	slog.Info("Pipelines ready",
		"live", livePipeline.Steps(),
		"mock", mockPipeline.Steps(),
	)

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		ChatService:    service.NewChatService(livePipeline, mockPipeline),
		Demo:           service.NewDemoService(),
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration",
		"base_url", cfg.LLMBaseURL,
		"model", cfg.LLMModelName,
		"temperature", cfg.LLMTemperature,
		"max_tokens", cfg.LLMMaxTokens,
		"timeout", cfg.LLMTimeout.String(),
	)

	srv := http.NewServer(addr, router, cfg.ShutdownTimeout)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupLogging configures structured logging with the configured level and format.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler).With("service", name))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

// probeBackend logs whether the model backend is reachable. It never fails startup:
// the backend may come up after the API does.
func probeBackend(ctx context.Context, client *llm.Client, model string) {
	probeCtx, cancel := context.WithTimeout(ctx, backendProbeTimeout)
	defer cancel()

	found, err := client.HasModel(probeCtx, model)
	switch {
	case err != nil:
		slog.Warn("LLM backend not reachable at startup", "base_url", client.BaseURL, "error", err)
	case !found:
		slog.Warn("LLM backend does not list the configured model", "model", model)
	default:
		slog.Info("LLM backend ready", "model", model)
	}
}

// Command chat-notifier reads JSON event records from stdin, one per line,
// and dispatches them as chat webhook notifications.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/macielcr7/exa-chat-notifier/internal/cliconfig"
	"github.com/macielcr7/exa-chat-notifier/pkg/log"
	"github.com/macielcr7/exa-chat-notifier/pkg/notifier"
)

const helpDescription = `
Pipe JSON event records into chat-notifier and it will post them to your
chat webhook as formatted cards. One JSON object per line.

Highlights:
  - Batches notifications and retries failed deliveries with backoff.
  - Suppresses duplicate events within a configurable window.
  - Routes by destination name; configure via file, env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  tail -f events.jsonl | chat-notifier --webhook-url https://chat.example.com/hook
  chat-notifier --config $HOME/.chat-notifier/config.toml --level important < events.jsonl
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var (
		cfgPath      string
		destinations map[string]string
	)

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "chat-notifier",
		Short:   "Post JSON events from stdin to a chat webhook",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if len(destinations) > 0 {
				cfg.Destinations = destinations
			}

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment variables (CHAT_NOTIFIER_*) override file config
			// but are overridden by flags (checked via changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg, cfgFile, zlog)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.chat-notifier/config.toml)")
	root.Flags().StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "default webhook URL")
	root.Flags().StringToStringVar(&destinations, "destination", nil, "named destination as name=url (repeatable)")

	root.Flags().StringVar(&cfg.Level, "level", cfg.Level, "dispatch level: all or important")
	root.Flags().IntVar(&cfg.MaxMessage, "max-message", cfg.MaxMessage, "maximum message length in characters")

	root.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP timeout per delivery attempt")
	root.Flags().IntVar(&cfg.RetryMax, "retry-max", cfg.RetryMax, "total delivery attempts per notification")
	root.Flags().DurationVar(&cfg.RetryBase, "retry-base", cfg.RetryBase, "wait before the second attempt; doubles each retry")
	root.Flags().IntVar(&cfg.RatePerSec, "rate", cfg.RatePerSec, "maximum outbound requests per second (0 = unlimited)")

	root.Flags().BoolVar(&cfg.Idempotency, "idempotency", cfg.Idempotency, "suppress duplicate events")
	root.Flags().DurationVar(&cfg.IdempotencyTTL, "idempotency-ttl", cfg.IdempotencyTTL, "how long a delivered event suppresses duplicates")
	root.Flags().DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "cadence of expired-key cleanup")
	if err := root.Flags().MarkHidden("sweep-interval"); err != nil {
		zlog.Info().Err(err).Msg("failed to hide sweep-interval flag")
	}

	root.Flags().BoolVar(&cfg.Batch, "batch", cfg.Batch, "batch notifications before sending")
	root.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "queue length that triggers a flush")
	root.Flags().DurationVar(&cfg.BatchInterval, "batch-interval", cfg.BatchInterval, "cadence of time-triggered flushes")
	root.Flags().BoolVar(&cfg.FlushOnExit, "flush-on-exit", cfg.FlushOnExit, "deliver queued notifications on shutdown")

	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload destinations when the config file changes")

	if err := root.Execute(); err != nil {
		zlog.Error().Err(err).Msg("chat-notifier")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, cfgFile string, zlog zerolog.Logger) error {
	logger := log.NewZerologAdapterWithLogger(zlog)

	resolver := notifier.NewDynamicResolver(cfg.WebhookURL, cfg.Destinations)

	n, err := notifier.New(notifier.Config{
		Level:             notifier.Level(cfg.Level),
		MaxMessage:        cfg.MaxMessage,
		DefaultWebhookURL: cfg.WebhookURL,
		Destinations:      cfg.Destinations,
		Timeout:           cfg.Timeout,
		RetryMax:          cfg.RetryMax,
		RetryBase:         cfg.RetryBase,
		RatePerSec:        cfg.RatePerSec,
		Idempotency: notifier.IdempotencyConfig{
			Enabled:       cfg.Idempotency,
			TTL:           cfg.IdempotencyTTL,
			SweepInterval: cfg.SweepInterval,
		},
		Batch: notifier.BatchConfig{
			Enabled:        cfg.Batch,
			Size:           cfg.BatchSize,
			Interval:       cfg.BatchInterval,
			FlushOnDestroy: cfg.FlushOnExit,
		},
	},
		notifier.WithLogger(logger),
		notifier.WithResolver(resolver),
		notifier.WithOnError(func(item notifier.BatchItem, err error) {
			zlog.Error().Err(err).Str("destination", item.Destination).Msg("delivery failed")
		}),
	)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.WatchConfig && cfgFile != "" {
		watcher := cliconfig.NewWatcher(cfgFile, func(fc cliconfig.FileConfig) {
			url := fc.WebhookURL
			if url == "" {
				url = cfg.WebhookURL
			}
			resolver.Update(url, fc.Destinations)
		}, logger)
		if err := watcher.Start(ctx); err != nil {
			zlog.Warn().Err(err).Msg("config watcher disabled")
		} else {
			defer watcher.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Reader goroutine: one JSON object per stdin line.
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- readEvents(ctx, n, zlog)
	}()

	var readErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("received signal, stopping...")
		cancel()
	case readErr = <-doneCh:
	}

	// Graceful shutdown: flush or discard queued items per configuration.
	destroyCtx, destroyCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer destroyCancel()
	n.Destroy(destroyCtx)

	return readErr
}

// readEvents consumes stdin until EOF or context cancellation.
// Malformed lines are logged and skipped; they never stop the stream.
func readEvents(ctx context.Context, n *notifier.Notifier, zlog zerolog.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p notifier.Payload
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			zlog.Warn().Err(err).Msg("skipping malformed event")
			continue
		}

		if err := n.Notify(ctx, p); err != nil {
			zlog.Error().Err(err).Msg("notify failed")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

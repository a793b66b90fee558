// Command binfolio is the entry point for the portfolio service. It loads
// configuration, validates it, wires dependencies, sets up signal handling,
// and starts the application in the configured mode.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/davidhsu/binfolio/internal/app"
	"github.com/davidhsu/binfolio/internal/config"
	"github.com/davidhsu/binfolio/internal/crypto"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	encryptSecret := flag.String("encrypt-secret", "", "encrypt the API secret read from stdin to the given file and exit")
	flag.Parse()

	// Logs go to stderr so snapshot mode can write CSV to stdout cleanly.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *encryptSecret != "" {
		if err := runEncryptSecret(*encryptSecret); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("binfolio starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	// Create the application.
	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application.
	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if err == context.Canceled {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("binfolio stopped")
}

// runEncryptSecret reads the plain API secret on the first line of stdin and
// the password on the second, encrypts, and writes the blob to path.
func runEncryptSecret(path string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprint(os.Stderr, "API secret: ")
	secret, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	blob, err := crypto.EncryptSecret(strings.TrimSpace(secret), strings.TrimSpace(password))
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(os.Stderr, "encrypted secret written to %s\n", path)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrforge/qrforge/api"
	"github.com/qrforge/qrforge/config"
	"github.com/qrforge/qrforge/generator"
	"github.com/qrforge/qrforge/notify"
	"github.com/qrforge/qrforge/qr"
	"github.com/qrforge/qrforge/upload"
)

var version = "v0.1.0"

// qrFlags are the look-and-feel flags shared by the encode and file commands.
// Unset flags fall back to the config file.
type qrFlags struct {
	fill    string
	back    string
	boxSize int
	border  int
	output  string
}

func (f *qrFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fill, "fill", "", "Module color (name or #hex)")
	cmd.Flags().StringVar(&f.back, "back", "", "Background color (name or #hex)")
	cmd.Flags().IntVar(&f.boxSize, "box-size", 0, "Pixels per module")
	cmd.Flags().IntVar(&f.border, "border", -1, "Quiet zone width in modules")
	cmd.Flags().StringVarP(&f.output, "output", "o", "qr_code.png", "Output PNG path")
}

func (f *qrFlags) options(defaults qr.Options) qr.Options {
	opts := defaults
	if f.fill != "" {
		opts.FillColor = f.fill
	}
	if f.back != "" {
		opts.BackColor = f.back
	}
	if f.boxSize != 0 {
		opts.BoxSize = f.boxSize
	}
	if f.border >= 0 {
		opts.Border = f.border
	}
	return opts
}

func main() {
	var (
		configPath string
		envFile    string
	)

	root := &cobra.Command{
		Use:           "qrforge",
		Short:         "Turn text, links and files into QR codes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")

	// load is shared by every command: .env first so that QRF_* values it
	// sets are picked up as overrides.
	load := func() (*config.Config, *slog.Logger, error) {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, nil, err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, newLogger(cfg.LogLevel), nil
	}

	// --- serve command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log)
		},
	})

	// --- encode command ------------------------------------------------------
	var encodeFlags qrFlags
	encodeCmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text or a URL as a QR code PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return runEncode(newGenerator(cfg, log), args[0], encodeFlags.options(cfg.QR), encodeFlags.output)
		},
	}
	encodeFlags.register(encodeCmd)
	root.AddCommand(encodeCmd)

	// --- upload command ------------------------------------------------------
	uploadCmd := &cobra.Command{
		Use:   "upload [path]",
		Short: "Upload a file and print the shareable link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return runUpload(cmd.Context(), newGenerator(cfg, log), args[0])
		},
	}
	root.AddCommand(uploadCmd)

	// --- file command --------------------------------------------------------
	var fileFlags qrFlags
	fileCmd := &cobra.Command{
		Use:   "file [path]",
		Short: "Upload a file and encode its link as a QR code PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return runFile(cmd.Context(), newGenerator(cfg, log), args[0], fileFlags.options(cfg.QR), fileFlags.output)
		},
	}
	fileFlags.register(fileCmd)
	root.AddCommand(fileCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qrforge %s\n", version)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	return log
}

// newGenerator wires the upload chain, the optional webhook and the encoder.
func newGenerator(cfg *config.Config, log *slog.Logger) *generator.Generator {
	broker := upload.NewBroker(upload.DefaultBackends(cfg.Upload.Backends(), &http.Client{}), log)

	var opts []generator.Option
	if sender := notify.NewWebhookSender(cfg.WebhookURL, cfg.WebhookTimeout.Duration, log); sender.Enabled() {
		opts = append(opts, generator.WithNotifier(sender))
		log.Info("upload webhook enabled", "url", cfg.WebhookURL)
	}
	return generator.New(broker, log, opts...)
}

// runServe is the HTTP entrypoint. It blocks until ctx is cancelled by
// SIGINT/SIGTERM.
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting qrforge", "version", version, "port", cfg.Port)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(&api.Server{
			Generator:      newGenerator(cfg, log),
			Defaults:       cfg.QR,
			MaxUploadBytes: cfg.MaxUploadBytes,
			Log:            log,
			Version:        version,
			StartTime:      time.Now(),
		}),
		ReadTimeout: 60 * time.Second,
		// A file QR can walk the whole upload chain, so the write timeout
		// has to cover every backend timeout in sequence.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("goodbye")
	return nil
}

func runEncode(gen *generator.Generator, text string, opts qr.Options, output string) error {
	png, err := gen.FromText(text, opts)
	if err != nil {
		return err
	}
	if err := qr.WriteFile(png, output); err != nil {
		return err
	}
	fmt.Printf("QR code saved to %s\n", output)
	return nil
}

func runUpload(ctx context.Context, gen *generator.Generator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	outcome := gen.Upload(ctx, data, filepath.Base(path))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return err
	}
	if !outcome.Success {
		return fmt.Errorf("%s", outcome.Message)
	}
	return nil
}

func runFile(ctx context.Context, gen *generator.Generator, path string, opts qr.Options, output string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	png, outcome, err := gen.FromFile(ctx, data, filepath.Base(path), opts)
	if err != nil {
		return err
	}
	if err := qr.WriteFile(png, output); err != nil {
		return err
	}

	fmt.Printf("Uploaded to %s: %s\n", *outcome.Service, *outcome.URL)
	fmt.Println(outcome.Message)
	fmt.Printf("QR code saved to %s\n", output)
	return nil
}

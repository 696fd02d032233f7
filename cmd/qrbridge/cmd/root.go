package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/qrbridge/internal/config"
	"github.com/MeKo-Tech/qrbridge/internal/dispatch"
	"github.com/MeKo-Tech/qrbridge/internal/native"
	"github.com/MeKo-Tech/qrbridge/internal/version"
	"github.com/MeKo-Tech/qrbridge/qrcode"
)

// app carries the state shared by one command tree.
type app struct {
	v       *viper.Viper
	loader  *config.Loader
	cfg     *config.Config
	cfgFile string
	envFile string
}

// NewRootCommand builds a fresh command tree with its own configuration.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.loader = config.NewLoaderWithViper(a.v)

	rootCmd := &cobra.Command{
		Use:   "qrbridge",
		Short: "Detect and decode QR codes in images and PDFs",
		Long: `qrbridge decodes QR codes from image files, raw pixel buffers and PDF
documents through a native detector gateway.

This tool provides:
- Detection in PNG, JPEG, GIF, BMP, TIFF and WebP images
- Scanning of images embedded in PDF documents
- Concurrent batch processing on a bounded worker pool
- An HTTP and WebSocket server with Prometheus metrics

Examples:
  qrbridge detect ticket.png
  qrbridge detect ./scans --recursive --format json
  qrbridge pdf invoice.pdf --pages 1-2
  qrbridge serve --port 8080`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return nil
			}
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/qrbridge, /etc/qrbridge)")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file to load before reading the environment (default .env)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("backend", native.BackendEngine, "native gateway backend (engine, cgo)")
	rootCmd.Flags().Bool("version", false, "print version information and exit")

	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("native.backend", pf.Lookup("backend"))

	rootCmd.AddCommand(
		newDetectCommand(a),
		newPDFCommand(a),
		newServeCommand(a),
		newConfigCommand(a),
		newBenchCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize loads .env, the configuration and sets up logging.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)

	if used := a.loader.GetConfigFileUsed(); used != "" {
		slog.Debug("Configuration loaded", "file", used)
	}
	return nil
}

func logLevel(cfg *config.Config) slog.Level {
	if cfg.Verbose {
		return slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// config returns the loaded configuration, falling back to defaults for
// commands run without the root pre-run.
func (a *app) config() *config.Config {
	if a.cfg == nil {
		cfg := config.DefaultConfig()
		a.cfg = &cfg
	}
	return a.cfg
}

// openDetector creates a detector on the configured backend. A nil pool
// selects the shared pool.
func (a *app) openDetector(pool *dispatch.Pool) (*qrcode.Detector, error) {
	cfg := a.config()
	gw, err := native.Open(cfg.Native.Backend, cfg.ToEngineConfig())
	if err != nil {
		return nil, err
	}
	opts := []qrcode.Option{qrcode.WithGateway(gw)}
	if pool != nil {
		opts = append(opts, qrcode.WithPool(pool))
	}
	det, err := qrcode.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}
	return det, nil
}

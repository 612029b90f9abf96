package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zereker/lineecho"
)

// GlobalFlags holds the flags shared by every subcommand.
type GlobalFlags struct {
	Host     string        // host to connect to or listen on
	Port     string        // port number or service name
	Timeout  time.Duration // per-operation deadline, 0 for none
	Capacity int           // receive buffer size
	Verbose  bool          // debug logging
	Quiet    bool          // no logging at all
}

var (
	globalFlags GlobalFlags
	logger      lineecho.Logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "lineecho",
	Short: "Newline-framed TCP echo server and client",
	Long: `lineecho exchanges a single newline-terminated message over TCP.

  lineecho server            # accept one peer and echo its message
  lineecho client            # send a message and print the reply
  lineecho demo              # run both on an ephemeral loopback port`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if globalFlags.Quiet {
			logger = lineecho.DiscardLogger()
			return
		}

		level := slog.LevelInfo
		if globalFlags.Verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the root command and exits non-zero on a setup failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Host, "host", os.Getenv("LINEECHO_HOST"), "host to connect to or listen on (env LINEECHO_HOST)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Port, "port", "p", envOr("LINEECHO_PORT", lineecho.DefaultService), "port or service name (env LINEECHO_PORT)")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 0, "deadline for each send and receive, 0 waits forever")
	rootCmd.PersistentFlags().IntVar(&globalFlags.Capacity, "capacity", lineecho.DefaultCapacity, "maximum message size in bytes, delimiter included")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log every read and write")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "disable logging")

	rootCmd.AddCommand(serverCmd, clientCmd, demoCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func libOptions() []lineecho.Option {
	return []lineecho.Option{
		lineecho.LoggerOption(logger),
		lineecho.TimeoutOption(globalFlags.Timeout),
		lineecho.MessageMaxSize(globalFlags.Capacity),
	}
}

// exchangeResult decides what an exchange error means for the process:
// setup failures propagate, everything else is logged and swallowed.
func exchangeResult(err error) error {
	switch {
	case err == nil:
		return nil
	case lineecho.IsFatal(err):
		return err
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted")
		return nil
	default:
		logger.Warn("exchange incomplete", "error", err)
		return nil
	}
}

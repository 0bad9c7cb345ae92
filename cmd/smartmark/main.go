package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "smartmark",
	Short:         "Personal bookmark manager with live sync and AI search",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ smartmark: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newLogger builds the process logger from the environment.
func newLogger(cfg *config.Config) logger.Logger {
	return logger.New(cfg.LogLevel, cfg.PrettyLog)
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.String() + "\n")
}

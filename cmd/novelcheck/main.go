// Command novelcheck checks research papers for novelty against an indexed
// corpus and for overlap with reference documents.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/novelcheck/internal/adapters/driving/cli"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env in the working directory may carry provider API keys.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}

package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/itemstore/internal/smoke"
	"github.com/okian/itemstore/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8000", "Base URL of the service")
		itemID  = flag.Int("id", 0, "Id for the scratch item (0 picks one above the current maximum)")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Log every response body")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	closer, err := smoke.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	_, err = smoke.Run(ctx, &smoke.Config{
		BaseURL: *baseURL,
		ItemID:  *itemID,
		Timeout: *timeout,
		Verbose: *verbose,
	}, logger.Get())
	cancel()
	_ = closer.Close()
	if err != nil {
		os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

package sampledata

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/postpulse/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the global logger writing to both stdout and a
// log file. If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sample_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWithFormat("text", io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the sample tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Postpulse Sample Tool
=====================

Generates a synthetic post export, submits it concurrently to a running
postpulse service under one upload ID, waits for processing and checks the
service's reports against a local rebuild.

Usage:
  go run ./cmd/sample-posts [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -posts int
        Number of rows in the generated export (default 5000)
  -submissions int
        Concurrent submissions of the same upload (default 8)
  -workers int
        Number of concurrent submitters (default: submissions)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Upper bound on waiting for processing (default 2m)
  -output string
        Keep the generated CSV at this path
  -log string
        Log file for run output (default: sample_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run ./cmd/sample-posts

  # Larger export against another port, keeping the CSV
  go run ./cmd/sample-posts -posts 50000 -url http://localhost:8080 -output sample.csv
`)
}

package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/postpulse/internal/sampledata"
	"github.com/okian/postpulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPosts    = flag.Int("posts", sampledata.DefaultNumPosts, "Number of rows in the generated export")
		submissions = flag.Int("submissions", sampledata.DefaultSubmissions, "Concurrent submissions of the same upload")
		workers     = flag.Int("workers", 0, "Number of concurrent submitters (default: submissions)")
		timeout     = flag.Duration("timeout", sampledata.DefaultTimeout, "HTTP request timeout")
		wait        = flag.Duration("wait", sampledata.DefaultWaitTimeout, "Upper bound on waiting for processing")
		outputFile  = flag.String("output", "", "Keep the generated CSV at this path")
		logFile     = flag.String("log", "", "Log file for run output (default: sample_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampledata.ShowHelp()
		return
	}

	closer, err := sampledata.SetupLogging(*logFile)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &sampledata.Config{
		BaseURL:     *baseURL,
		NumPosts:    *numPosts,
		Submissions: *submissions,
		Workers:     *workers,
		Timeout:     *timeout,
		WaitTimeout: *wait,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := sampledata.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "sample run failed", logger.Error(err))
		cancel()
		_ = closer.Close()
		os.Exit(1)
	}
}

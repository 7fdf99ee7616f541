package sampledata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/postpulse/internal/adapters/ingest"
	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/internal/domain/types"
	"github.com/okian/postpulse/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrUploadFailed is returned when the service marks the sample upload failed.
var ErrUploadFailed = errors.New("upload failed")

func (c *Config) normalize() {
	if c.NumPosts <= 0 {
		c.NumPosts = DefaultNumPosts
	}
	if c.Submissions <= 0 {
		c.Submissions = DefaultSubmissions
	}
	if c.Workers <= 0 {
		c.Workers = c.Submissions
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
}

// Run executes the complete sample run: generate one export, submit it
// concurrently under one upload ID, wait until it is processed and compare
// the service's reports with a local rebuild.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	config.normalize()
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	client := NewHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting postpulse sample run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("posts", config.NumPosts),
		logger.Int("submissions", config.Submissions),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the export
	records := Generate(config.NumPosts, time.Now())
	body, err := EncodeCSV(records)
	if err != nil {
		return stats, fmt.Errorf("post generation failed: %w", err)
	}
	stats.PostsGenerated = len(records) - 1

	if config.OutputFile != "" {
		if err := saveExport(config.OutputFile, body); err != nil {
			log.Warn(ctx, "failed to save export", logger.Error(err))
		} else {
			log.Info(ctx, "export saved", logger.String("filename", config.OutputFile))
		}
	}

	// Step 3: Rebuild the reports locally from the same bytes
	local, err := buildLocal(ctx, body, stats)
	if err != nil {
		return stats, fmt.Errorf("local rebuild failed: %w", err)
	}

	// Step 4: Submit concurrently; exactly one submission should be accepted
	uploadID := "sample-" + uuid.NewString()
	if err := submit(ctx, config, client, uploadID, body, stats); err != nil {
		return stats, fmt.Errorf("upload submission failed: %w", err)
	}

	// Step 5: Wait for processing
	processed := time.Now()
	status, err := waitForUpload(ctx, config, client, uploadID)
	if err != nil {
		return stats, fmt.Errorf("waiting for upload: %w", err)
	}
	stats.ProcessingTime = time.Since(processed)
	stats.FinalState = status.State
	stats.RejectedRowsByCause = status.Rejected
	if status.State == types.StateFailed {
		return stats, fmt.Errorf("%w: %s", ErrUploadFailed, status.Error)
	}
	if status.Posts != stats.PostsAccepted {
		return stats, fmt.Errorf("service accepted %d posts, local validation accepted %d", status.Posts, stats.PostsAccepted)
	}

	// Step 6: Fetch and verify reports
	var remote struct {
		UploadID string `json:"upload_id"`
		report.Set
	}
	if err := client.GetJSON(ctx, "/reports", &remote); err != nil {
		return stats, fmt.Errorf("report retrieval failed: %w", err)
	}
	if remote.UploadID != uploadID {
		return stats, fmt.Errorf("latest reports belong to %q, want %q", remote.UploadID, uploadID)
	}
	verified, err := VerifyReports(local, remote.Set)
	stats.ReportsVerified = verified
	if err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}
	if config.Verbose {
		displayTopPlatforms(ctx, remote.Set)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "sample run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 is healthy; the body is the Prometheus exposition.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func buildLocal(ctx context.Context, body []byte, stats *Stats) (report.Set, error) {
	rows, err := ingest.Decode(ctx, bytes.NewReader(body), ingest.KindCSV)
	if err != nil {
		return report.Set{}, err
	}
	posts, vstats, err := post.ValidateStats(ctx, rows, post.WithLocation(time.UTC))
	if err != nil {
		return report.Set{}, err
	}
	stats.PostsAccepted = vstats.Accepted
	return report.Build(ctx, posts, report.WithLocation(time.UTC))
}

// submit sends body config.Submissions times under the same upload ID.
func submit(ctx context.Context, config *Config, client *HTTPClient, uploadID string, body []byte, stats *Stats) error {
	var accepted, duplicate, failed atomic.Int64
	log := logger.Get()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i := 0; i < config.Submissions; i++ {
		g.Go(func() error {
			ack, code, err := client.Upload(gctx, uploadID, "sample.csv", body)
			switch {
			case err != nil:
				failed.Add(1)
				if config.Verbose {
					log.Warn(gctx, "submission failed", logger.Int("submission", i), logger.Error(err))
				}
			case code == http.StatusAccepted:
				accepted.Add(1)
			case ack.Duplicate:
				duplicate.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.UploadsSubmitted = config.Submissions
	stats.UploadsAccepted = int(accepted.Load())
	stats.UploadsDuplicate = int(duplicate.Load())
	stats.UploadsFailed = int(failed.Load())

	if stats.UploadsAccepted != 1 {
		return fmt.Errorf("expected exactly one accepted submission, got %d (duplicate %d, failed %d)",
			stats.UploadsAccepted, stats.UploadsDuplicate, stats.UploadsFailed)
	}
	return nil
}

// waitForUpload polls the upload status until it is terminal.
func waitForUpload(ctx context.Context, config *Config, client *HTTPClient, uploadID string) (UploadStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, config.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	for {
		var status UploadStatus
		if err := client.GetJSON(ctx, "/uploads/"+uploadID, &status); err != nil {
			return status, err
		}
		if status.State.Terminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

func saveExport(filename string, body []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(filename, body, filePermission)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var postsPerSecond float64
	if stats.ProcessingTime > 0 {
		postsPerSecond = float64(stats.PostsGenerated) / stats.ProcessingTime.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("postsGenerated", stats.PostsGenerated),
		logger.Int("postsAccepted", stats.PostsAccepted),
		logger.Int("uploadsSubmitted", stats.UploadsSubmitted),
		logger.Int("uploadsAccepted", stats.UploadsAccepted),
		logger.Int("uploadsDuplicate", stats.UploadsDuplicate),
		logger.Int("uploadsFailed", stats.UploadsFailed),
		logger.Int("reportsVerified", stats.ReportsVerified),
		logger.Any("rejected", stats.RejectedRowsByCause),
		logger.Duration("processing", stats.ProcessingTime),
		logger.Duration("duration", stats.Duration),
		logger.Float64("postsPerSecond", postsPerSecond))
}

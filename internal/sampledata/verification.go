package sampledata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/pkg/logger"
)

// locationIndependent are the reports whose content does not depend on the
// server's configured timezone, so a local rebuild must match them exactly.
var locationIndependent = []string{
	report.NamePlatform,
	report.NameTimeBased,
	report.NameFormat,
	report.NameTags,
	report.NameCreators,
	report.NameComments,
}

// VerifyReports compares the service's reports with a local rebuild and
// returns the number of matching reports.
func VerifyReports(local, remote report.Set) (int, error) {
	var mismatched []string
	for _, name := range locationIndependent {
		same, err := sameReport(local, remote, name)
		if err != nil {
			return 0, err
		}
		if !same {
			mismatched = append(mismatched, name)
		}
	}
	if len(mismatched) > 0 {
		return len(locationIndependent) - len(mismatched),
			fmt.Errorf("reports differ from local rebuild: %s", strings.Join(mismatched, ", "))
	}
	return len(locationIndependent), nil
}

func sameReport(a, b report.Set, name string) (bool, error) {
	av, err := a.Get(name)
	if err != nil {
		return false, err
	}
	bv, err := b.Get(name)
	if err != nil {
		return false, err
	}
	aj, err := json.Marshal(av)
	if err != nil {
		return false, err
	}
	bj, err := json.Marshal(bv)
	if err != nil {
		return false, err
	}
	return bytes.Equal(aj, bj), nil
}

// displayTopPlatforms logs the platform ranking the service returned.
func displayTopPlatforms(ctx context.Context, set report.Set) {
	log := logger.Get()
	for i, p := range set.Platform {
		log.Info(ctx, "platform ranking",
			logger.Int("rank", i+1),
			logger.String("platform", p.Platform),
			logger.Float64("engagement", p.EngagementScore),
			logger.Int("posts", p.TotalPosts),
		)
	}
}

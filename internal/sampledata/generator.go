package sampledata

import (
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/postpulse/internal/domain/post"
)

var (
	platforms = []string{"Instagram", "TikTok", "X", "Twitter", "Facebook", "LinkedIn", "YouTube"}
	creators  = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi"}
	families  = []string{
		"Spring Launch", "Behind The Scenes", "Customer Stories", "Weekly Tips",
		"Product Demo", "Team Spotlight", "Holiday Promo",
	}
	tagPool = []string{
		"launch", "how to", "promo", "community", "tips", "video", "user  generated", "events",
	}
	contents = []string{
		"Read more at https://example.com/blog",
		"New clip.mp4",
		"Photo dump.jpg",
		"Quick thought for the week",
		"",
	}
	services = []string{"native", "buffer", "hootsuite", "later"}
	unposted = []string{"draft", "scheduled", "failed"}
)

// Columns is the header of every generated export.
var Columns = append(append([]string{}, post.RequiredColumns...),
	post.ColFamilyTags,
	post.ColContent,
	post.ColScheduleWeeksAhead,
	post.ColExtPostService,
	post.ColOwnerEmail,
	post.ColFirstComment,
)

// reach tiers: viral, strong, average and low.
var reachTiers = []struct{ min, spread float64 }{
	{50_000, 150_000},
	{5_000, 15_000},
	{500, 4_500},
	{10, 490},
}

// randomFloat returns a value in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(maxRandom))
	return float64(n.Int64()) / float64(maxRandom)
}

// randomIntn returns a value in [0, n).
func randomIntn(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(values []string) string {
	return values[randomIntn(len(values))]
}

// ownerEmails gives every creator a stable synthetic address.
func ownerEmails() map[string]string {
	m := make(map[string]string, len(creators))
	for _, c := range creators {
		m[c] = c + "+" + uuid.NewString()[:8] + "@example.com"
	}
	return m
}

// Generate returns n synthetic export records, header first. Rows are
// spread over the 30 days before now.
func Generate(n int, now time.Time) [][]string {
	emails := ownerEmails()
	records := make([][]string, 0, n+1)
	records = append(records, Columns)
	for i := 0; i < n; i++ {
		records = append(records, generateRow(now, emails))
	}
	return records
}

func generateRow(now time.Time, emails map[string]string) []string {
	created := now.Add(-time.Duration(randomIntn(minutesPerMonth)) * time.Minute).UTC()

	status := post.StatusPosted
	if randomIntn(percentageMultiplier) < unpostedPercent {
		status = pick(unposted)
	}

	tier := reachTiers[randomIntn(len(reachTiers))]
	views := tier.min + randomFloat()*tier.spread
	comments := views * (0.001 + randomFloat()*0.029)
	reactions := views * (0.01 + randomFloat()*0.09)

	creator := pick(creators)

	firstComment := ""
	if randomIntn(10) >= 3 {
		delay := time.Duration(1+randomIntn(maxFirstCommentDelay)) * time.Minute
		firstComment = created.Add(delay).Format(time.RFC3339)
	}

	weeks := ""
	if randomIntn(2) == 0 {
		weeks = strconv.Itoa(randomIntn(maxScheduleWeeks))
	}

	return []string{
		pick(platforms),
		created.Format(time.RFC3339),
		status,
		strconv.Itoa(int(views)),
		strconv.Itoa(int(comments)),
		strconv.Itoa(int(reactions)),
		pick(families),
		creator,
		familyTags(),
		pick(contents),
		weeks,
		pick(services),
		emails[creator],
		firstComment,
	}
}

// familyTags renders up to three tags the way exports carry them.
func familyTags() string {
	type tag struct {
		Name string `json:"name"`
	}
	n := randomIntn(4)
	tags := make([]tag, 0, n)
	seen := make(map[string]bool, n)
	for len(tags) < n {
		name := pick(tagPool)
		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, tag{Name: name})
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

// WriteCSV encodes records as CSV.
func WriteCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// EncodeCSV returns records as CSV bytes.
func EncodeCSV(records [][]string) ([]byte, error) {
	var b strings.Builder
	if err := WriteCSV(&b, records); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

package report

import (
	"math"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

// CommentBucket summarises posts whose comment count falls in one range.
type CommentBucket struct {
	Label         string  `json:"label"`
	AvgEngagement float64 `json:"avgEngagement"`
	PostCount     int     `json:"postCount"`
	Percentage    float64 `json:"percentage"` // 0..100 of all posts
	UniqueTitles  int     `json:"uniqueTitles"`
}

var commentRanges = []struct {
	label string
	max   float64
}{
	{"No Comments", 0},
	{"1-5 Comments", 5},
	{"6-10 Comments", 10},
	{"11-20 Comments", 20},
	{"21+ Comments", math.Inf(1)},
}

// Comments partitions posts into five comment-count ranges. A count lands in
// the first range whose upper bound it does not exceed, so fractional counts
// round up and every post is counted exactly once.
func Comments(posts []post.Post) []CommentBucket {
	counts := make([]int, len(commentRanges))
	totals := make([]float64, len(commentRanges))
	titles := make([]*stringSet, len(commentRanges))
	for i := range titles {
		titles[i] = newStringSet()
	}

	for _, p := range posts {
		i := commentRange(p.Comments)
		counts[i]++
		totals[i] += scoring.PostEngagement(p)
		if p.Title != "" {
			titles[i].add(p.Title)
		}
	}

	out := make([]CommentBucket, len(commentRanges))
	for i, r := range commentRanges {
		var pct float64
		if len(posts) > 0 {
			pct = float64(counts[i]) / float64(len(posts)) * 100
		}
		out[i] = CommentBucket{
			Label:         r.label,
			AvgEngagement: mean(totals[i], counts[i]),
			PostCount:     counts[i],
			Percentage:    pct,
			UniqueTitles:  titles[i].len(),
		}
	}
	return out
}

func commentRange(c float64) int {
	for i, r := range commentRanges {
		if c <= r.max {
			return i
		}
	}
	return len(commentRanges) - 1
}

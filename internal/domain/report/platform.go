package report

import (
	"sort"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

// PlatformStat is the mean engagement of one platform.
type PlatformStat struct {
	Platform        string  `json:"platform"`
	EngagementScore float64 `json:"engagementScore"`
	TotalPosts      int     `json:"totalPosts"`
}

// meanAcc accumulates a count and a score total.
type meanAcc struct {
	posts int
	total float64
}

// Platforms groups posts by normalized platform, best mean engagement first.
func Platforms(posts []post.Post) []PlatformStat {
	accs := make(map[string]*meanAcc)
	var order []string
	for _, p := range posts {
		key := post.NormalizePlatform(p.Platform)
		acc, ok := accs[key]
		if !ok {
			acc = &meanAcc{}
			accs[key] = acc
			order = append(order, key)
		}
		acc.posts++
		acc.total += scoring.PostEngagement(p)
	}

	out := make([]PlatformStat, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		out = append(out, PlatformStat{
			Platform:        key,
			EngagementScore: mean(acc.total, acc.posts),
			TotalPosts:      acc.posts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EngagementScore > out[j].EngagementScore
	})
	return out
}

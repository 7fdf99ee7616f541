package report

import (
	"sort"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

const topTags = 10

// TagStat is the mean engagement of posts carrying one tag.
type TagStat struct {
	Tag             string  `json:"tag"`
	EngagementScore float64 `json:"engagementScore"`
	TotalPosts      int     `json:"totalPosts"`
}

// Tags ranks parsed tag names by mean engagement and keeps the top ten.
// A post with N tags contributes its full score to each of the N groups.
func Tags(posts []post.Post) []TagStat {
	accs := make(map[string]*meanAcc)
	var order []string
	for _, p := range posts {
		score := scoring.PostEngagement(p)
		for _, tag := range p.Tags {
			acc, ok := accs[tag]
			if !ok {
				acc = &meanAcc{}
				accs[tag] = acc
				order = append(order, tag)
			}
			acc.posts++
			acc.total += score
		}
	}

	out := make([]TagStat, 0, len(order))
	for _, tag := range order {
		acc := accs[tag]
		out = append(out, TagStat{Tag: tag, EngagementScore: mean(acc.total, acc.posts), TotalPosts: acc.posts})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EngagementScore > out[j].EngagementScore
	})
	if len(out) > topTags {
		out = out[:topTags]
	}
	return out
}

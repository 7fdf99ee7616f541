package report

import (
	"sort"
	"strings"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

const topCreators = 10

// CreatorStat summarises one author's posts.
type CreatorStat struct {
	Creator         string  `json:"creator"`
	EngagementScore float64 `json:"engagementScore"`
	TotalPosts      int     `json:"totalPosts"`
	NumPlatforms    int     `json:"numPlatforms"`
	NumTags         int     `json:"numTags"`
	NumTitles       int     `json:"numTitles"`
	Platforms       string  `json:"platforms"` // first-seen order, ", " separated
}

type creatorAcc struct {
	posts int
	total float64

	platforms, tags, titles *stringSet
}

// Creators ranks authors by mean engagement and keeps the top ten.
// Posts without any author are skipped entirely.
func Creators(posts []post.Post) []CreatorStat {
	accs := make(map[string]*creatorAcc)
	var order []string
	for _, p := range posts {
		key := p.Creator()
		if key == "" {
			continue
		}
		acc, ok := accs[key]
		if !ok {
			acc = &creatorAcc{platforms: newStringSet(), tags: newStringSet(), titles: newStringSet()}
			accs[key] = acc
			order = append(order, key)
		}
		acc.posts++
		acc.total += scoring.PostEngagement(p)
		acc.platforms.add(post.NormalizePlatform(p.Platform))
		if title := p.DisplayTitle(); title != "" {
			acc.titles.add(title)
		}
		for _, tag := range p.Tags {
			acc.tags.add(tag)
		}
	}

	out := make([]CreatorStat, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		if acc.posts == 0 {
			continue
		}
		out = append(out, CreatorStat{
			Creator:         key,
			EngagementScore: mean(acc.total, acc.posts),
			TotalPosts:      acc.posts,
			NumPlatforms:    acc.platforms.len(),
			NumTags:         acc.tags.len(),
			NumTitles:       acc.titles.len(),
			Platforms:       strings.Join(acc.platforms.order, ", "),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EngagementScore > out[j].EngagementScore
	})
	if len(out) > topCreators {
		out = out[:topCreators]
	}
	return out
}

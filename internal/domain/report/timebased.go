package report

import (
	"sort"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

// DailyTrend summarises the posts of one UTC calendar day.
type DailyTrend struct {
	Date                string  `json:"date"`  // YYYY-MM-DD
	Label               string  `json:"label"` // Jan 2, 2006
	AvgComments         float64 `json:"avgComments"`
	AvgViews            float64 `json:"avgViews"`
	AvgReactions        float64 `json:"avgReactions"`
	NumPlatforms        int     `json:"numPlatforms"`
	NumCreators         int     `json:"numCreators"`
	AvgScheduleWeeks    float64 `json:"avgScheduleWeeks"`
	AvgFirstCommentTime float64 `json:"avgFirstCommentTime"` // minutes
	TotalPosts          int     `json:"totalPosts"`
}

type dailyAcc struct {
	posts, scheduled, commented int

	comments, views, reactions float64
	scheduleWeeks, latency     float64

	platforms, creators *stringSet
}

// TimeBased groups posts by the date portion of their ISO timestamp,
// oldest day first.
//
// First-comment latency only counts strictly positive deltas; earlier or
// missing first comments are left out of the mean rather than clamped.
// Schedule weeks average every post that carries a value, so an explicit 0
// pulls the mean down; only posts without the column are skipped.
func TimeBased(posts []post.Post) []DailyTrend {
	accs := make(map[string]*dailyAcc)
	var order []string
	for _, p := range posts {
		key := p.CreatedAtISO()[:len("2006-01-02")]
		acc, ok := accs[key]
		if !ok {
			acc = &dailyAcc{platforms: newStringSet(), creators: newStringSet()}
			accs[key] = acc
			order = append(order, key)
		}
		acc.posts++
		acc.comments += p.Comments
		acc.views += p.Views
		acc.reactions += p.Reactions
		acc.platforms.add(post.NormalizePlatform(p.Platform))
		if p.OwnerEmail != "" {
			acc.creators.add(p.OwnerEmail)
		}
		if p.ScheduleWeeksAhead != nil {
			acc.scheduled++
			acc.scheduleWeeks += *p.ScheduleWeeksAhead
		}
		if p.FirstComment != nil {
			if d := p.FirstComment.Sub(p.CreatedAt); d > 0 {
				acc.commented++
				acc.latency += d.Minutes()
			}
		}
	}

	out := make([]DailyTrend, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		label, _ := scoring.FormatDate(key, nil)
		out = append(out, DailyTrend{
			Date:                key,
			Label:               label,
			AvgComments:         mean(acc.comments, acc.posts),
			AvgViews:            mean(acc.views, acc.posts),
			AvgReactions:        mean(acc.reactions, acc.posts),
			NumPlatforms:        acc.platforms.len(),
			NumCreators:         acc.creators.len(),
			AvgScheduleWeeks:    mean(acc.scheduleWeeks, acc.scheduled),
			AvgFirstCommentTime: mean(acc.latency, acc.commented),
			TotalPosts:          acc.posts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

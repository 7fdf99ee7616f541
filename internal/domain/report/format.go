package report

import (
	"sort"
	"strings"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

// Format is the coarse content type of a post.
type Format string

// Known formats.
const (
	FormatLink  Format = "Link"
	FormatMedia Format = "Media"
	FormatText  Format = "Text"
)

// Classifier maps post content to a Format.
type Classifier func(content string) Format

// ClassifyBySubstring is the default case-sensitive heuristic: "http" means
// Link, otherwise "img" or "video" means Media, otherwise Text.
func ClassifyBySubstring(content string) Format {
	switch {
	case strings.Contains(content, "http"):
		return FormatLink
	case strings.Contains(content, "img"), strings.Contains(content, "video"):
		return FormatMedia
	default:
		return FormatText
	}
}

const topFormatTags = 5

// FormatTag is one entry of a format's tag ranking.
type FormatTag struct {
	Tag             string  `json:"tag"`
	EngagementScore float64 `json:"engagementScore"`
	Count           int     `json:"count"`
}

// FormatStat summarises the posts of one Format.
type FormatStat struct {
	Format           Format      `json:"format"`
	EngagementScore  float64     `json:"engagementScore"`
	AvgScheduleWeeks float64     `json:"avgScheduleWeeks"`
	NumServices      int         `json:"numServices"`
	NumCreators      int         `json:"numCreators"`
	NumTitles        int         `json:"numTitles"`
	TopTags          []FormatTag `json:"topTags"`
	TotalPosts       int         `json:"totalPosts"`
}

type formatAcc struct {
	posts         int
	total         float64
	scheduleWeeks float64

	services, creators, titles *stringSet

	tags     map[string]*meanAcc
	tagOrder []string
}

// Formats groups posts by classified format in first-seen order.
//
// Tags here come from comma-splitting the raw family_tags text, not from the
// parsed tag names, so the two tag views can disagree. The schedule mean is
// the sum of supplied values over all posts of the format.
func Formats(posts []post.Post, classify Classifier) []FormatStat {
	if classify == nil {
		classify = ClassifyBySubstring
	}
	accs := make(map[Format]*formatAcc)
	var order []Format
	for _, p := range posts {
		key := classify(p.Content)
		acc, ok := accs[key]
		if !ok {
			acc = &formatAcc{
				services: newStringSet(),
				creators: newStringSet(),
				titles:   newStringSet(),
				tags:     make(map[string]*meanAcc),
			}
			accs[key] = acc
			order = append(order, key)
		}
		score := scoring.DefaultWeights.Score(p.Views, p.Comments, p.Reactions)
		acc.posts++
		acc.total += score
		if p.ScheduleWeeksAhead != nil {
			acc.scheduleWeeks += *p.ScheduleWeeksAhead
		}
		if p.ExtPostService != "" {
			acc.services.add(p.ExtPostService)
		}
		if p.OwnerEmail != "" {
			acc.creators.add(p.OwnerEmail)
		}
		if p.Title != "" {
			acc.titles.add(p.Title)
		}
		for _, tag := range splitFamilyTags(p.FamilyTags) {
			t, ok := acc.tags[tag]
			if !ok {
				t = &meanAcc{}
				acc.tags[tag] = t
				acc.tagOrder = append(acc.tagOrder, tag)
			}
			t.posts++
			t.total += score
		}
	}

	out := make([]FormatStat, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		out = append(out, FormatStat{
			Format:           key,
			EngagementScore:  mean(acc.total, acc.posts),
			AvgScheduleWeeks: mean(acc.scheduleWeeks, acc.posts),
			NumServices:      acc.services.len(),
			NumCreators:      acc.creators.len(),
			NumTitles:        acc.titles.len(),
			TopTags:          acc.topTags(),
			TotalPosts:       acc.posts,
		})
	}
	return out
}

func (a *formatAcc) topTags() []FormatTag {
	tags := make([]FormatTag, 0, len(a.tagOrder))
	for _, tag := range a.tagOrder {
		t := a.tags[tag]
		tags = append(tags, FormatTag{Tag: tag, EngagementScore: mean(t.total, t.posts), Count: t.posts})
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].EngagementScore > tags[j].EngagementScore
	})
	if len(tags) > topFormatTags {
		tags = tags[:topFormatTags]
	}
	return tags
}

func splitFamilyTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

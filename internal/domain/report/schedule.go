package report

import (
	"time"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
)

// ScheduleGrid is mean engagement by weekday (Sunday first) and hour.
// A nil cell had no posts, which is distinct from a mean of 0.
type ScheduleGrid struct {
	Days  []string     `json:"days"`
	Hours []int        `json:"hours"`
	Data  [][]*float64 `json:"data"`
}

// Value returns the cell for day and hour and whether it had posts.
func (g ScheduleGrid) Value(day time.Weekday, hour int) (float64, bool) {
	if day < 0 || int(day) >= len(g.Data) || hour < 0 || hour >= len(g.Data[day]) {
		return 0, false
	}
	if v := g.Data[day][hour]; v != nil {
		return *v, true
	}
	return 0, false
}

// Schedule buckets posts by weekday and hour of their creation time in loc.
func Schedule(posts []post.Post, loc *time.Location) ScheduleGrid {
	if loc == nil {
		loc = time.Local
	}
	var counts [7][24]int
	var totals [7][24]float64
	for _, p := range posts {
		t := p.CreatedAt.In(loc)
		d, h := t.Weekday(), t.Hour()
		counts[d][h]++
		totals[d][h] += scoring.PostEngagement(p)
	}

	grid := ScheduleGrid{
		Days:  make([]string, 7),
		Hours: make([]int, 24),
		Data:  make([][]*float64, 7),
	}
	for h := range grid.Hours {
		grid.Hours[h] = h
	}
	for d := range grid.Data {
		grid.Days[d] = time.Weekday(d).String()
		grid.Data[d] = make([]*float64, 24)
		for h := 0; h < 24; h++ {
			if counts[d][h] > 0 {
				v := totals[d][h] / float64(counts[d][h])
				grid.Data[d][h] = &v
			}
		}
	}
	return grid
}

package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/report"
)

var titleCaser = cases.Title(language.English)

// heading turns a report name such as "timeBased" into "Time Based".
func heading(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return titleCaser.String(b.String())
}

// reportRows flattens one report into a header and rows. Cells hold
// strings, ints, float64s or nil for an empty schedule slot, so the same
// rows feed both the terminal tables and the XLSX export.
func reportRows(set report.Set, name string) ([]string, [][]any, error) {
	switch name {
	case report.NamePlatform:
		rows := make([][]any, 0, len(set.Platform))
		for _, s := range set.Platform {
			rows = append(rows, []any{s.Platform, s.EngagementScore, s.TotalPosts})
		}
		return []string{"Platform", "Engagement", "Posts"}, rows, nil

	case report.NameTimeBased:
		rows := make([][]any, 0, len(set.TimeBased))
		for _, d := range set.TimeBased {
			rows = append(rows, []any{
				d.Date, d.Label, d.AvgViews, d.AvgComments, d.AvgReactions,
				d.NumPlatforms, d.NumCreators, d.AvgScheduleWeeks, d.AvgFirstCommentTime, d.TotalPosts,
			})
		}
		return []string{
			"Date", "Label", "Avg Views", "Avg Comments", "Avg Reactions",
			"Platforms", "Creators", "Avg Schedule Weeks", "Avg First Comment (min)", "Posts",
		}, rows, nil

	case report.NameFormat:
		rows := make([][]any, 0, len(set.Format))
		for _, s := range set.Format {
			tags := make([]string, len(s.TopTags))
			for i, t := range s.TopTags {
				tags[i] = t.Tag + " (" + strconv.Itoa(t.Count) + ")"
			}
			rows = append(rows, []any{
				string(s.Format), s.EngagementScore, s.TotalPosts, s.NumServices,
				s.NumCreators, s.NumTitles, s.AvgScheduleWeeks, strings.Join(tags, ", "),
			})
		}
		return []string{
			"Format", "Engagement", "Posts", "Services",
			"Creators", "Titles", "Avg Schedule Weeks", "Top Tags",
		}, rows, nil

	case report.NameTags:
		rows := make([][]any, 0, len(set.Tags))
		for _, s := range set.Tags {
			rows = append(rows, []any{s.Tag, s.EngagementScore, s.TotalPosts})
		}
		return []string{"Tag", "Engagement", "Posts"}, rows, nil

	case report.NameCreators:
		rows := make([][]any, 0, len(set.Creators))
		for _, s := range set.Creators {
			rows = append(rows, []any{
				s.Creator, s.EngagementScore, s.TotalPosts, s.NumPlatforms, s.NumTags, s.NumTitles, s.Platforms,
			})
		}
		return []string{"Creator", "Engagement", "Posts", "Platforms", "Tags", "Titles", "Platform List"}, rows, nil

	case report.NameSchedule:
		header := make([]string, 0, len(set.Schedule.Hours)+1)
		header = append(header, "Day")
		for _, h := range set.Schedule.Hours {
			header = append(header, fmt.Sprintf("%02d", h))
		}
		rows := make([][]any, 0, len(set.Schedule.Days))
		for i, day := range set.Schedule.Days {
			row := make([]any, 0, len(header))
			row = append(row, day)
			if i < len(set.Schedule.Data) {
				for _, v := range set.Schedule.Data[i] {
					if v == nil {
						row = append(row, nil)
						continue
					}
					row = append(row, *v)
				}
			}
			rows = append(rows, row)
		}
		return header, rows, nil

	case report.NameComments:
		rows := make([][]any, 0, len(set.Comments))
		for _, b := range set.Comments {
			rows = append(rows, []any{b.Label, b.AvgEngagement, b.PostCount, b.Percentage, b.UniqueTitles})
		}
		return []string{"Comments", "Avg Engagement", "Posts", "Share %", "Titles"}, rows, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", report.ErrUnknownReport, name)
}

func cellText(v any) any {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	}
	return v
}

// renderReport writes one report as a table.
func renderReport(w io.Writer, set report.Set, name string) error {
	header, rows, err := reportRows(set, name)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(heading(name))

	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	t.AppendHeader(hr)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = cellText(v)
		}
		t.AppendRow(r)
	}
	t.Render()
	return nil
}

// renderStats summarizes what validation kept and dropped.
func renderStats(w io.Writer, stats post.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Upload")
	t.AppendHeader(table.Row{"Rows", "Posts", "Bad Tag Rows"})
	t.AppendRow(table.Row{stats.Rows, stats.Accepted, stats.BadTagRows})

	reasons := make([]string, 0, len(stats.Rejected))
	for reason := range stats.Rejected {
		reasons = append(reasons, reason)
	}
	if len(reasons) > 0 {
		slices.Sort(reasons)
		parts := make([]string, len(reasons))
		for i, reason := range reasons {
			parts[i] = reason + "=" + strconv.Itoa(stats.Rejected[reason])
		}
		t.AppendFooter(table.Row{"Rejected", strings.Join(parts, " "), ""})
	}
	t.Render()
}

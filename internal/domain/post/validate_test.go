package post_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func row(platform string, created any, views, comments, reactions any) post.RawRow {
	return post.RawRow{
		"platform":        platform,
		"post_created_at": created,
		"status":          "posted",
		"n_views":         views,
		"n_comments":      comments,
		"n_reactions":     reactions,
		"family_name":     "Launch",
		"profile_name":    "acme",
	}
}

func TestValidateSchema(t *testing.T) {
	Convey("Given the schema checks", t, func() {
		ctx := context.Background()

		Convey("When no rows are supplied", func() {
			posts, err := post.Validate(ctx, nil)

			Convey("Then it should fail with a schema error for no data", func() {
				So(posts, ShouldBeNil)
				var se *post.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldBeEmpty)
				So(errors.Is(err, post.ErrNoData), ShouldBeTrue)
			})
		})

		Convey("When the first row lacks n_views", func() {
			r := row("X", "2024-01-01T10:00:00Z", 1.0, 1.0, 1.0)
			delete(r, "n_views")
			_, err := post.Validate(ctx, []post.RawRow{r})

			Convey("Then the error should list exactly that column", func() {
				var se *post.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldResemble, []string{"n_views"})
				So(errors.Is(err, post.ErrMissingFields), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "missing required fields: n_views")
			})
		})

		Convey("When several columns are missing", func() {
			_, err := post.Validate(ctx, []post.RawRow{{"status": "posted", "n_views": 1.0}})

			Convey("Then they should be listed in declaration order", func() {
				var se *post.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldResemble, []string{
					"platform", "post_created_at", "n_comments", "n_reactions", "family_name", "profile_name",
				})
			})
		})

		Convey("When only a later row is missing columns", func() {
			later := post.RawRow{"platform": "x", "post_created_at": "2024-01-02", "status": "posted", "n_views": 3.0}
			posts, err := post.Validate(ctx, []post.RawRow{row("x", "2024-01-01", 1.0, 0.0, 0.0), later})

			Convey("Then only the first row is checked", func() {
				So(err, ShouldBeNil)
				So(len(posts), ShouldEqual, 2)
				So(posts[1].Title, ShouldEqual, "")
			})
		})
	})
}

func TestValidateRows(t *testing.T) {
	Convey("Given a mixed batch of rows", t, func() {
		ctx := context.Background()

		draft := row("facebook", "2024-01-03T00:00:00Z", 1.0, 1.0, 1.0)
		draft["status"] = "draft"
		noPlatform := row("", "2024-01-03T00:00:00Z", 1.0, 1.0, 1.0)
		badDate := row("facebook", "not a date", 1.0, 1.0, 1.0)
		noCounts := row("facebook", "2024-01-03T00:00:00Z", nil, nil, nil)

		rows := []post.RawRow{
			row("Twitter", "2024-01-02T14:00:00Z", 50.0, 2.0, 1.0),
			draft,
			nil,
			row(" X ", "2024-01-01T10:00:00Z", 100.0, 10.0, 5.0),
			noPlatform,
			badDate,
			noCounts,
			row("LinkedIn", "2024-01-01T08:00:00Z", "abc", -4.0, true),
		}

		posts, stats, err := post.ValidateStats(ctx, rows)

		Convey("Then only rows passing the predicate should be kept", func() {
			So(err, ShouldBeNil)
			So(len(posts), ShouldEqual, 3)
			So(stats.Rows, ShouldEqual, 8)
			So(stats.Accepted, ShouldEqual, 3)
			So(stats.Rejected, ShouldResemble, map[string]int{
				post.RejectNotPosted:       1,
				post.RejectMissingRow:      1,
				post.RejectMissingPlatform: 1,
				post.RejectInvalidDate:     1,
				post.RejectNoCounts:        1,
			})
		})

		Convey("Then the output should be sorted by creation time", func() {
			So(sort.SliceIsSorted(posts, func(i, j int) bool {
				return posts[i].CreatedAt.Before(posts[j].CreatedAt)
			}), ShouldBeTrue)
			So(posts[0].Platform, ShouldEqual, "linkedin")
			So(posts[1].Platform, ShouldEqual, "twitter")
			So(posts[2].Platform, ShouldEqual, "twitter")
		})

		Convey("Then every post should carry the posted status", func() {
			for _, p := range posts {
				So(p.Status, ShouldEqual, "posted")
			}
		})

		Convey("Then counts should be coerced and kept non-negative", func() {
			So(posts[0].Views, ShouldEqual, 0.0)
			So(posts[0].Comments, ShouldEqual, 0.0)
			So(posts[0].Reactions, ShouldEqual, 1.0)
			So(posts[1].Views, ShouldEqual, 100.0)
		})

		Convey("Then source names should be projected", func() {
			So(posts[1].Title, ShouldEqual, "Launch")
			So(posts[1].Author, ShouldEqual, "acme")
			So(posts[1].CreatedAtISO(), ShouldEqual, "2024-01-01T10:00:00.000Z")
		})
	})
}

func TestValidateZeroCountsArePresent(t *testing.T) {
	Convey("Given a row whose only count is zero", t, func() {
		posts, err := post.Validate(context.Background(), []post.RawRow{
			row("x", "2024-01-01", 0.0, nil, nil),
		})

		Convey("Then it should be included", func() {
			So(err, ShouldBeNil)
			So(len(posts), ShouldEqual, 1)
		})
	})
}

func TestValidateTags(t *testing.T) {
	Convey("Given rows with tag JSON", t, func() {
		var buf bytes.Buffer
		So(logger.InitWithFormat("json", &buf), ShouldBeNil)

		good := row("x", "2024-01-01", 1.0, 1.0, 1.0)
		good["family_tags"] = `[{"name":"Product  Launch"},{"name":"Q1"},{"id":3}]`
		bad := row("x", "2024-01-02", 1.0, 1.0, 1.0)
		bad["family_tags"] = `[{"name":`
		none := row("x", "2024-01-03", 1.0, 1.0, 1.0)

		posts, stats, err := post.ValidateStats(context.Background(),
			[]post.RawRow{good, bad, none}, post.WithLogger(logger.Get()))

		Convey("Then whitespace runs should become hyphens", func() {
			So(err, ShouldBeNil)
			So(posts[0].Tags, ShouldResemble, []string{"Product-Launch", "Q1"})
			So(posts[0].FamilyTags, ShouldEqual, `[{"name":"Product  Launch"},{"name":"Q1"},{"id":3}]`)
		})

		Convey("Then malformed JSON should yield empty tags and a warning", func() {
			So(len(posts), ShouldEqual, 3)
			So(posts[1].Tags, ShouldBeEmpty)
			So(stats.BadTagRows, ShouldEqual, 1)
			So(buf.String(), ShouldContainSubstring, "error parsing tags")
		})

		Convey("Then a missing column should yield empty tags silently", func() {
			So(posts[2].Tags, ShouldNotBeNil)
			So(posts[2].Tags, ShouldBeEmpty)
		})
	})
}

func TestValidateTagsUnicodeSpaces(t *testing.T) {
	Convey("Given tag names separated by non-breaking and ideographic spaces", t, func() {
		r := row("x", "2024-01-01", 1.0, 1.0, 1.0)
		r["family_tags"] = "[{\"name\":\"Product\u00a0Launch\"},{\"name\":\"Q1 \u3000 Plan\"}]"

		posts, err := post.Validate(context.Background(), []post.RawRow{r})

		Convey("Then each run should collapse to one hyphen", func() {
			So(err, ShouldBeNil)
			So(posts[0].Tags, ShouldResemble, []string{"Product-Launch", "Q1-Plan"})
		})
	})
}

func TestValidateTimestamps(t *testing.T) {
	Convey("Given timestamps in several shapes", t, func() {
		loc := time.FixedZone("UTC+2", 2*60*60)
		rows := []post.RawRow{
			row("x", "2024-01-05T12:00:00+02:00", 1.0, 0.0, 0.0),
			row("x", "2024-01-05 12:00:00", 1.0, 0.0, 0.0),
			row("x", "2024-01-05", 1.0, 0.0, 0.0),
			row("x", float64(1704456000000), 1.0, 0.0, 0.0),
		}
		posts, err := post.Validate(context.Background(), rows, post.WithLocation(loc))

		Convey("Then each should resolve to a UTC instant", func() {
			So(err, ShouldBeNil)
			So(len(posts), ShouldEqual, 4)
			isos := make([]string, 0, len(posts))
			for _, p := range posts {
				isos = append(isos, p.CreatedAtISO())
			}
			So(isos, ShouldResemble, []string{
				"2024-01-05T00:00:00.000Z",
				"2024-01-05T10:00:00.000Z",
				"2024-01-05T10:00:00.000Z",
				"2024-01-05T12:00:00.000Z",
			})
		})
	})
}

func TestValidateOptionalFields(t *testing.T) {
	Convey("Given a row with the optional columns", t, func() {
		r := row("x", "2024-01-01T10:00:00Z", 1.0, 1.0, 1.0)
		r["schedule_weeks_ahead"] = "2"
		r["ext_post_service"] = "buffer"
		r["owner_email"] = "owner@example.com"
		r["first_comment"] = "2024-01-01T10:30:00Z"
		r["content"] = "see http://example.com"
		r["author"] = "alt"
		r["title"] = "Alt title"

		posts, err := post.Validate(context.Background(), []post.RawRow{r})

		Convey("Then they should pass through", func() {
			So(err, ShouldBeNil)
			p := posts[0]
			So(*p.ScheduleWeeksAhead, ShouldEqual, 2.0)
			So(p.ExtPostService, ShouldEqual, "buffer")
			So(p.OwnerEmail, ShouldEqual, "owner@example.com")
			So(p.FirstComment.Sub(p.CreatedAt), ShouldEqual, 30*time.Minute)
			So(p.Content, ShouldEqual, "see http://example.com")
			So(p.RawAuthor, ShouldEqual, "alt")
			So(p.RawTitle, ShouldEqual, "Alt title")
		})

		Convey("Then the JSON form should use camelCase names", func() {
			b, err := json.Marshal(posts[0])
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(b, &m), ShouldBeNil)
			So(m["postCreatedAt"], ShouldEqual, "2024-01-01T10:00:00.000Z")
			So(m["nViews"], ShouldEqual, 1.0)
			So(m["firstComment"], ShouldEqual, "2024-01-01T10:30:00.000Z")
		})
	})

	Convey("Given a row without the optional columns", t, func() {
		posts, err := post.Validate(context.Background(), []post.RawRow{row("x", "2024-01-01", 1.0, 1.0, 1.0)})

		Convey("Then the optional pointers should be nil", func() {
			So(err, ShouldBeNil)
			So(posts[0].ScheduleWeeksAhead, ShouldBeNil)
			So(posts[0].FirstComment, ShouldBeNil)
			So(posts[0].Content, ShouldEqual, "")
		})
	})
}

func TestValidateCancelled(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := post.Validate(ctx, []post.RawRow{row("x", "2024-01-01", 1.0, 1.0, 1.0)})

		Convey("Then validation should stop", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/postpulse/internal/adapters/ingest"
	"github.com/okian/postpulse/internal/domain/post"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCSV = "\xEF\xBB\xBF platform ,post_created_at,status,n_views,n_comments,n_reactions,family_name,profile_name\n" +
	"X,2024-01-01T10:00:00Z,posted,100,10,5,Launch,acme\n" +
	"\n" +
	",,,,,,,\n" +
	"twitter,2024-01-02T14:00:00Z,posted,,true,-1.5,\"Launch, part 2\"\n"

func TestDecodeCSV(t *testing.T) {
	Convey("Given a CSV export", t, func() {
		rows, err := ingest.Decode(context.Background(), strings.NewReader(sampleCSV), ingest.KindCSV)

		Convey("Then blank lines should be skipped", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
		})

		Convey("Then the header should be trimmed and BOM-free", func() {
			So(rows[0], ShouldContainKey, "platform")
			So(rows[0]["platform"], ShouldEqual, "X")
		})

		Convey("Then cells should be dynamically typed", func() {
			So(rows[0]["n_views"], ShouldEqual, 100.0)
			So(rows[1]["n_views"], ShouldBeNil)
			So(rows[1]["n_comments"], ShouldEqual, true)
			So(rows[1]["n_reactions"], ShouldEqual, -1.5)
			So(rows[1]["family_name"], ShouldEqual, "Launch, part 2")
		})

		Convey("Then short records should keep the missing columns as nil", func() {
			v, ok := rows[1]["profile_name"]
			So(ok, ShouldBeTrue)
			So(v, ShouldBeNil)
		})
	})

	Convey("Given an empty body", t, func() {
		_, err := ingest.Decode(context.Background(), strings.NewReader(""), ingest.KindCSV)

		Convey("Then it should report empty input", func() {
			So(errors.Is(err, ingest.ErrEmptyInput), ShouldBeTrue)
		})
	})

	Convey("Given a header-only CSV", t, func() {
		rows, err := ingest.Decode(context.Background(), strings.NewReader("platform,status\n"), ingest.KindCSV)

		Convey("Then it should return no rows", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ingest.Decode(ctx, strings.NewReader(sampleCSV), ingest.KindCSV)

		Convey("Then decoding should stop", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestDecodeXLSX(t *testing.T) {
	Convey("Given an XLSX export built in memory", t, func() {
		f := excelize.NewFile()
		records := [][]any{
			{"platform", "post_created_at", "status", "n_views", "n_comments", "n_reactions", "family_name", "profile_name"},
			{"LinkedIn", "2024-01-03T09:00:00Z", "posted", 42, 3, 1, "Hiring", "acme"},
			{},
			{"x", "2024-01-04", "posted", "7", "", "", "Update", "bob"},
		}
		for r, rec := range records {
			for c, v := range rec {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				So(err, ShouldBeNil)
				So(f.SetCellValue("Sheet1", cell, v), ShouldBeNil)
			}
		}
		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		rows, err := ingest.Decode(context.Background(), bytes.NewReader(buf.Bytes()), ingest.KindXLSX)

		Convey("Then rows should be keyed by the first-row header", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0]["platform"], ShouldEqual, "LinkedIn")
			So(rows[0]["n_views"], ShouldEqual, 42.0)
			So(rows[1]["n_views"], ShouldEqual, 7.0)
			So(rows[1]["n_comments"], ShouldBeNil)
		})
	})

	Convey("Given an XLSX export with date cells and formatted numbers", t, func() {
		f := excelize.NewFile()
		So(f.SetSheetRow("Sheet1", "A1", &[]any{
			"platform", "post_created_at", "status", "n_views", "n_comments", "n_reactions",
			"family_name", "profile_name", "first_comment",
		}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A2", &[]any{
			"twitter", time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), "posted", 1234567, 3, 1,
			"Launch", "acme", time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC),
		}), ShouldBeNil)
		thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
		So(err, ShouldBeNil)
		So(f.SetCellStyle("Sheet1", "D2", "D2", thousands), ShouldBeNil)
		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		rows, err := ingest.Decode(context.Background(), bytes.NewReader(buf.Bytes()), ingest.KindXLSX)

		Convey("Then cells should carry their stored values, not the displayed text", func() {
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(rows[0]["n_views"], ShouldEqual, 1234567.0)
			So(rows[0]["post_created_at"], ShouldEqual, "2024-01-05 12:00:00")
			So(rows[0]["first_comment"], ShouldEqual, "2024-01-05 12:30:00")
		})

		Convey("Then the rows should validate in the configured zone", func() {
			loc := time.FixedZone("UTC+2", 2*60*60)
			posts, err := post.Validate(context.Background(), rows, post.WithLocation(loc))
			So(err, ShouldBeNil)
			So(len(posts), ShouldEqual, 1)
			So(posts[0].CreatedAtISO(), ShouldEqual, "2024-01-05T10:00:00.000Z")
			So(posts[0].Views, ShouldEqual, 1234567.0)
			So(posts[0].FirstComment, ShouldNotBeNil)
			So(posts[0].FirstComment.Sub(posts[0].CreatedAt), ShouldEqual, 30*time.Minute)
		})
	})

	Convey("Given bytes that are not a workbook", t, func() {
		_, err := ingest.Decode(context.Background(), strings.NewReader("not a zip"), ingest.KindXLSX)

		Convey("Then it should report malformed input", func() {
			So(errors.Is(err, ingest.ErrMalformed), ShouldBeTrue)
		})
	})

	Convey("Given an empty workbook", t, func() {
		f := excelize.NewFile()
		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)
		_, err := ingest.Decode(context.Background(), &buf, ingest.KindXLSX)

		Convey("Then it should report empty input", func() {
			So(errors.Is(err, ingest.ErrEmptyInput), ShouldBeTrue)
		})
	})
}

func TestKindFromName(t *testing.T) {
	Convey("Given upload names and content types", t, func() {
		So(ingest.KindFromName("posts.XLSX", ""), ShouldEqual, ingest.KindXLSX)
		So(ingest.KindFromName("posts.csv", "application/octet-stream"), ShouldEqual, ingest.KindCSV)
		So(ingest.KindFromName("", "text/csv; charset=utf-8"), ShouldEqual, ingest.KindCSV)
		So(ingest.KindFromName("upload", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"), ShouldEqual, ingest.KindXLSX)
		So(ingest.KindFromName("", ""), ShouldEqual, ingest.KindCSV)

		_, err := ingest.ParseKind("json")
		So(errors.Is(err, ingest.ErrUnsupportedKind), ShouldBeTrue)
		_, err = ingest.Decode(context.Background(), strings.NewReader(""), ingest.Kind("json"))
		So(errors.Is(err, ingest.ErrUnsupportedKind), ShouldBeTrue)
	})
}

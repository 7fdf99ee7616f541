package sampledata_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/postpulse/internal/adapters/http/api"
	"github.com/okian/postpulse/internal/adapters/ingest"
	service "github.com/okian/postpulse/internal/app"
	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/report"
	"github.com/okian/postpulse/internal/domain/types"
	"github.com/okian/postpulse/internal/sampledata"
	"github.com/okian/postpulse/pkg/logger"
)

func TestGenerate(t *testing.T) {
	Convey("Given a generated export", t, func() {
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		records := sampledata.Generate(200, now)

		Convey("Then it should carry a header and one record per row", func() {
			So(len(records), ShouldEqual, 201)
			So(records[0], ShouldResemble, sampledata.Columns)
			for _, rec := range records[1:] {
				So(len(rec), ShouldEqual, len(sampledata.Columns))
			}
		})

		Convey("When it is decoded and validated", func() {
			body, err := sampledata.EncodeCSV(records)
			So(err, ShouldBeNil)

			ctx := context.Background()
			rows, err := ingest.Decode(ctx, bytes.NewReader(body), ingest.KindCSV)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 200)

			posts, stats, err := post.ValidateStats(ctx, rows, post.WithLocation(time.UTC))
			So(err, ShouldBeNil)

			Convey("Then only posted rows within the window should survive", func() {
				So(stats.Rows, ShouldEqual, 200)
				So(len(posts), ShouldEqual, stats.Accepted)
				So(stats.BadTagRows, ShouldEqual, 0)
				for _, p := range posts {
					So(p.CreatedAt.After(now), ShouldBeFalse)
					So(p.CreatedAt.Before(now.AddDate(0, 0, -31)), ShouldBeFalse)
					So(p.OwnerEmail, ShouldEndWith, "@example.com")
				}
			})
		})
	})
}

func TestVerifyReports(t *testing.T) {
	Convey("Given two report sets", t, func() {
		a := report.Set{Platform: []report.PlatformStat{{Platform: "tiktok", EngagementScore: 190.0, TotalPosts: 1}}}

		Convey("When they are equal", func() {
			n, err := sampledata.VerifyReports(a, a)

			Convey("Then every compared report should match", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 6)
			})
		})

		Convey("When the platform report differs", func() {
			b := report.Set{Platform: []report.PlatformStat{{Platform: "tiktok", EngagementScore: 12.5, TotalPosts: 1}}}
			n, err := sampledata.VerifyReports(a, b)

			Convey("Then the mismatch should be named", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "platform")
				So(n, ShouldEqual, 5)
			})
		})

		Convey("When only the schedule grid differs", func() {
			v := 1.0
			b := a
			b.Schedule = report.ScheduleGrid{Days: []string{"Mon"}, Hours: []int{0}, Data: [][]*float64{{&v}}}
			_, err := sampledata.VerifyReports(a, b)

			Convey("Then it should be ignored", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service behind the HTTP API", t, func() {
		So(logger.InitWithFormat("text", &bytes.Buffer{}), ShouldBeNil)

		ctx := context.Background()
		svc := service.New(service.WithLogger(logger.Nop()), service.WithLocation(time.UTC))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		server := httptest.NewServer(mux)
		defer server.Close()

		Convey("When a sample export is submitted concurrently", func() {
			stats, err := sampledata.Run(ctx, &sampledata.Config{
				BaseURL:      server.URL,
				NumPosts:     300,
				Submissions:  6,
				Timeout:      5 * time.Second,
				PollInterval: 10 * time.Millisecond,
				WaitTimeout:  10 * time.Second,
			})

			Convey("Then exactly one submission should be processed and verified", func() {
				So(err, ShouldBeNil)
				So(stats.PostsGenerated, ShouldEqual, 300)
				So(stats.UploadsAccepted, ShouldEqual, 1)
				So(stats.UploadsDuplicate, ShouldEqual, 5)
				So(stats.UploadsFailed, ShouldEqual, 0)
				So(stats.FinalState, ShouldEqual, types.StateCompleted)
				So(stats.ReportsVerified, ShouldEqual, 6)
			})
		})
	})

	Convey("Given no service at the address", t, func() {
		So(logger.InitWithFormat("text", &bytes.Buffer{}), ShouldBeNil)
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		Convey("Then the health check should fail the run", func() {
			_, err := sampledata.Run(context.Background(), &sampledata.Config{
				BaseURL:  url,
				NumPosts: 10,
				Timeout:  time.Second,
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

package scoring_test

import (
	"testing"
	"time"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestEngagement(t *testing.T) {
	convey.Convey("Given the engagement formula", t, func() {
		convey.Convey("When all counts are zero", func() {
			convey.Convey("Then the score should be zero", func() {
				convey.So(scoring.Engagement(0, 0, 0), convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When counts are 100 views, 10 comments, 5 reactions", func() {
			convey.Convey("Then the score should be 75", func() {
				convey.So(scoring.Engagement(100, 10, 5), convey.ShouldEqual, 75.0)
			})
		})

		convey.Convey("When scoring a canonical post", func() {
			p := post.Post{Views: 50, Comments: 2, Reactions: 1}

			convey.Convey("Then it should match the raw formula", func() {
				convey.So(scoring.PostEngagement(p), convey.ShouldEqual, 28.0)
				convey.So(scoring.DefaultWeights.Score(50, 2, 1), convey.ShouldEqual, 28.0)
			})
		})

		convey.Convey("When checking linearity", func() {
			a := scoring.Engagement(10, 3, 7)
			b := scoring.Engagement(4, 1, 2)

			convey.Convey("Then the sum of inputs should score the sum of scores", func() {
				convey.So(scoring.Engagement(14, 4, 9), convey.ShouldAlmostEqual, a+b)
			})
		})

		convey.Convey("When using custom weights", func() {
			w := scoring.Weights{Views: 1, Comments: 1, Reactions: 1}

			convey.Convey("Then the custom coefficients should apply", func() {
				convey.So(w.Score(1, 2, 3), convey.ShouldEqual, 6.0)
			})
		})
	})
}

func TestFormatDate(t *testing.T) {
	convey.Convey("Given ISO timestamps", t, func() {
		convey.Convey("When formatting in UTC", func() {
			label, ok := scoring.FormatDate("2024-01-05T10:00:00.000Z", time.UTC)

			convey.Convey("Then it should render a short label", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(label, convey.ShouldEqual, "Jan 5, 2024")
			})
		})

		convey.Convey("When the zone moves the instant across midnight", func() {
			label, ok := scoring.FormatDate("2024-01-05T23:30:00Z", time.FixedZone("UTC+2", 7200))

			convey.Convey("Then the label should use the local day", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(label, convey.ShouldEqual, "Jan 6, 2024")
			})
		})

		convey.Convey("When given a bare date", func() {
			label, ok := scoring.FormatDate("2024-12-31", time.FixedZone("UTC-5", -5*3600))

			convey.Convey("Then the calendar day should be kept", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(label, convey.ShouldEqual, "Dec 31, 2024")
			})
		})

		convey.Convey("When the input is empty or garbage", func() {
			_, okEmpty := scoring.FormatDate("", nil)
			_, okBad := scoring.FormatDate("yesterday", nil)

			convey.Convey("Then it should report failure", func() {
				convey.So(okEmpty, convey.ShouldBeFalse)
				convey.So(okBad, convey.ShouldBeFalse)
			})
		})
	})
}

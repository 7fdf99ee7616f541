package report_test

import (
	"time"

	"github.com/okian/postpulse/internal/domain/post"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func weeks(v float64) *float64 { return &v }

func mk(platform, created string, views, comments, reactions float64) post.Post {
	return post.Post{
		Platform:  platform,
		CreatedAt: at(created),
		Status:    post.StatusPosted,
		Views:     views,
		Comments:  comments,
		Reactions: reactions,
		Tags:      []string{},
	}
}

// Package post turns raw export rows into canonical posts.
//
// A RawRow is whatever the ingest adapter decoded from one line of the
// export. Validate enforces the schema, drops rows that cannot be analysed
// and projects the rest onto Post, the immutable record every report reads.
package post

import (
	"encoding/json"
	"time"
)

// Column names of the export format.
const (
	ColPlatform           = "platform"
	ColPostCreatedAt      = "post_created_at"
	ColStatus             = "status"
	ColViews              = "n_views"
	ColComments           = "n_comments"
	ColReactions          = "n_reactions"
	ColFamilyName         = "family_name"
	ColProfileName        = "profile_name"
	ColAuthor             = "author"
	ColTitle              = "title"
	ColFamilyTags         = "family_tags"
	ColContent            = "content"
	ColScheduleWeeksAhead = "schedule_weeks_ahead"
	ColExtPostService     = "ext_post_service"
	ColOwnerEmail         = "owner_email"
	ColFirstComment       = "first_comment"
)

// RequiredColumns must be present on the first row of every upload.
var RequiredColumns = []string{
	ColPlatform,
	ColPostCreatedAt,
	ColStatus,
	ColViews,
	ColComments,
	ColReactions,
	ColFamilyName,
	ColProfileName,
}

// StatusPosted is the only status value that survives validation.
const StatusPosted = "posted"

// isoLayout matches JavaScript's Date.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z"

// RawRow is one decoded export row keyed by column name. Values are nil,
// float64, bool or string.
type RawRow map[string]any

// Post is a validated, normalized export row.
type Post struct {
	Platform  string
	CreatedAt time.Time // UTC
	Status    string

	Views     float64
	Comments  float64
	Reactions float64

	Title     string // family_name
	Author    string // profile_name
	RawAuthor string // author column, if any
	RawTitle  string // title column, if any

	Tags       []string // names from the family_tags JSON
	FamilyTags string   // family_tags as uploaded
	Content    string

	ScheduleWeeksAhead *float64
	ExtPostService     string
	OwnerEmail         string
	FirstComment       *time.Time
}

// CreatedAtISO returns the creation instant as an ISO-8601 UTC string.
func (p Post) CreatedAtISO() string {
	return p.CreatedAt.UTC().Format(isoLayout)
}

// Creator returns the author used for creator grouping, or "".
func (p Post) Creator() string {
	if p.Author != "" {
		return p.Author
	}
	return p.RawAuthor
}

// DisplayTitle returns Title, falling back to RawTitle.
func (p Post) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.RawTitle
}

type postJSON struct {
	Platform           string   `json:"platform"`
	PostCreatedAt      string   `json:"postCreatedAt"`
	Status             string   `json:"status"`
	NViews             float64  `json:"nViews"`
	NComments          float64  `json:"nComments"`
	NReactions         float64  `json:"nReactions"`
	Title              string   `json:"title"`
	Author             string   `json:"author"`
	RawAuthor          string   `json:"rawAuthor,omitempty"`
	RawTitle           string   `json:"rawTitle,omitempty"`
	Tags               []string `json:"tags"`
	FamilyTags         string   `json:"familyTags,omitempty"`
	Content            string   `json:"content"`
	ScheduleWeeksAhead *float64 `json:"scheduleWeeksAhead,omitempty"`
	ExtPostService     string   `json:"extPostService,omitempty"`
	OwnerEmail         string   `json:"ownerEmail,omitempty"`
	FirstComment       string   `json:"firstComment,omitempty"`
}

// MarshalJSON encodes the post with camelCase names and ISO timestamps.
func (p Post) MarshalJSON() ([]byte, error) {
	out := postJSON{
		Platform:           p.Platform,
		PostCreatedAt:      p.CreatedAtISO(),
		Status:             p.Status,
		NViews:             p.Views,
		NComments:          p.Comments,
		NReactions:         p.Reactions,
		Title:              p.Title,
		Author:             p.Author,
		RawAuthor:          p.RawAuthor,
		RawTitle:           p.RawTitle,
		Tags:               p.Tags,
		FamilyTags:         p.FamilyTags,
		Content:            p.Content,
		ScheduleWeeksAhead: p.ScheduleWeeksAhead,
		ExtPostService:     p.ExtPostService,
		OwnerEmail:         p.OwnerEmail,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if p.FirstComment != nil {
		out.FirstComment = p.FirstComment.UTC().Format(isoLayout)
	}
	return json.Marshal(out)
}

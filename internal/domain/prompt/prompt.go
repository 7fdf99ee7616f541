// Package prompt renders report data into LLM prompt text.
package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/postpulse/internal/domain/post"
	"github.com/okian/postpulse/internal/domain/report"
)

// Prompt names.
const (
	NamePlatform   = "platformAnalysis"
	NameTimeBased  = "timeBasedAnalysis"
	NameFormat     = "formatAnalysis"
	NameTag        = "tagAnalysis"
	NameCreator    = "creatorAnalysis"
	NameSchedule   = "scheduleAnalysis"
	NameComment    = "commentAnalysis"
	NameAnomaly    = "anomalyAnalysis"
	NamePredictive = "predictiveAnalysis"
)

// NameRecommendation selects the recommendation prompt where a prompt name
// is accepted. It is not part of the analysis bundle.
const NameRecommendation = "recommendation"

// ErrUnknownPrompt is returned by Prompts.Get for a name outside Names.
var ErrUnknownPrompt = errors.New("unknown prompt")

// Prompt is one named analysis request.
type Prompt struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Prompts is the ordered analysis bundle.
type Prompts []Prompt

// Get returns the text of the prompt called name.
func (ps Prompts) Get(name string) (string, error) {
	for _, p := range ps {
		if p.Name == name {
			return p.Text, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
}

// Names returns the prompt names in order.
func (ps Prompts) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Map returns the bundle keyed by name.
func (ps Prompts) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Name] = p.Text
	}
	return m
}

type template struct {
	name   string
	report string // "" for prompts without embedded data
	lead   string
	ask    string
}

// The trailing ". \n" after the embedded JSON is part of the wording.
var templates = []template{
	{NamePlatform, report.NamePlatform,
		"Analyze the following platform engagement data and identify sustained high performers and emerging trends: ",
		"What variables appear to affect engagement across different platforms? Consider factors like content type, posting frequency, and audience demographics."},
	{NameTimeBased, report.NameTimeBased,
		"Review these time-based engagement metrics: ",
		"What daily, weekly, or seasonal patterns emerge? Identify significant peaks and dips, and suggest potential contributing factors."},
	{NameFormat, report.NameFormat,
		"Examine this content format performance data: ",
		"Which formats consistently drive higher engagement? What correlations exist between media types and audience interaction?"},
	{NameTag, report.NameTags,
		"Based on this tag performance data: ",
		"Which tags drive the highest engagement rates? Are there notable tag combinations that correlate with improved performance?"},
	{NameCreator, report.NameCreators,
		"Analyze creator performance metrics: ",
		"What patterns distinguish top performers? Consider posting frequency, content types, and engagement rates."},
	{NameSchedule, report.NameSchedule,
		"Review this posting schedule impact data: ",
		"How do posting times and frequency correlate with engagement? Identify optimal time slots for audience response."},
	{NameComment, report.NameComments,
		"Evaluate this comment impact data: ",
		"What's the relationship between comment volume and overall engagement? Do higher comment counts indicate deeper audience interest?"},
	{NameAnomaly, "",
		"Using all available metrics, identify significant outliers and anomalies in the data. \n",
		"What potential causes might explain these unexpected performance patterns?"},
	{NamePredictive, "",
		"Based on all historical trends in the data, what patterns might help forecast future engagement? \n",
		"Suggest specific strategies for optimizing future posting approaches based on past performance."},
}

const recommendationTail = `,
provide specific, actionable recommendations for:
1. Platform strategy adjustments
2. Optimal posting schedules
3. Content format optimization
4. Tag strategy improvements
5. Creator performance enhancement
6. Engagement boosting tactics
7. Comment generation strategies

For each recommendation, include:
- The data points supporting the recommendation
- Expected impact on engagement
- Implementation steps
- Potential challenges to consider`

// Analysis recomputes the reports for posts and returns the nine analysis
// prompts. The last two carry no data and rely on earlier conversation
// context held by the model.
func Analysis(ctx context.Context, posts []post.Post, opts ...report.Option) (Prompts, error) {
	set, err := report.Build(ctx, posts, opts...)
	if err != nil {
		return nil, err
	}
	return FromReports(set)
}

// FromReports renders the analysis prompts from an existing report set.
func FromReports(set report.Set) (Prompts, error) {
	out := make(Prompts, 0, len(templates))
	for _, t := range templates {
		if t.report == "" {
			out = append(out, Prompt{Name: t.name, Text: t.lead + t.ask})
			continue
		}
		data, err := set.Get(t.report)
		if err != nil {
			return nil, err
		}
		b, err := encodeJSON(data, "")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.report, err)
		}
		out = append(out, Prompt{Name: t.name, Text: t.lead + string(b) + ". \n" + t.ask})
	}
	return out, nil
}

// Recommendation recomputes the reports and returns one prompt asking for
// recommendations across all of them.
func Recommendation(ctx context.Context, posts []post.Post, opts ...report.Option) (string, error) {
	set, err := report.Build(ctx, posts, opts...)
	if err != nil {
		return "", err
	}
	return RecommendationFromReports(set)
}

// RecommendationFromReports renders the recommendation prompt from set.
func RecommendationFromReports(set report.Set) (string, error) {
	b, err := encodeJSON(set, "  ")
	if err != nil {
		return "", fmt.Errorf("encode reports: %w", err)
	}
	return "Based on the following social media performance metrics: " + string(b) + recommendationTail, nil
}

// encodeJSON leaves <, > and & as-is so tag names read naturally in prompts.
func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

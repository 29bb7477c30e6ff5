package email

import (
	"fmt"
	"strings"
	"text/template"

	"suitec/pkg/utils"
)

// Template names accepted by Render
const (
	TemplateWeeklyDigest = "weekly_digest"
	TemplateDailyDigest  = "daily_digest"
)

var templateFuncs = template.FuncMap{
	"timeago": utils.TimeAgo,
	"stamp":   utils.FormatTimestamp,
}

// Plain-text bodies. The LMS strips most markup from notification emails, so
// the digests stay deliberately plain.
var weeklyBody = template.Must(template.New(TemplateWeeklyDigest).Funcs(templateFuncs).Parse(`Hi {{.User.FullName}},

Here is your weekly activity summary for {{.Course.Name}}.

{{- if .Totals}}

Your week:
  Points earned:   {{.Totals.PointsGenerated}}
  Points received: {{.Totals.PointsReceived}}
  Comments received: {{.Totals.CommentsReceived}}
  Likes received:    {{.Totals.LikesReceived}}
{{- else}}

You had a quiet week - no recorded activity.
{{- end}}

Your rank this week: #{{.Rank}}

Course totals:
  Points from uploads:     {{.Summary.Totals.PointsFromAssetsUploaded}} (avg {{.Summary.Averages.PointsFromAssetsUploaded}})
  Points from comments:    {{.Summary.Totals.PointsFromComments}} (avg {{.Summary.Averages.PointsFromComments}})
  Points from likes:       {{.Summary.Totals.PointsFromLikes}} (avg {{.Summary.Averages.PointsFromLikes}})
  Points from whiteboards: {{.Summary.Totals.PointsFromWhiteboards}} (avg {{.Summary.Averages.PointsFromWhiteboards}})

{{- if .Summary.TopAssets}}

Top assets this week:
{{- range $category, $top := .Summary.TopAssets}}
  {{$category}}: "{{$top.Asset.Title}}" ({{$top.Value}})
{{- end}}
{{- end}}

{{- if .MostPopularAsset}}

Your most popular asset: "{{.MostPopularAsset.Title}}" ({{.MostPopularAsset.Views}} views, {{.MostPopularAsset.Likes}} likes, {{.MostPopularAsset.CommentCount}} comments)
{{- end}}
`))

var dailyBody = template.Must(template.New(TemplateDailyDigest).Funcs(templateFuncs).Parse(`Hi {{.User.FullName}},

Here is what happened in {{.Course.Name}} since yesterday.
{{range .Activities}}
{{- if .Asset}}
* "{{.Asset.Title}}" ({{timeago .LastActivity}})
{{- range .Comments}}
  {{- if .ParentID}}
    > {{.User.FullName}}: {{.Body}}
  {{- else}}
  - {{.User.FullName}}: {{.Body}}
  {{- end}}
{{- end}}
{{- else if .Whiteboard}}
* Whiteboard "{{.Whiteboard.Title}}" ({{timeago .LastActivity}})
{{- range .Messages}}
  - {{.User.FullName}}: {{.Body}}
{{- end}}
{{- end}}
{{end}}
`))

var templates = map[string]*template.Template{
	TemplateWeeklyDigest: weeklyBody,
	TemplateDailyDigest:  dailyBody,
}

// Render produces the plain-text body for a digest
func Render(digest *Digest) (string, error) {
	tmpl, ok := templates[digest.Template]
	if !ok {
		return "", fmt.Errorf("unknown email template: %s", digest.Template)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, digest.Data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", digest.Template, err)
	}
	return buf.String(), nil
}

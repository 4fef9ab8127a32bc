package render

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"snapfeed/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// FeedPage is the template name the feed handler renders.
const FeedPage = "feed.html"

//go:embed templates/*.html
var templateFS embed.FS

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"caption": utils.RenderCaption,
		"utc": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"timeAgo": func(t time.Time) string {
			return TimeAgo(t, time.Now())
		},
	}
}

// TimeAgo formats the distance between t and now in the coarsest whole unit.
func TimeAgo(t, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	switch {
	case seconds < 60:
		return plural(seconds, "second")
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// New builds the HTML renderer. Each page is the base layout plus its view.
func New() (multitemplate.Renderer, error) {
	base, err := templateFS.ReadFile("templates/base.html")
	if err != nil {
		return nil, err
	}

	r := multitemplate.NewRenderer()
	for _, view := range []string{FeedPage} {
		content, err := templateFS.ReadFile("templates/" + view)
		if err != nil {
			return nil, err
		}
		r.AddFromStringsFuncs(view, FuncMap(), string(base), string(content))
	}
	return r, nil
}

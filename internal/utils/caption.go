package utils

import (
	"html/template"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r\n", "<br/>", "\n", "<br/>", "\r", "<br/>")

// RenderCaption escapes a caption for HTML and keeps its line breaks. The text is
// otherwise shown exactly as submitted.
func RenderCaption(source string) template.HTML {
	return template.HTML(lineBreaks.Replace(template.HTMLEscapeString(source)))
}

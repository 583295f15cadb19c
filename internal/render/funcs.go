package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
	"github.com/daivuongnguyen/yen-may-vintage-website/internal/format"
)

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// markdown renders shop copy as sanitized HTML. Render failures fall back to
// the escaped source text.
func markdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// inlineMarkdown is markdown without the wrapping paragraph, for copy that
// sits inside an existing block element.
func inlineMarkdown(src string) template.HTML {
	out := strings.TrimSpace(string(markdown(src)))
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out)
}

func pressLogoClass(i int) string {
	switch i {
	case 1:
		return "prestige-logo italic"
	case 2:
		return "prestige-logo uppercase"
	}
	return "prestige-logo"
}

func statusClass(s content.Status) string {
	switch s {
	case content.StatusAvailable:
		return "status-available"
	case content.StatusReserved:
		return "status-reserved"
	case content.StatusSoldOut:
		return "status-sold-out"
	}
	return "status-other"
}

var funcMap = template.FuncMap{
	"markdown":       markdown,
	"inlineMarkdown": inlineMarkdown,
	"pressLogoClass": pressLogoClass,
	"statusClass":    statusClass,
	"counter":        counterLabel,
	"fmtDate":        format.FmtDate,
	"stars":          func() []int { return []int{1, 2, 3, 4, 5} },
}

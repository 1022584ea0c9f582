package export

import (
	"fmt"
	"html"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"notaria/internal/domain"
)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

// RenderPreviewHTML converts the document's Markdown-like text into a
// sanitized standalone HTML page. Line breaks inside paragraphs are kept.
func RenderPreviewHTML(doc *domain.Document) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := sanitizer().SanitizeBytes(markdown.ToHTML([]byte(doc.Content), p, r))

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>%s v%d</title></head>
<body style="font-family: Georgia, serif; max-width: 780px; margin: 0 auto; padding: 32px; line-height: 1.6;">
<p style="color: #888; font-size: 12px;">%s · versión %d</p>
%s
</body>
</html>`, html.EscapeString(doc.Type), doc.Version, html.EscapeString(string(doc.Status)), doc.Version, body)
	return []byte(page)
}

func sanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		previewPolicy = bluemonday.UGCPolicy()
	})
	return previewPolicy
}

package landing

import (
	"bytes"
	"html"

	"github.com/rohanthewiz/logger"
	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// RenderMarkdown converts note content to HTML. Raw HTML in the source is not
// passed through. On a conversion error the escaped source is shown instead.
func RenderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		logger.LogErr(err, "markdown conversion failed")
		return "<pre>" + html.EscapeString(src) + "</pre>"
	}
	return buf.String()
}

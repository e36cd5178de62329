package report

import (
	"fmt"
	stdhtml "html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const reportCSS = `body{font-family:Helvetica,Arial,sans-serif;max-width:960px;margin:2em auto;color:#222;line-height:1.5}
table{border-collapse:collapse;margin:1em 0}
th,td{border:1px solid #ccc;padding:4px 10px;text-align:left}
th{background:#ddebf7}
code{background:#f4f4f4;padding:1px 4px}`

var mdLink = regexp.MustCompile(`\]\(([^)\s]+)\.md\)`)

// RenderHTML converts a Markdown report into a standalone HTML page. Links
// to sibling .md reports are rewritten to their .html renditions.
func RenderHTML(md []byte, title string) []byte {
	md = mdLink.ReplaceAll(md, []byte("]($1.html)"))

	// parsers carry state; one per document
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML(md, p, renderer)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", stdhtml.EscapeString(title))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n", reportCSS)
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// WriteHTML renders the Markdown file at mdPath next to it as .html and
// returns the new path
func WriteHTML(mdPath, title string) (string, error) {
	md, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("failed to read report %s: %w", filepath.Base(mdPath), err)
	}
	out := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".html"
	if err := os.WriteFile(out, RenderHTML(md, title), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(out), err)
	}
	return out, nil
}

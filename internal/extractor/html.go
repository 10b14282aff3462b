package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// htmlTagPattern decides whether a body should be treated as markup.
var htmlTagPattern = regexp.MustCompile(`<\s*/?\s*[a-zA-Z!][^>]*>`)

// blockElements start a new output line when entered or left.
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "body": true, "br": true,
	"center": true, "dd": true, "div": true, "dl": true, "dt": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tbody": true,
	"tfoot": true, "thead": true, "tr": true, "ul": true,
}

// cellElements are separated by a space so label/value cells stay on one line.
var cellElements = map[string]bool{"td": true, "th": true}

// LooksLikeHTML reports whether s contains at least one markup tag.
func LooksLikeHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}

// ExtractText returns the canonical plain-text form of an email body.
// Markup is flattened to visible text first; scripts, styles and the
// document head are discarded.
func ExtractText(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if !LooksLikeHTML(body) {
		return NormalizeLines(body)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		// html.Parse only fails on reader errors; keep the raw text usable.
		return NormalizeLines(htmlTagPattern.ReplaceAllString(body, "\n"))
	}
	return NormalizeLines(VisibleText(doc))
}

// VisibleText flattens a parsed document into newline-separated text.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, head, title, template").Remove()

	var sb strings.Builder
	for _, n := range doc.Selection.Nodes {
		writeNode(&sb, n)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if blockElements[n.Data] {
			sb.WriteByte('\n')
		} else if cellElements[n.Data] {
			sb.WriteByte(' ')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(sb, c)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] {
		sb.WriteByte('\n')
	}
}

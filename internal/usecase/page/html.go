package page

import (
	"strings"

	"golang.org/x/net/html"
)

// skipTags hold no visible page copy.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "iframe": true, "head": true, "nav": true, "footer": true,
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"li", "tr", "blockquote", "pre", "section", "article",
		"header", "main":
		return true
	}
	return false
}

// extractHTML returns the <title> text and the visible body copy of doc.
// Boilerplate elements (navigation, scripts, footers) are dropped.
func extractHTML(doc string) (title, text string) {
	z := html.NewTokenizer(strings.NewReader(doc))
	var (
		body    strings.Builder
		head    strings.Builder
		skip    []string
		inTitle bool
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(head.String()), strings.TrimSpace(collapseLines(body.String()))

		case html.StartTagToken:
			tn, _ := z.TagName()
			tag := string(tn)
			if tag == "title" {
				inTitle = true
			}
			if skipTags[tag] {
				skip = append(skip, tag)
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			tag := string(tn)
			if tag == "title" {
				inTitle = false
			}
			if skipTags[tag] {
				for i := len(skip) - 1; i >= 0; i-- {
					if skip[i] == tag {
						skip = append(skip[:i], skip[i+1:]...)
						break
					}
				}
			}
			if isBlockTag(tag) && len(skip) == 0 {
				body.WriteByte('\n')
			}

		case html.TextToken:
			data := strings.TrimSpace(string(z.Text()))
			if data == "" {
				continue
			}
			if inTitle {
				head.WriteString(data)
				head.WriteByte(' ')
				continue
			}
			if len(skip) == 0 {
				body.WriteString(data)
				body.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseLines squeezes whitespace within lines and drops blank lines.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = collapse(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

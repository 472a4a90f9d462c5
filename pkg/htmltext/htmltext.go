// Package htmltext renders HTML as readable plain text. Page elements and
// email bodies both go through it.
package htmltext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extract returns the readable text of an HTML fragment or document. Scripts and
// styles are dropped, <br> and block elements become line breaks, and runs
// of blank lines collapse to one.
func Extract(markup string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var builder strings.Builder
	for _, n := range nodes {
		writeText(n, &builder)
	}
	return normalizeLines(builder.String()), nil
}

func writeText(n *html.Node, builder *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		builder.WriteString(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return
		}
		if tag == "br" {
			builder.WriteString("\n")
			return
		}
		if tag == "img" {
			// emoji are rendered as images carrying the glyph in alt
			for _, attr := range n.Attr {
				if attr.Key == "alt" {
					builder.WriteString(attr.Val)
				}
			}
			return
		}
		block := isBlockElement(tag)
		if block {
			builder.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(c, builder)
		}
		if block {
			builder.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, builder)
	}
}

func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// isSkippedElement returns true for elements that should be completely removed
func isSkippedElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "iframe", "embed", "object", "svg", "head", "title":
		return true
	}
	return false
}

// isBlockElement returns true for block-level elements
func isBlockElement(tagName string) bool {
	switch tagName {
	case "div", "p", "section", "article", "header", "footer", "nav", "main",
		"aside", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li",
		"blockquote", "pre":
		return true
	}
	return false
}

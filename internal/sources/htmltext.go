package sources

import (
	"strings"

	"golang.org/x/net/html"
)

// stripTags parses an HTML fragment and returns its concatenated text
// content. Used to clean API snippets that embed highlight markup.
func stripTags(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(textContent(doc))
}

// textContent collects the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}

// findAllByClass walks the tree and returns every element whose class
// attribute contains the given class name, up to limit (0 = no limit).
func findAllByClass(doc *html.Node, tag, class string, limit int) []*html.Node {
	var found []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if limit > 0 && len(found) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return found
}

// findByClass returns the first matching descendant or nil.
func findByClass(n *html.Node, tag, class string) *html.Node {
	matches := findAllByClass(n, tag, class, 1)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

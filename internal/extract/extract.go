package extract

import (
    "bytes"
    "fmt"
    "strings"

    "golang.org/x/net/html"
    "golang.org/x/net/html/charset"
)

// Document is a simplified representation of extracted page content.
type Document struct {
    Title string
    Text  string
}

// noiseTags are element kinds whose subtrees never contribute to output,
// so navigation chrome and scripts cannot leak into extracted text.
var noiseTags = map[string]bool{
    "script":   true,
    "style":    true,
    "nav":      true,
    "footer":   true,
    "header":   true,
    "aside":    true,
    "noscript": true,
}

// FromHTML extracts readable text from an HTML page. The body is decoded
// according to contentType (falling back to auto-detection), noise subtrees
// are pruned, and the remaining visible text is cleaned line by line:
// leading/trailing whitespace trimmed, empty lines dropped, survivors joined
// with newlines. Title is the trimmed <title> text, empty when absent.
func FromHTML(input []byte, contentType string) (Document, error) {
    r, err := charset.NewReader(bytes.NewReader(input), contentType)
    if err != nil {
        r = bytes.NewReader(input)
    }
    node, err := html.Parse(r)
    if err != nil {
        return Document{}, fmt.Errorf("parse html: %w", err)
    }

    title := strings.TrimSpace(findTitle(node))

    var b strings.Builder
    collectText(&b, node)
    return Document{Title: title, Text: cleanLines(b.String())}, nil
}

func findTitle(n *html.Node) string {
    t := findFirst(n, "title")
    if t == nil || t.FirstChild == nil {
        return ""
    }
    return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
    var res *html.Node
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if res != nil {
            return
        }
        if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
            res = cur
            return
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
            if res != nil {
                return
            }
        }
    }
    dfs(n)
    return res
}

// collectText walks the tree depth-first, appending every text node with a
// trailing space separator. Noise subtrees are skipped entirely.
func collectText(b *strings.Builder, n *html.Node) {
    if n.Type == html.ElementNode && noiseTags[strings.ToLower(n.Data)] {
        return
    }
    if n.Type == html.TextNode {
        b.WriteString(n.Data)
        b.WriteString(" ")
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c)
    }
}

// cleanLines trims every line, drops empty ones, and joins the rest with
// newlines.
func cleanLines(s string) string {
    lines := strings.Split(s, "\n")
    out := make([]string, 0, len(lines))
    for _, line := range lines {
        trimmed := strings.TrimSpace(line)
        if trimmed == "" {
            continue
        }
        out = append(out, trimmed)
    }
    return strings.Join(out, "\n")
}

// Truncate caps s at max characters, counting runes so multi-byte text is
// never cut mid-character.
func Truncate(s string, max int) string {
    if max <= 0 {
        return s
    }
    r := []rune(s)
    if len(r) <= max {
        return s
    }
    return string(r[:max])
}

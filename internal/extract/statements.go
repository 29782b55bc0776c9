// Package extract turns pages and files into candidate statements.
package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// Extractor pulls statements out of HTML documents
type Extractor struct {
	MinLength     int // Shorter sentences are navigation noise
	MaxLength     int // Longer sentences are usually run-on page text
	MaxStatements int // 0 means no cap
}

// NewExtractor creates an extractor with the default bounds
func NewExtractor() *Extractor {
	return &Extractor{
		MinLength: 30,
		MaxLength: 500,
	}
}

// FromHTML extracts statements from HTML using the default extractor
func FromHTML(htmlContent string) ([]string, error) {
	return NewExtractor().FromHTML(htmlContent)
}

// FromHTML extracts sentences from the visible text of the page's main content
func (e *Extractor) FromHTML(htmlContent string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	text := extractVisibleText(mainContent(doc))
	statements := dedupe(e.splitSentences(text))

	if e.MaxStatements > 0 && len(statements) > e.MaxStatements {
		statements = statements[:e.MaxStatements]
	}
	return statements, nil
}

// Title returns the document title, or "" if there is none
func Title(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	node := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "title"
	})
	if node == nil || node.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(node.FirstChild.Data)
}

// mainContent prefers <article>, then <main>, then <body>
func mainContent(doc *html.Node) *html.Node {
	for _, tag := range []string{"article", "main", "body"} {
		node := findFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == tag
		})
		if node != nil {
			return node
		}
	}
	return doc
}

// findFirst finds the first node matching a predicate, depth-first
func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	if predicate(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, predicate); found != nil {
			return found
		}
	}
	return nil
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// splitSentences splits text into sentences (simple heuristic)
func (e *Extractor) splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var sentences []string
	var current strings.Builder

	keep := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= e.MinLength && (e.MaxLength <= 0 || len(sentence) <= e.MaxLength) {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Only split when followed by a space, so "3.5" and "e.g." mid-token survive
			if i+1 < len(text) && text[i+1] == ' ' {
				keep()
			}
		}
	}

	if current.Len() > 0 {
		keep()
	}

	return sentences
}

// dedupe removes repeated statements (case-insensitive), keeping first occurrences in order
func dedupe(statements []string) []string {
	seen := make(map[string]bool)
	unique := make([]string, 0, len(statements))

	for _, s := range statements {
		key := strings.ToLower(strings.TrimSpace(s))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, s)
		}
	}

	return unique
}

// FromLines reads one statement per line, skipping blank and # comment lines.
// Duplicates are dropped; order is preserved.
func FromLines(r io.Reader) ([]string, error) {
	var statements []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			statements = append(statements, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}

	return statements, nil
}

// ReadFile reads statements (or URLs) from a file, one per line
func ReadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return FromLines(file)
}

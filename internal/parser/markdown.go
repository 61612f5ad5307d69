package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/bulkrename/internal/models"
)

// MarkdownParser parses Markdown mapping files. Every list item made of two
// code spans joined by an arrow is a rename; all other content is ignored.
//
//	---
//	directory: ./photos
//	---
//	# Holiday
//	- `IMG_0001.jpg` -> `beach.jpg`
//	- `IMG_0002.jpg` → `sunset.jpg`
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// NewMarkdownParser creates a MarkdownParser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

type markdownFrontmatter struct {
	Directory string `yaml:"directory"`
}

// Parse reads the optional frontmatter and the rename list items.
func (p *MarkdownParser) Parse(r io.Reader) (*Mapping, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	mapping := &Mapping{Renames: []models.RenamePair{}}
	content, frontmatter := extractFrontmatter(content)
	if frontmatter != nil {
		var fm markdownFrontmatter
		if err := yaml.Unmarshal(frontmatter, &fm); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		mapping.Directory = strings.TrimSpace(fm.Directory)
	}

	doc := p.markdown.Parser().Parse(text.NewReader(content))

	pairs, err := extractPairs(doc, content)
	if err != nil {
		return nil, err
	}
	mapping.Renames = append(mapping.Renames, pairs...)
	return mapping, nil
}

// extractPairs walks every list item of the document.
func extractPairs(doc ast.Node, source []byte) ([]models.RenamePair, error) {
	var pairs []models.RenamePair

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}

		block := n.FirstChild()
		if block == nil {
			return ast.WalkContinue, nil
		}

		var spans []string
		var between bytes.Buffer
		for c := block.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.CodeSpan:
				spans = append(spans, strings.TrimSpace(extractText(node, source)))
			case *ast.Text:
				between.Write(node.Segment.Value(source))
			}
		}

		sep := between.String()
		hasArrow := strings.Contains(sep, "->") || strings.Contains(sep, "→")
		switch {
		case !hasArrow || len(spans) == 0:
			// plain list item
		case len(spans) != 2:
			return ast.WalkStop, fmt.Errorf("invalid rename %q: expected `old` -> `new`", strings.TrimSpace(itemText(block, source)))
		default:
			pair := models.RenamePair{From: spans[0], To: spans[1]}
			if err := validatePairs([]models.RenamePair{pair}); err != nil {
				return ast.WalkStop, fmt.Errorf("invalid rename %q: %w", strings.TrimSpace(itemText(block, source)), err)
			}
			pairs = append(pairs, pair)
		}
		// nested lists are visited on their own
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// extractText extracts plain text from an AST node
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// itemText renders a list item line for error messages.
func itemText(block ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.CodeSpan:
			buf.WriteString("`" + extractText(node, source) + "`")
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
		}
	}
	return buf.String()
}

// extractFrontmatter extracts YAML frontmatter from markdown content
// Returns the content without frontmatter and the frontmatter bytes
func extractFrontmatter(content []byte) ([]byte, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) < 3 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return content, nil
	}

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatter := bytes.Join(lines[1:i], []byte("\n"))
			body := bytes.Join(lines[i+1:], []byte("\n"))
			return body, frontmatter
		}
	}

	// No closing delimiter found
	return content, nil
}

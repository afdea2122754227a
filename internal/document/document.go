// Package document reads and writes the MDX files that back each published idea.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
	"gopkg.in/yaml.v3"

	"IdeaScout/internal/domain"
)

const delimiter = "---"

var (
	// ErrNoFrontmatter is returned when the document does not open with a YAML header.
	ErrNoFrontmatter = errors.New("document has no frontmatter")

	openingFence = regexp.MustCompile("(?i)^```(?:mdx|md|markdown)?[ \t]*\r?\n")
	closingFence = regexp.MustCompile("\r?\n```[ \t]*$")
	spaceRun     = regexp.MustCompile(`\s+`)
)

// Parse splits raw MDX into its frontmatter and body.
func Parse(raw string) (domain.Frontmatter, string, error) {
	var fm domain.Frontmatter

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(text, delimiter+"\n") {
		return fm, "", ErrNoFrontmatter
	}

	rest := text[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return fm, "", fmt.Errorf("%w: missing closing delimiter", ErrNoFrontmatter)
	}

	header := rest[:end]
	body := rest[end+len(delimiter)+1:]
	// drop the remainder of the closing delimiter line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, "", fmt.Errorf("decode frontmatter: %w", err)
	}

	return fm, strings.TrimLeft(body, "\n"), nil
}

// Render writes the frontmatter as a YAML header followed by the body.
func Render(fm domain.Frontmatter, body string) (string, error) {
	var header bytes.Buffer
	enc := yaml.NewEncoder(&header)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("close frontmatter encoder: %w", err)
	}

	var out strings.Builder
	out.WriteString(delimiter + "\n")
	out.Write(header.Bytes())
	out.WriteString(delimiter + "\n\n")
	out.WriteString(strings.TrimSpace(body))
	out.WriteString("\n")
	return out.String(), nil
}

// Normalize removes a wrapping code fence and guarantees a leading frontmatter delimiter.
func Normalize(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = openingFence.ReplaceAllString(cleaned, "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if !strings.HasPrefix(cleaned, delimiter+"\n") {
		cleaned = delimiter + "\n" + cleaned
	}
	return cleaned
}

// Sections lists the level-two headings of a markdown body in order.
func Sections(body string) []string {
	html := blackfriday.Run([]byte(body))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	var sections []string
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			sections = append(sections, text)
		}
	})
	return sections
}

// MissingSections reports which expected headings do not appear in the body.
func MissingSections(body string, expected []string) []string {
	found := Sections(body)
	var missing []string
	for _, want := range expected {
		ok := false
		for _, got := range found {
			if strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
				ok = true
				break
			}
		}
		if !ok {
			missing = append(missing, want)
		}
	}
	return missing
}

// PlainText strips markup from an HTML or markdown-with-HTML fragment.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	lines := strings.Split(doc.Text(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// MarkdownText renders markdown and returns its readable text.
func MarkdownText(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	return PlainText(string(blackfriday.Run([]byte(md))))
}

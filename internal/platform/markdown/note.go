// Package markdown edits notes made of YAML frontmatter and a markdown body
// that may hold generated blocks fenced by HTML comments.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fence      = "---\n"
	closeFence = "\n---\n"
)

type Note struct {
	Meta map[string]any
	Body string
}

// Parse splits content into frontmatter and body. Content without a leading
// fence is all body.
func Parse(content string) (Note, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fence) {
		return Note{Meta: map[string]any{}, Body: content}, nil
	}
	rest := content[len(fence):]
	idx := strings.Index(rest, closeFence)
	if idx < 0 {
		return Note{}, fmt.Errorf("invalid frontmatter: missing closing fence")
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Note{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	return Note{Meta: meta, Body: rest[idx+len(closeFence):]}, nil
}

func (n Note) Render() (string, error) {
	meta := n.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	if !strings.HasPrefix(n.Body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(n.Body)
	return buf.String(), nil
}

func blockMarkers(name string) (string, string) {
	return "<!-- worktrack:" + name + ":start -->", "<!-- worktrack:" + name + ":end -->"
}

// Block returns the generated content of the named block.
func (n Note) Block(name string) (string, bool) {
	start, end := blockMarkers(name)
	i := strings.Index(n.Body, start)
	j := strings.Index(n.Body, end)
	if i < 0 || j < i {
		return "", false
	}
	return strings.Trim(n.Body[i+len(start):j], "\n"), true
}

// SetBlock replaces the named block in place, or appends it after a blank
// line when the body has none.
func (n *Note) SetBlock(name, generated string) {
	start, end := blockMarkers(name)
	block := start + "\n" + generated + "\n" + end

	i := strings.Index(n.Body, start)
	j := strings.Index(n.Body, end)
	if i >= 0 && j > i {
		n.Body = n.Body[:i] + block + n.Body[j+len(end):]
		return
	}
	switch body := strings.TrimRight(n.Body, "\n"); {
	case strings.TrimSpace(body) == "":
		n.Body = block + "\n"
	default:
		n.Body = body + "\n\n" + block + "\n"
	}
}

var tagRunes = regexp.MustCompile(`[^a-z0-9]+`)

// Tag turns s into a lowercase, hyphenated frontmatter tag.
func Tag(s string) string {
	t := strings.Trim(tagRunes.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if t == "" {
		return "untagged"
	}
	return t
}

package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Template is a message template file split into YAML frontmatter and body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// Subject returns the subject template declared in frontmatter under "subject" (any case).
func (t *Template) Subject() string {
	for k, v := range t.Metadata {
		if !strings.EqualFold(k, "subject") {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ParseTemplate splits template file content into frontmatter metadata and body.
// Content without a leading "---" line is returned as body with empty metadata.
func ParseTemplate(content []byte) (*Template, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	first, rest, found := cutLine(content)
	if !found && len(rest) == 0 && string(bytes.TrimSpace(first)) == frontmatterDelimiter {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}
	if string(bytes.TrimRight(first, " \t")) != frontmatterDelimiter {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	var head bytes.Buffer
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		if string(bytes.TrimRight(line, " \t")) == frontmatterDelimiter {
			metadata, err := parseFrontmatter(head.Bytes())
			if err != nil {
				return nil, err
			}
			return &Template{Metadata: metadata, Body: string(rest)}, nil
		}
		head.Write(line)
		head.WriteByte('\n')
	}

	return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
}

func parseFrontmatter(raw []byte) (map[string]any, error) {
	metadata := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return metadata, nil
	}
	if err := yaml.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	return metadata, nil
}

// cutLine returns the first line without its terminator (\n or \r\n) and the remainder.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

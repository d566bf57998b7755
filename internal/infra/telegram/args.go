package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	errBadJobFormat = fmt.Errorf("expected: <título> | <instituição> | <tag1, tag2>")
	errNotANumber   = fmt.Errorf("not a number")
)

// parseTagList splits "a, b; c" into tags. Blank items are dropped; casing
// is left to the scorer.
func parseTagList(payload string) []string {
	fields := strings.FieldsFunc(payload, func(r rune) bool { return r == ',' || r == ';' })
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}

// parseJobPayload parses "<title> | <institution> | <tags>". Institution and
// tags are optional.
func parseJobPayload(payload string) (title, institution string, tags []string, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) > 3 {
		return "", "", nil, errBadJobFormat
	}
	title = strings.TrimSpace(parts[0])
	if title == "" {
		return "", "", nil, errBadJobFormat
	}
	if len(parts) > 1 {
		institution = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		tags = parseTagList(parts[2])
	}
	return title, institution, tags, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return id, nil
}

func parseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errNotANumber
	}
	return v, nil
}

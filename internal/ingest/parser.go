package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	fencedJSONBlock = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedBlock     = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ExtractJSONArray finds the JSON array in a model answer. A fenced code block
// wins (```json first, then any ```), then the first balanced [...] that is
// valid JSON (preferring one that holds objects), then the span from the first '[' to the last ']'. If none of
// these apply the text is returned as is.
func ExtractJSONArray(text string) string {
	body := text
	if m := fencedJSONBlock.FindStringSubmatch(text); m != nil {
		body = m[1]
	} else if m := fencedBlock.FindStringSubmatch(text); m != nil {
		body = m[1]
	}

	if s, ok := firstBalancedArray(body); ok {
		return s
	}

	first := strings.Index(body, "[")
	last := strings.LastIndex(body, "]")
	if first != -1 && last > first {
		return body[first : last+1]
	}
	return strings.TrimSpace(body)
}

// firstBalancedArray returns the first outermost balanced [...] that parses as
// JSON and holds at least one object, so citation markers like [1] in the
// surrounding prose are passed over. Failing that it returns the first one
// that parses at all. Brackets inside strings are ignored.
func firstBalancedArray(s string) (string, bool) {
	var fallback string
	for start := strings.Index(s, "["); start != -1; {
		if end, ok := matchBracket(s, start); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				if holdsObject(candidate) {
					return candidate, true
				}
				if fallback == "" {
					fallback = candidate
				}
			}
		}
		next := strings.Index(s[start+1:], "[")
		if next == -1 {
			break
		}
		start += next + 1
	}
	return fallback, fallback != ""
}

func holdsObject(array string) bool {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(array), &items); err != nil {
		return false
	}
	for _, item := range items {
		if t := bytes.TrimSpace(item); len(t) > 0 && t[0] == '{' {
			return true
		}
	}
	return false
}

func matchBracket(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' && inString {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if char == '[' {
				depth++
			} else if char == ']' {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// ParseCandidates decodes a model answer into raw candidates. Array entries that
// are not objects are skipped. An answer without a decodable array is an error.
func ParseCandidates(text string) ([]RawCandidate, error) {
	payload := ExtractJSONArray(text)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode candidate array: %w", err)
	}

	out := make([]RawCandidate, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		out = append(out, candidateFromMap(fields))
	}
	return out, nil
}

func candidateFromMap(m map[string]any) RawCandidate {
	c := RawCandidate{
		Title:        lookupString(m, "title", "name"),
		Organization: lookupString(m, "organization", "organisation", "org", "organizer", "provider"),
		Type:         lookupString(m, "type", "category", "opportunityType", "opportunity_type"),
		Description:  lookupString(m, "description", "summary", "shortDescription", "short_description"),
		Content:      lookupString(m, "content", "fullContent", "full_content", "body"),
		Amount:       lookupString(m, "amount", "benefit", "amountBenefit", "amount_benefit", "funding"),
		Deadline:     lookupString(m, "deadline", "deadlineLabel", "deadline_label"),
		DeadlineDate: lookupString(m, "deadlineDate", "deadline_date", "deadlineIso", "deadline_iso"),
		Tags:         lookupStrings(m, "tags", "categories", "keywords"),
		ImageURL:     lookupString(m, "imageUrl", "image_url", "image"),
		SourceName:   lookupString(m, "sourceName", "source_name"),
		SourceURL:    lookupString(m, "sourceUrl", "source_url", "url", "link", "originalUrl", "original_url"),
		MatchScore:   lookupNumber(m, "matchScore", "match_score"),
		IsUrgent:     lookupBool(m, "isUrgent", "is_urgent"),
	}

	switch src := m["source"].(type) {
	case map[string]any:
		if c.SourceName == "" {
			c.SourceName = lookupString(src, "name", "title")
		}
		if c.SourceURL == "" {
			c.SourceURL = lookupString(src, "url", "uri", "link")
		}
	case string:
		src = strings.TrimSpace(src)
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			if c.SourceURL == "" {
				c.SourceURL = src
			}
		} else if c.SourceName == "" {
			c.SourceName = src
		}
	}
	return c
}

func lookupString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := scalarString(m[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}

func lookupStrings(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		var out []string
		switch val := m[k].(type) {
		case []any:
			for _, item := range val {
				if s, ok := scalarString(item); ok {
					out = appendUnique(out, s)
				}
			}
		case string:
			for _, part := range strings.Split(val, ",") {
				out = appendUnique(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func lookupNumber(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch val := m[k].(type) {
		case float64:
			return &val
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func lookupBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch val := m[k].(type) {
		case bool:
			return val
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				return b
			}
		}
	}
	return false
}

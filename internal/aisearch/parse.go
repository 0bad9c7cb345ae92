package aisearch

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseIDs decodes the model reply. Anything other than a JSON array of
// strings, optionally wrapped in a markdown code fence, yields an empty
// slice.
func ParseIDs(text string) []string {
	text = stripFence(strings.TrimSpace(text))
	if !strings.HasPrefix(text, "[") {
		return []string{}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var ids []string
	if err := dec.Decode(&ids); err != nil || ids == nil {
		return []string{}
	}
	// Trailing content after the array is a schema violation too.
	if dec.More() {
		return []string{}
	}
	return ids
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// Drop the info string, e.g. "json".
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// keepKnown filters ids to the submitted candidates, dropping duplicates
// and keeping the model's order.
func keepKnown(ids []string, known map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

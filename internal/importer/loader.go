// Package importer loads bookmarks from a YAML file into the store.
//
// Two layouts are understood: a flat list of {url, title} pairs, and the
// bookmarks.yaml of the Homepage dashboard.
package importer

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a file holds no usable bookmark.
var ErrEmpty = errors.New("no bookmarks found")

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Load reads and parses the file at path.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}
	return Parse(data)
}

// Parse decodes either layout. Homepage template variables
// ({{HOMEPAGE_VAR_...}}) are blanked, so entries that depend on them are skipped.
func Parse(data []byte) ([]Entry, error) {
	data = templateVar.ReplaceAll(data, []byte(`""`))

	entries, err := parseFlat(data)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if entries, err = parseHomepage(data); err != nil {
			return nil, err
		}
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return entries, nil
}

// parseFlat returns nothing, without error, for a Homepage file: its items
// carry no url key.
func parseFlat(data []byte) ([]Entry, error) {
	var raw []Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks yaml: %w", err)
	}
	out := make([]Entry, 0, len(raw))
	for _, e := range raw {
		url := strings.TrimSpace(e.URL)
		if url == "" {
			continue
		}
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = url
		}
		out = append(out, Entry{URL: url, Title: title})
	}
	return out, nil
}

func parseHomepage(data []byte) ([]Entry, error) {
	var cfg homepageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse homepage bookmarks yaml: %w", err)
	}

	var out []Entry
	for _, category := range cfg {
		// One key per category in practice; sorted so output is stable anyway.
		for _, name := range sortedKeys(category) {
			for _, group := range category[name] {
				for _, label := range sortedKeys(group) {
					list := group[label]
					if len(list) == 0 || strings.TrimSpace(list[0].Href) == "" {
						continue
					}
					title := strings.TrimSpace(label)
					if title == "" {
						title = list[0].Abbr
					}
					out = append(out, Entry{URL: strings.TrimSpace(list[0].Href), Title: title})
				}
			}
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package ingestion

import (
	"slices"
	"strings"

	"github.com/poiesic/rankit/core"
)

// TagByTheme assigns themes to a record. A theme matches when any of its
// tags appears in the lower-cased title and description; the theme name is
// added to Themes and the matching tags to Tags. Existing tags and themes are
// kept, duplicates are not added. Reports whether any theme matched.
func TagByTheme(record *core.Record, themes []*core.Theme) bool {
	text := strings.ToLower(record.Title + " " + record.Description)
	matched := false
	for _, theme := range themes {
		var hits []string
		for _, tag := range theme.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" && strings.Contains(text, tag) {
				hits = append(hits, tag)
			}
		}
		if len(hits) == 0 {
			continue
		}
		matched = true
		record.Themes = appendMissing(record.Themes, theme.Name)
		record.Tags = appendMissing(record.Tags, hits...)
	}
	return matched
}

func appendMissing(list []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

package aisearch

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// BuildPrompt renders the instruction sent to the model. Candidates are
// numbered from 1 in the order given.
func BuildPrompt(query string, candidates []domain.Candidate) string {
	var list strings.Builder
	for i, c := range candidates {
		if i > 0 {
			list.WriteByte('\n')
		}
		fmt.Fprintf(&list, "%d. [%s] %q — %s", i+1, c.ID, c.Title, c.URL)
	}

	return fmt.Sprintf(`
You are a bookmark search assistant.

Bookmarks:
%s

User query:
%q

Return ONLY a JSON array of bookmark IDs that match.
If nothing matches, return [].
`, list.String(), query)
}

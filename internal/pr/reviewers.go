package pr

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/capstanhq/capstan/internal/config"
)

// ResolveReviewers merges the default reviewers with every path rule whose
// glob matches a changed file. Handles are deduplicated, stripped of a
// leading @ and returned sorted. Invalid patterns are skipped.
func ResolveReviewers(changedFiles []string, cfg config.ReviewerConfig) []string {
	set := make(map[string]bool)

	for _, r := range cfg.Default {
		set[normalizeReviewer(r)] = true
	}

	for pattern, reviewers := range cfg.ByPath {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		for _, file := range changedFiles {
			if g.Match(file) {
				for _, r := range reviewers {
					set[normalizeReviewer(r)] = true
				}
				break
			}
		}
	}

	result := make([]string, 0, len(set))
	for r := range set {
		result = append(result, r)
	}
	sort.Strings(result)
	return result
}

// normalizeReviewer removes the @ prefix from a reviewer handle.
func normalizeReviewer(reviewer string) string {
	return strings.TrimPrefix(reviewer, "@")
}

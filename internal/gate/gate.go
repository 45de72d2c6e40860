// Package gate classifies raw SQL text against the mutation denylist. It is
// a coarse safety net, not a parser: the keywords are matched as whole words
// anywhere in the statement, so a DELETE inside a subquery or CTE is denied
// too. It deliberately over-blocks rather than under-blocks.
package gate

import (
	"regexp"
	"strings"
)

var denylist = regexp.MustCompile(`(?i)\b(DELETE|DROP|UPDATE)\b`)

// Decision is the outcome of classifying one statement.
type Decision struct {
	Allowed bool
	// Keywords lists the denylisted keywords that matched, uppercased and
	// deduplicated in order of first appearance. Empty when Allowed.
	Keywords []string
}

// Classify scans sql for denylisted statement keywords. It is pure and must
// run before the connection is touched; a denied statement never reaches the
// engine.
func Classify(sql string) Decision {
	matches := denylist.FindAllString(sql, -1)
	if len(matches) == 0 {
		return Decision{Allowed: true}
	}

	seen := make(map[string]struct{}, len(matches))
	keywords := make([]string, 0, len(matches))
	for _, match := range matches {
		keyword := strings.ToUpper(match)
		if _, ok := seen[keyword]; ok {
			continue
		}
		seen[keyword] = struct{}{}
		keywords = append(keywords, keyword)
	}
	return Decision{Keywords: keywords}
}

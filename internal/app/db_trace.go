package app

import (
	"regexp"
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// batched table inserts repeat one placeholder tuple per row.
	queryValuesTupleRegex = regexp.MustCompile(`\((?:\$\d+|\?)(?:,\s*(?:\$\d+|\?))*\)`)
)

// formatDBQueryForTrace collapses whitespace and folds multi-row VALUES lists
// so batch inserts stay readable in span attributes.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if i := strings.Index(strings.ToUpper(normalized), " VALUES "); i >= 0 {
		head, tail := normalized[:i], normalized[i:]
		if tuples := queryValuesTupleRegex.FindAllStringIndex(tail, -1); len(tuples) > 1 {
			first, last := tuples[0], tuples[len(tuples)-1]
			normalized = head + tail[:first[1]] + " /* +" + strconv.Itoa(len(tuples)-1) + " rows */" + tail[last[1]:]
		}
	}
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

package policy

import (
	"strings"
	"time"
)

// Rule is one allow/disallow declaration from a robots.txt group.
// Rules keep their declaration order; order breaks prefix-length ties.
type Rule struct {
	// Path is the path prefix the rule applies to.
	Path string

	// Allow is true for Allow rules, false for Disallow rules.
	Allow bool
}

// Record holds the parsed crawl policy for one domain.
// Records are immutable after parsing and shared read-only.
type Record struct {
	// Rules are the allow/disallow rules for the matched user-agent
	// group, in declaration order.
	Rules []Rule

	// CrawlDelay is the declared crawl-delay, 0 if none was declared.
	CrawlDelay time.Duration

	// FetchedAt is when the robots.txt was retrieved.
	FetchedAt time.Time
}

// PathAllowed evaluates the rules against a URL path.
// The longest matching path prefix wins; among rules with equally long
// prefixes, the first declared wins. A path matched by no rule is
// allowed.
func (r *Record) PathAllowed(path string) bool {
	if path == "" {
		path = "/"
	}

	bestLen := -1
	allowed := true
	for _, rule := range r.Rules {
		if rule.Path == "" {
			continue
		}
		if !strings.HasPrefix(path, rule.Path) {
			continue
		}
		// Strictly longer prefixes win; equal length keeps the earlier rule.
		if len(rule.Path) > bestLen {
			bestLen = len(rule.Path)
			allowed = rule.Allow
		}
	}
	return allowed
}

package policy

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseRobots parses a robots.txt document and returns the record for
// the given user-agent product token (e.g. "clearseek").
//
// Group selection follows the de facto standard: the group whose
// user-agent line matches our token (case-insensitive substring) is
// preferred over the wildcard "*" group. Rules from the selected group
// keep their declaration order.
//
// Parsing is tolerant: unknown directives and malformed lines are
// ignored rather than failing, since real-world robots.txt files are
// full of both.
func ParseRobots(r io.Reader, agentToken string) *Record {
	agentToken = strings.ToLower(agentToken)

	type group struct {
		agents []string
		rules  []Rule
		delay  time.Duration
	}

	var groups []*group
	var current *group
	// A user-agent line after rules starts a new group; consecutive
	// user-agent lines share one group.
	lastWasAgent := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if current == nil || !lastWasAgent {
				current = &group{}
				groups = append(groups, current)
			}
			current.agents = append(current.agents, strings.ToLower(value))
			lastWasAgent = true
		case "allow", "disallow":
			lastWasAgent = false
			if current == nil {
				continue
			}
			// An empty Disallow means "allow everything": no rule.
			if value == "" {
				continue
			}
			current.rules = append(current.rules, Rule{Path: value, Allow: key == "allow"})
		case "crawl-delay":
			lastWasAgent = false
			if current == nil {
				continue
			}
			if secs, err := strconv.ParseFloat(value, 64); err == nil && secs >= 0 {
				current.delay = time.Duration(secs * float64(time.Second))
			}
		default:
			lastWasAgent = false
		}
	}

	// Prefer the group naming our token, fall back to the wildcard.
	var wildcard *group
	for _, g := range groups {
		for _, a := range g.agents {
			if a == "*" {
				if wildcard == nil {
					wildcard = g
				}
				continue
			}
			if strings.Contains(agentToken, a) || strings.Contains(a, agentToken) {
				return &Record{Rules: g.rules, CrawlDelay: g.delay, FetchedAt: time.Now()}
			}
		}
	}
	if wildcard != nil {
		return &Record{Rules: wildcard.rules, CrawlDelay: wildcard.delay, FetchedAt: time.Now()}
	}
	return &Record{FetchedAt: time.Now()}
}

// Package policy enforces site-declared crawl permissions.
//
// The Gate is the single authority on whether a URL may be fetched and
// how fast its domain may be paced. It fetches each domain's robots.txt
// once, caches the parsed record for a bounded TTL, and answers
// authorization queries from the cache. No other component fetches
// content without passing through the gate first.
//
// Failure semantics are fail-open: a missing or unreadable robots.txt
// means no declared restrictions, so the URL is allowed with a
// conservative pacing delay. Only an explicit disallow rule denies.
// This matches real-world robots semantics where absence of a rule
// means no restriction.
package policy

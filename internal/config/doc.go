// Package config defines the research session configuration.
//
// Configuration flows in one direction: CLI flags (and an optional YAML
// site-overrides file) populate a flat Config struct, Validate rejects
// contradictory settings before any crawling starts, and the struct is
// passed down by dependency injection. There is no global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, IndexConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
package config

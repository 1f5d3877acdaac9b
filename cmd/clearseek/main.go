// Package main provides the entry point for the clearseek CLI.
//
// clearseek is a bounded, politeness-aware research assistant: it
// crawls a site from a seed URL, indexes the text it finds, and
// answers questions from the resulting knowledge base.
//
// Usage:
//
//	clearseek research <seed-url>
//	clearseek query <question>
//
// See --help for all available options.
package main

// main is the entry point for clearseek.
func main() {
	Execute()
}

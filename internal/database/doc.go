// Package database persists session snapshots to SQLite: documents,
// link edges, and indexed chunks with their embedding vectors. A
// snapshot makes a session's knowledge base queryable after the
// process exits.
package database

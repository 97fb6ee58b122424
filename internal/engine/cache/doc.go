// Package cache keeps file-based snapshots of the first reminder page.
//
// A snapshot lets the list view start with stale-but-present rows while the
// first fetch is in flight. Each snapshot carries the ETag it was fetched
// with, so the follow-up request can revalidate it:
//   - Entries live as JSON files under <config dir>/cache/
//   - TTL defaults to one hour and is set through cache.ttl_seconds
//   - Keys are SHA256 hashes of the server and list query
//
// Only the first page of an unfiltered query is worth snapshotting: it is
// what the list view shows on startup.
package cache

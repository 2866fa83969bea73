// Package store provides SQLite-backed storage for natal charts.
//
// Charts are keyed by (name, birth date); the name is NFC-normalized before
// it is written so visually identical names collide. A case-folded copy of
// the name backs substring search.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Listings are ordered by case-folded name, then birth date, then id, so
// results are stable across runs.
package store

// Package service holds the command execution logic for litekv.
//
// KVService turns decoded commands into store operations and log appends.
// Storage dependencies are interfaces so the service can be tested
// without files:
//
//   - Store: the key-value map
//   - Log: the append-only log (optional)
//   - Observer: metrics hooks (optional)
//
// RateLimiterRegistry hands out per-client token buckets shared by every
// connection from the same client address.
package service

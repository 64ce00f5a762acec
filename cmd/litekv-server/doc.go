// Package main provides the entry point for litekv-server.
//
// litekv-server is a single-node in-memory key-value server speaking a
// Redis-compatible subset of RESP (SET with optional EX, GET, DEL, EXISTS).
// Mutations are recorded in an append-only log that is replayed at start.
//
// Usage:
//
//	litekv-server -config /etc/litekv/config.yaml
//	LITEKV_SERVER_REDIS_ADDR=0.0.0.0:6379 litekv-server
package main

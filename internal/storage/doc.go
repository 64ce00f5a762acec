// Package storage provides the storage engine for litekv.
//
// The engine owns the in-memory store and the append-only log:
//
//   - Memory store: one map behind one mutex, lazy TTL expiry
//   - AOF: SET/DEL frames, fsynced per append, replayed on Recover
//
// New opens the log but does not load it. Call Recover before serving
// traffic.
package storage

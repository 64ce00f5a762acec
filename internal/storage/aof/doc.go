// Package aof provides the append-only command log for litekv.
//
// The log is a plain concatenation of request frames in the wire format
// understood by internal/protocol/resp, in append order, with no header,
// checksum or record marker. Only SET and DEL are written.
//
// Every successful Append has been written and fsynced before it returns.
// Replay decodes frames with the same decoder the network path uses and
// stops at the first frame that is truncated or malformed, so a record torn
// by a crash mid-write is dropped rather than failing startup.
//
// A log that cannot be opened leaves the Writer disabled: Append returns
// false and the server keeps running in memory only.
package aof

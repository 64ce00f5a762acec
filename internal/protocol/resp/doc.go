// Package resp implements the litekv wire codec.
//
// Requests are RESP2 arrays of bulk strings:
//
//	*<N>\r\n$<L>\r\n<L bytes>\r\n ...
//
// Decode is a pure function over a byte slice. It never keeps state between
// calls, which lets the network path and the append-only log replay share it:
// the caller owns the buffer and decides what to do with the tri-state result.
//
// Replies are written with the Append* helpers (+OK, bulk, nil bulk,
// integer, -ERR).
package resp

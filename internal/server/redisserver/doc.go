// Package redisserver serves the key-value command set over RESP.
//
// Each TCP connection owns a Dispatcher that accumulates bytes, decodes
// every complete frame in order and writes the replies back. Supported
// commands are SET (with optional EX seconds), GET, DEL and EXISTS, one
// key per command.
//
// A malformed frame yields one "-ERR <reason>" reply and discards
// everything buffered on that connection; the connection stays open.
package redisserver

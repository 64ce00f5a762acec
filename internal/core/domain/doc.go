// Package domain defines the core domain models for litekv.
//
// Domain models are plain values without IO dependencies:
//
//   - Command: the closed set of requests the server understands
//   - Reply: the outcome of executing a command
//   - Errors: domain error codes shared by storage and server layers
package domain

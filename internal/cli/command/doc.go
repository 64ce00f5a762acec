// Package command defines the litekv-cli commands using urfave/cli/v2.
//
//   - root.go: App, global flags and config resolution
//   - kv.go: set, get, del, exists over RESP
//   - shell.go: interactive mode
//   - admin.go: info and health over the HTTP admin surface
//   - aof.go: offline log check and dump, rewrite, backup upload/download
//   - version.go: build information
package command

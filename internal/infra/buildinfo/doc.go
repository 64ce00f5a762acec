// Package buildinfo exposes version information injected via ldflags.
//
//	go build -ldflags "-X github.com/yndnr/litekv-go/internal/infra/buildinfo.Version=v0.3.0"
//
// Commit and GoVersion fall back to the module build info embedded by the
// Go toolchain when ldflags leave them unset.
package buildinfo

// Package connection talks to litekv-server on behalf of litekv-cli.
//
//   - resp.go: RESP client for data commands (SET, GET, DEL, EXISTS)
//   - http.go: HTTP client for the admin surface (/v1/info, /readyz, ...)
package connection

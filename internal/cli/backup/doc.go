// Package backup copies append-only logs to and from object storage.
//
// Uploads send only the valid prefix of a log, so a damaged tail never
// reaches the bucket. Downloads land in a temporary file that is checked
// with the same decoder the server replays with before it replaces the
// target.
package backup

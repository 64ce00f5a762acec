// Package output renders litekv-cli results.
//
// Data commands print replies the way redis-cli does (FormatReply). Admin
// and AOF commands print structured results through a Formatter chosen by
// --output: table, json or yaml.
package output

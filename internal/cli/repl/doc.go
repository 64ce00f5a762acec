// Package repl is the interactive mode of litekv-cli.
//
// Each input line is split into words (double and single quotes group
// words; inside double quotes \n, \r, \t, \\, \" and \xHH escapes are
// recognised) and sent to the server as one command. Replies are printed
// the way redis-cli prints them.
package repl

package repl

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errUnbalancedQuotes = errors.New("unbalanced quotes")
	errBadEscape        = errors.New("invalid escape sequence")
)

// SplitArgs splits a command line into words. Quoted sections may contain
// spaces, and an empty pair of quotes is an empty argument.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   byte
		escaped bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case escaped:
			escaped = false
			n, err := unescape(&cur, line, i)
			if err != nil {
				return nil, err
			}
			i = n
		case quote == '"' && ch == '\\':
			escaped = true
		case quote != 0 && ch == quote:
			quote = 0
		case quote != 0:
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'':
			quote = ch
			inWord = true
		case ch == ' ' || ch == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(ch)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, errUnbalancedQuotes
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

// unescape writes the escape starting at line[i] and returns the index of
// its last byte.
func unescape(b *strings.Builder, line string, i int) (int, error) {
	switch line[i] {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case '\\', '"':
		b.WriteByte(line[i])
	case 'x':
		if i+2 >= len(line) {
			return 0, errBadEscape
		}
		v, err := strconv.ParseUint(line[i+1:i+3], 16, 8)
		if err != nil {
			return 0, errBadEscape
		}
		b.WriteByte(byte(v))
		return i + 2, nil
	default:
		return 0, errBadEscape
	}
	return i, nil
}

package resp

import (
	"strconv"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// EncodeRequest returns the request frame for cmd.
func EncodeRequest(cmd domain.Command) []byte {
	return AppendRequest(nil, cmd)
}

// AppendRequest appends the request frame for cmd to dst.
//
// A SET carrying a TTL is always written with its EX option, including
// EX 0, so that decoding the frame yields the same command. Commands of
// unknown kind append nothing.
func AppendRequest(dst []byte, cmd domain.Command) []byte {
	switch cmd.Kind {
	case domain.KindSet:
		if cmd.TTL != nil {
			dst = appendArrayHeader(dst, 5)
			dst = appendBulkString(dst, "SET")
			dst = appendBulkString(dst, cmd.Key)
			dst = appendBulkString(dst, cmd.Value)
			dst = appendBulkString(dst, "EX")
			return appendBulkString(dst, strconv.FormatInt(*cmd.TTL, 10))
		}
		dst = appendArrayHeader(dst, 3)
		dst = appendBulkString(dst, "SET")
		dst = appendBulkString(dst, cmd.Key)
		return appendBulkString(dst, cmd.Value)
	case domain.KindGet, domain.KindDel, domain.KindExists:
		dst = appendArrayHeader(dst, 2)
		dst = appendBulkString(dst, cmd.Kind.String())
		return appendBulkString(dst, cmd.Key)
	default:
		return dst
	}
}

func appendArrayHeader(dst []byte, n int) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, '\r', '\n')
}

func appendBulkString(dst []byte, s string) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

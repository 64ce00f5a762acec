package resp

import (
	"strconv"
	"strings"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// AppendOK appends the simple-string reply +OK.
func AppendOK(dst []byte) []byte {
	return append(dst, "+OK\r\n"...)
}

// AppendBulk appends a bulk string reply.
func AppendBulk(dst []byte, v string) []byte {
	return appendBulkString(dst, v)
}

// AppendNil appends the nil bulk reply.
func AppendNil(dst []byte) []byte {
	return append(dst, "$-1\r\n"...)
}

// AppendInteger appends an integer reply.
func AppendInteger(dst []byte, n int64) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, '\r', '\n')
}

// AppendError appends "-ERR <msg>". CR and LF in msg are replaced with
// spaces so the reply stays one frame.
func AppendError(dst []byte, msg string) []byte {
	dst = append(dst, "-ERR "...)
	dst = append(dst, errorLineReplacer.Replace(msg)...)
	return append(dst, '\r', '\n')
}

var errorLineReplacer = strings.NewReplacer("\r", " ", "\n", " ")

// AppendReply appends the wire form of r.
func AppendReply(dst []byte, r domain.Reply) []byte {
	switch r.Kind {
	case domain.ReplyOK:
		return AppendOK(dst)
	case domain.ReplyBulk:
		return AppendBulk(dst, r.Bulk)
	case domain.ReplyNil:
		return AppendNil(dst)
	case domain.ReplyInteger:
		return AppendInteger(dst, r.Integer)
	default:
		return AppendError(dst, r.Message)
	}
}

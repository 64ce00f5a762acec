package domain

// ReplyKind identifies the shape of a reply frame.
type ReplyKind uint8

const (
	ReplyOK ReplyKind = iota
	ReplyBulk
	ReplyNil
	ReplyInteger
	ReplyError
)

// Reply is the outcome of executing a command, before wire encoding.
type Reply struct {
	Kind    ReplyKind
	Bulk    string
	Integer int64
	Message string
}

// OK is the reply for a successful SET.
func OK() Reply {
	return Reply{Kind: ReplyOK}
}

// Bulk is the reply for a GET hit.
func Bulk(v string) Reply {
	return Reply{Kind: ReplyBulk, Bulk: v}
}

// Nil is the reply for a GET miss.
func Nil() Reply {
	return Reply{Kind: ReplyNil}
}

// Bool is the integer reply used by DEL and EXISTS.
func Bool(b bool) Reply {
	if b {
		return Reply{Kind: ReplyInteger, Integer: 1}
	}
	return Reply{Kind: ReplyInteger, Integer: 0}
}

// Error is an error reply carrying msg verbatim.
func Error(msg string) Reply {
	return Reply{Kind: ReplyError, Message: msg}
}

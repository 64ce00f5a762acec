package domain

import "time"

// Kind identifies a command variant.
type Kind uint8

const (
	// KindUnknown is the zero value. The decoder never produces it.
	KindUnknown Kind = iota
	KindSet
	KindGet
	KindDel
	KindExists
)

// String returns the wire name of the command kind.
func (k Kind) String() string {
	switch k {
	case KindSet:
		return "SET"
	case KindGet:
		return "GET"
	case KindDel:
		return "DEL"
	case KindExists:
		return "EXISTS"
	default:
		return "UNKNOWN"
	}
}

// Command is a decoded, validated request.
//
// Value and TTL are only meaningful for KindSet. TTL is nil when the
// command carries no expiry; otherwise it points at a non-negative number
// of seconds.
type Command struct {
	Kind  Kind
	Key   string
	Value string
	TTL   *int64
}

// NewSet creates a SET command without expiry.
func NewSet(key, value string) Command {
	return Command{Kind: KindSet, Key: key, Value: value}
}

// NewSetEX creates a SET command that expires after seconds.
func NewSetEX(key, value string, seconds int64) Command {
	ttl := seconds
	return Command{Kind: KindSet, Key: key, Value: value, TTL: &ttl}
}

// NewGet creates a GET command.
func NewGet(key string) Command {
	return Command{Kind: KindGet, Key: key}
}

// NewDel creates a DEL command.
func NewDel(key string) Command {
	return Command{Kind: KindDel, Key: key}
}

// NewExists creates an EXISTS command.
func NewExists(key string) Command {
	return Command{Kind: KindExists, Key: key}
}

// IsMutating reports whether the command changes store state.
// Only mutating commands are written to the append-only log.
func (c Command) IsMutating() bool {
	return c.Kind == KindSet || c.Kind == KindDel
}

// HasTTL reports whether the command carries an expiry.
func (c Command) HasTTL() bool {
	return c.Kind == KindSet && c.TTL != nil
}

// Expiry returns the TTL as a duration, or nil when there is none.
func (c Command) Expiry() *time.Duration {
	if !c.HasTTL() {
		return nil
	}
	d := time.Duration(*c.TTL) * time.Second
	return &d
}

// Equal reports whether two commands are identical, comparing TTL by value.
func (c Command) Equal(o Command) bool {
	if c.Kind != o.Kind || c.Key != o.Key || c.Value != o.Value {
		return false
	}
	if (c.TTL == nil) != (o.TTL == nil) {
		return false
	}
	return c.TTL == nil || *c.TTL == *o.TTL
}

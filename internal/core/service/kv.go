package service

import (
	"time"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

// Store is the key-value map the service executes against.
type Store interface {
	Set(key, value string, ttl *time.Duration)
	Get(key string) (string, bool)
	Del(key string) bool
	Exists(key string) bool
}

// Log records mutating commands. Append reports whether the record is
// durable.
type Log interface {
	Append(cmd domain.Command) bool
}

// Observer receives execution events.
type Observer interface {
	ObserveCommand(kind domain.Kind, reply domain.Reply)
	ObserveAppend(kind domain.Kind, ok bool)
}

// KVService executes commands.
type KVService struct {
	store    Store
	log      Log
	observer Observer
}

// Option configures the KVService.
type Option func(*KVService)

// WithLog makes the service append SET and DEL to log.
func WithLog(log Log) Option {
	return func(s *KVService) {
		s.log = log
	}
}

// WithObserver registers execution hooks.
func WithObserver(o Observer) Option {
	return func(s *KVService) {
		s.observer = o
	}
}

// NewKVService creates a service over store.
func NewKVService(store Store, opts ...Option) *KVService {
	s := &KVService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs cmd and returns its reply.
//
// For SET and DEL the store is mutated first and the log append follows in
// a separate critical section. A failed append does not change the reply:
// the mutation is already visible and the log reports its own failure.
func (s *KVService) Execute(cmd domain.Command) domain.Reply {
	var reply domain.Reply

	switch cmd.Kind {
	case domain.KindSet:
		s.store.Set(cmd.Key, cmd.Value, cmd.Expiry())
		reply = domain.OK()
	case domain.KindGet:
		if v, ok := s.store.Get(cmd.Key); ok {
			reply = domain.Bulk(v)
		} else {
			reply = domain.Nil()
		}
	case domain.KindDel:
		reply = domain.Bool(s.store.Del(cmd.Key))
	case domain.KindExists:
		reply = domain.Bool(s.store.Exists(cmd.Key))
	default:
		reply = domain.Error("Unknown command")
	}

	if cmd.IsMutating() && s.log != nil {
		ok := s.log.Append(cmd)
		if s.observer != nil {
			s.observer.ObserveAppend(cmd.Kind, ok)
		}
	}
	if s.observer != nil {
		s.observer.ObserveCommand(cmd.Kind, reply)
	}
	return reply
}

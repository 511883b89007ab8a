package httpserver

import (
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appchat "github.com/bryanwahyu/fraudshield/internal/application/chat"
	"github.com/bryanwahyu/fraudshield/internal/metrics"
)

var errSessionNotFound = errors.New("chat session not found")

// SessionRegistry holds live chat sessions per tenant. It is bounded in size
// and every entry expires after ttl.
type SessionRegistry struct {
	cache *expirable.LRU[string, *appchat.Session]
}

func NewSessionRegistry(size int, ttl time.Duration) *SessionRegistry {
	onEvict := func(string, *appchat.Session) { metrics.ChatSessions.Dec() }
	return &SessionRegistry{cache: expirable.NewLRU[string, *appchat.Session](size, onEvict, ttl)}
}

func sessionKey(tenant, id string) string { return tenant + "/" + id }

func (s *SessionRegistry) Put(tenant string, sess *appchat.Session) {
	s.cache.Add(sessionKey(tenant, sess.ID), sess)
	metrics.ChatSessions.Inc()
}

func (s *SessionRegistry) Get(tenant, id string) (*appchat.Session, error) {
	sess, ok := s.cache.Get(sessionKey(tenant, id))
	if !ok {
		return nil, errSessionNotFound
	}
	return sess, nil
}

func (s *SessionRegistry) Remove(tenant, id string) bool {
	return s.cache.Remove(sessionKey(tenant, id))
}

func (s *SessionRegistry) Len() int { return s.cache.Len() }

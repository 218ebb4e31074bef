package utils

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cjy-OIer/blog/models"
)

const (
	sessionKeyPrefix  = "memorial:session:"
	flashKeyPrefix    = "memorial:flash:"
	defaultSessionTTL = 24 * time.Hour
	redisOpTimeout    = 2 * time.Second
)

type memEntry struct {
	session   models.VisitorSession
	flash     *models.Toast
	expiresAt time.Time
}

// SessionStore keeps visitor sessions and their one-shot flash notices.
// Redis is preferred; with a nil client everything lives in memory (single instance only).
type SessionStore struct {
	rc  *redis.Client
	ttl time.Duration
	now func() time.Time

	mu  sync.Mutex
	mem map[string]*memEntry
}

// NewSessionStore creates a store. rc may be nil.
func NewSessionStore(rc *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{rc: rc, ttl: ttl, now: time.Now, mem: map[string]*memEntry{}}
}

// Backend names the active storage, for logs and health output.
func (s *SessionStore) Backend() string {
	if s.rc != nil {
		return "redis"
	}
	return "memory"
}

// Load returns the session for id, or a fresh one when none is stored.
func (s *SessionStore) Load(ctx context.Context, id string) (models.VisitorSession, error) {
	var sess models.VisitorSession
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		b, err := s.rc.Get(ctx, sessionKeyPrefix+id).Bytes()
		if errors.Is(err, redis.Nil) {
			return sess, nil
		}
		if err != nil {
			return sess, err
		}
		err = json.Unmarshal(b, &sess)
		return sess, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.mem[id]; ok && s.now().Before(e.expiresAt) {
		sess = e.session
		sess.Candles = append([]models.Candle(nil), e.session.Candles...)
	}
	return sess, nil
}

// Save stores the session and refreshes its idle expiry.
func (s *SessionStore) Save(ctx context.Context, id string, sess models.VisitorSession) error {
	if s.rc != nil {
		b, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		return s.rc.Set(ctx, sessionKeyPrefix+id, b, s.ttl).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(id)
	e.session = sess
	e.session.Candles = append([]models.Candle(nil), sess.Candles...)
	return nil
}

// PushFlash queues a notice for the visitor's next page. A newer notice replaces an unread one.
func (s *SessionStore) PushFlash(ctx context.Context, id string, t models.Toast) error {
	if s.rc != nil {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		return s.rc.Set(ctx, flashKeyPrefix+id, b, s.ttl).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(id)
	e.flash = &t
	return nil
}

// PopFlash returns and removes the pending notice, if any.
func (s *SessionStore) PopFlash(ctx context.Context, id string) (models.Toast, bool) {
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		b, err := s.rc.GetDel(ctx, flashKeyPrefix+id).Bytes()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				Sugar.Warnf("pop flash failed id=%s err=%v", id, err)
			}
			return models.Toast{}, false
		}
		var t models.Toast
		if err := json.Unmarshal(b, &t); err != nil {
			return models.Toast{}, false
		}
		return t, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.mem[id]
	if !ok || e.flash == nil || !s.now().Before(e.expiresAt) {
		return models.Toast{}, false
	}
	t := *e.flash
	e.flash = nil
	return t, true
}

// PurgeExpired drops idle in-memory sessions and reports how many went.
// Redis expires keys on its own.
func (s *SessionStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.mem {
		if !now.Before(e.expiresAt) {
			delete(s.mem, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) entryLocked(id string) *memEntry {
	e, ok := s.mem[id]
	if !ok || !s.now().Before(e.expiresAt) {
		e = &memEntry{}
		s.mem[id] = e
	}
	e.expiresAt = s.now().Add(s.ttl)
	return e
}

package store

import (
	"sync"
	"time"
)

// Message is one turn of a chat transcript. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

type transcript struct {
	msgs      []Message
	updatedAt time.Time
}

// sweepEvery is how many appends pass between scans for idle transcripts.
const sweepEvery = 64

// MemoryStore keeps the recent transcript of each chat session. A transcript
// idle for longer than ttl is forgotten.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*transcript
	maxMessages int
	ttl         time.Duration
	appends     int
	now         func() time.Time
}

// NewMemoryStore keeps at most maxMessages per session (0 means unbounded)
// and expires sessions idle for ttl (0 means never).
func NewMemoryStore(maxMessages int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*transcript),
		maxMessages: maxMessages,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (m *MemoryStore) Append(sessionID string, msgs ...Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	t := m.liveLocked(sessionID, now)
	if t == nil {
		t = &transcript{}
		m.sessions[sessionID] = t
	}
	t.msgs = append(t.msgs, msgs...)
	if m.maxMessages > 0 && len(t.msgs) > m.maxMessages {
		t.msgs = append([]Message(nil), t.msgs[len(t.msgs)-m.maxMessages:]...)
	}
	t.updatedAt = now

	m.appends++
	if m.appends%sweepEvery == 0 {
		m.sweepLocked(now)
	}
}

// Get returns a copy of the session's transcript, oldest first.
func (m *MemoryStore) Get(sessionID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.liveLocked(sessionID, m.now())
	if t == nil {
		return []Message{}
	}
	return append([]Message(nil), t.msgs...)
}

func (m *MemoryStore) Clear(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Len reports how many sessions are held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) liveLocked(sessionID string, now time.Time) *transcript {
	t, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	if m.expired(t, now) {
		delete(m.sessions, sessionID)
		return nil
	}
	return t
}

func (m *MemoryStore) expired(t *transcript, now time.Time) bool {
	return m.ttl > 0 && now.Sub(t.updatedAt) > m.ttl
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for id, t := range m.sessions {
		if m.expired(t, now) {
			delete(m.sessions, id)
		}
	}
}

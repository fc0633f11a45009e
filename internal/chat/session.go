package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a session already has a question in flight.
	ErrBusy = errors.New("chat: a question is already being answered")
	// ErrUnknownSession is returned for ids that were never issued or were evicted.
	ErrUnknownSession = errors.New("chat: unknown session")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// maxMessages bounds one transcript; the greeting is always kept.
	maxMessages = 100
)

// Message is one transcript line.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type session struct {
	id       string
	messages []Message
	busy     bool
	lastUsed time.Time
}

// Sessions keeps in-memory transcripts for the chat widget. Nothing is
// persisted; a restart starts every guest over at the greeting.
type Sessions struct {
	relay    *Relay
	greeting string
	max      int

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewSessions creates a store holding at most max transcripts. Sessions
// with a question in flight are never evicted, so the store exceeds max
// only by the number of outstanding questions, and only until they finish.
func NewSessions(relay *Relay, greeting string, max int) *Sessions {
	if max <= 0 {
		max = 1000
	}
	return &Sessions{
		relay:    relay,
		greeting: greeting,
		max:      max,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Open returns the transcript for id, creating a fresh session (with a new
// id) when id is empty or unknown.
func (s *Sessions) Open(id string) (string, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.lastUsed = s.now()
		return sess.id, copyMessages(sess.messages)
	}
	sess := s.create()
	return sess.id, copyMessages(sess.messages)
}

// create must be called with s.mu held.
func (s *Sessions) create() *session {
	if len(s.sessions) >= s.max {
		s.evictOldest(len(s.sessions) - s.max + 1)
	}
	sess := &session{
		id:       uuid.NewString(),
		lastUsed: s.now(),
	}
	if s.greeting != "" {
		sess.messages = []Message{{Role: RoleAssistant, Text: s.greeting}}
	}
	s.sessions[sess.id] = sess
	return sess
}

func (s *Sessions) evictOldest(n int) {
	ids := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !sess.busy {
			ids = append(ids, sess)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].lastUsed.Before(ids[j].lastUsed) })
	for i := 0; i < n && i < len(ids); i++ {
		delete(s.sessions, ids[i].id)
	}
}

// Ask appends question and the relay's reply to the session transcript.
// Only one question per session may be outstanding.
func (s *Sessions) Ask(ctx context.Context, id, question string) (string, []Message, error) {
	_, reply, msgs, err := s.ask(ctx, id, question, false)
	return reply, msgs, err
}

// Submit is Ask for callers that hold a possibly stale id: an unknown or
// evicted id gets a fresh session under the same lock as the question, so
// eviction can never turn a submission into ErrUnknownSession. It returns
// the id the question was recorded under.
func (s *Sessions) Submit(ctx context.Context, id, question string) (string, string, []Message, error) {
	return s.ask(ctx, id, question, true)
}

func (s *Sessions) ask(ctx context.Context, id, question string, create bool) (string, string, []Message, error) {
	if strings.TrimSpace(question) == "" {
		return "", "", nil, ErrEmptyQuestion
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	switch {
	case !ok && create:
		sess = s.create()
	case !ok:
		s.mu.Unlock()
		return "", "", nil, ErrUnknownSession
	case sess.busy:
		s.mu.Unlock()
		return "", "", nil, ErrBusy
	}
	sess.busy = true
	sess.lastUsed = s.now()
	sess.messages = append(sess.messages, Message{Role: RoleUser, Text: question})
	s.mu.Unlock()

	reply := s.relay.Ask(ctx, question)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.busy = false
	sess.lastUsed = s.now()
	sess.messages = trim(append(sess.messages, Message{Role: RoleAssistant, Text: reply}))
	// Busy sessions are never evicted, so the store can overshoot max
	// while questions are in flight; shrink back once this one is done.
	if over := len(s.sessions) - s.max; over > 0 {
		s.evictOldest(over)
	}
	return sess.id, reply, copyMessages(sess.messages), nil
}

// Len reports how many sessions are held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func trim(msgs []Message) []Message {
	if len(msgs) <= maxMessages {
		return msgs
	}
	out := make([]Message, 0, maxMessages)
	out = append(out, msgs[0])
	return append(out, msgs[len(msgs)-maxMessages+1:]...)
}

func copyMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

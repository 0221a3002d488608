package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCredentialStore struct {
	mu       sync.Mutex
	record   *domain.CredentialRecord
	loadErr  error
	saveErr  error
	saves    int
	clears   int
	watchers []chan struct{}
}

func (s *fakeCredentialStore) Load(_ context.Context) (domain.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.CredentialRecord{}, s.loadErr
	}
	if s.record == nil {
		return domain.CredentialRecord{}, domain.ErrNoCredentials
	}
	return *s.record, nil
}

func (s *fakeCredentialStore) Save(_ context.Context, record domain.CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = &record
	s.saves++
	s.notifyLocked()
	return nil
}

func (s *fakeCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	s.clears++
	s.notifyLocked()
	return nil
}

func (s *fakeCredentialStore) Watch(_ context.Context) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 8)
	s.watchers = append(s.watchers, ch)
	return ch, nil
}

// setRecord mutates the store as an external process would, watchers
// included.
func (s *fakeCredentialStore) setRecord(record domain.CredentialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = &record
	s.notifyLocked()
}

func (s *fakeCredentialStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *fakeCredentialStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

func (s *fakeCredentialStore) current() *domain.CredentialRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	copied := *s.record
	return &copied
}

func (s *fakeCredentialStore) notifyLocked() {
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

type fakeAuthClient struct {
	mu          sync.Mutex
	loginRecord domain.CredentialRecord
	loginErr    error
	renewRecord domain.CredentialRecord
	renewErr    error
	renews      int
	logins      int
}

func (a *fakeAuthClient) Login(_ context.Context, _, _ string) (domain.CredentialRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logins++
	if a.loginErr != nil {
		return domain.CredentialRecord{}, a.loginErr
	}
	return a.loginRecord, nil
}

func (a *fakeAuthClient) Renew(_ context.Context, _ string) (domain.CredentialRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renews++
	if a.renewErr != nil {
		return domain.CredentialRecord{}, a.renewErr
	}
	return a.renewRecord, nil
}

func (a *fakeAuthClient) renewCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renews
}

type fakeConversationClient struct {
	mu            sync.Mutex
	clock         *fakeClock
	conversations []domain.Conversation
	messages      map[domain.ConversationID][]domain.Message
	nextID        int

	sendErr   error
	sendReply domain.Message

	creates int
	lists   int
	sends   int
	deletes int
}

func newFakeConversationClient(clock *fakeClock) *fakeConversationClient {
	return &fakeConversationClient{
		clock:    clock,
		messages: map[domain.ConversationID][]domain.Message{},
	}
}

func (c *fakeConversationClient) Create(_ context.Context, title string, kb domain.KnowledgeBaseID) (domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates++
	c.nextID++
	conv := domain.Conversation{
		ID:              domain.ConversationID(fmt.Sprintf("conv-%d", c.nextID)),
		Title:           title,
		KnowledgeBaseID: kb,
		Active:          true,
	}
	c.conversations = append(c.conversations, conv)
	return conv, nil
}

func (c *fakeConversationClient) List(_ context.Context) ([]domain.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists++
	out := make([]domain.Conversation, len(c.conversations))
	copy(out, c.conversations)
	return out, nil
}

func (c *fakeConversationClient) Delete(_ context.Context, id domain.ConversationID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	kept := c.conversations[:0]
	for _, conv := range c.conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	c.conversations = kept
	delete(c.messages, id)
	return nil
}

func (c *fakeConversationClient) ListMessages(_ context.Context, id domain.ConversationID) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.messages[id]))
	copy(out, c.messages[id])
	return out, nil
}

func (c *fakeConversationClient) SendMessage(_ context.Context, id domain.ConversationID, text string) (domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	if c.sendErr != nil {
		return domain.Message{}, c.sendErr
	}
	reply := c.sendReply
	if reply.ID == "" {
		c.nextID++
		at := c.clock.Now()
		reply = domain.Message{
			ID:        domain.MessageID(fmt.Sprintf("msg-%d", c.nextID)),
			Author:    domain.AuthorUser,
			Content:   text,
			Status:    domain.MessageSent,
			CreatedAt: at,
			UpdatedAt: at,
		}
	}
	reply.ConversationID = id
	c.messages[id] = append(c.messages[id], reply)
	return reply, nil
}

// setMessages replaces the server-side transcript for one conversation.
func (c *fakeConversationClient) setMessages(id domain.ConversationID, messages []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(messages))
	copy(out, messages)
	c.messages[id] = out
}

func (c *fakeConversationClient) sendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

func (c *fakeConversationClient) createCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates
}

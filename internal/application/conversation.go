package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/bnema/docbrain-cli/internal/ports"
)

// Cadence holds the graduated sync intervals: fastest while a reply is
// imminent, slower while the user is merely around, slowest for idle tabs.
type Cadence struct {
	Waiting time.Duration
	Active  time.Duration
	Idle    time.Duration
}

func DefaultCadence() Cadence {
	return Cadence{
		Waiting: 2 * time.Second,
		Active:  5 * time.Second,
		Idle:    15 * time.Second,
	}
}

func (c Cadence) valid() bool {
	return c.Waiting > 0 && c.Active > 0 && c.Idle > 0
}

// ConversationSnapshot is the engine state handed to renderers. Messages is
// a copy; mutating it does not affect the engine.
type ConversationSnapshot struct {
	ConversationID domain.ConversationID
	Messages       []domain.Message
	Waiting        bool
	PendingLatest  bool
}

type ConversationOption func(*ConversationService)

func WithCadence(c Cadence) ConversationOption {
	return func(s *ConversationService) {
		if c.valid() {
			s.cadence = c
		}
	}
}

func WithConversationLogger(logger *slog.Logger) ConversationOption {
	return func(s *ConversationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ConversationService keeps the local message collection of one knowledge
// base conversation consistent with server state over a poll-only channel.
// It owns the collection exclusively; renderers observe it through
// snapshots.
type ConversationService struct {
	client   ports.ConversationClient
	activity *ActivityTracker
	clock    ports.Clock
	logger   *slog.Logger
	cadence  Cadence

	knowledgeBase domain.KnowledgeBaseID
	title         string

	onChange       func(ConversationSnapshot)
	onScrollLatest func()

	mu            sync.Mutex
	conversation  domain.ConversationID
	messages      []domain.Message
	waiting       bool
	nearBottom    bool
	pendingLatest bool
	timer         *time.Timer
	running       bool
}

func NewConversationService(
	client ports.ConversationClient,
	activity *ActivityTracker,
	clock ports.Clock,
	kb domain.KnowledgeBaseID,
	title string,
	opts ...ConversationOption,
) *ConversationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if activity == nil {
		activity = NewActivityTracker(DefaultActivityWindow, clock)
	}

	s := &ConversationService{
		client:        client,
		activity:      activity,
		clock:         clock,
		logger:        slog.Default(),
		cadence:       DefaultCadence(),
		knowledgeBase: kb,
		title:         title,
		nearBottom:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetChangeHandler registers the callback invoked with a fresh snapshot
// after every state change. It may be called from timer goroutines.
func (s *ConversationService) SetChangeHandler(fn func(ConversationSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// SetScrollHandler registers the callback that asks the renderer to scroll
// to the latest message.
func (s *ConversationService) SetScrollHandler(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onScrollLatest = fn
}

// Start resolves or provisions the conversation, runs one sync, and begins
// the self-rescheduling sync loop. The loop arms one timer at a time and
// recomputes the next delay from current state on every tick.
func (s *ConversationService) Start(ctx context.Context) error {
	if _, err := s.ensureConversation(ctx); err != nil {
		return err
	}
	if err := s.Sync(ctx); err != nil {
		s.logger.Warn("initial conversation sync", "err", err)
	}

	s.mu.Lock()
	s.running = true
	s.armLocked(ctx)
	s.mu.Unlock()

	return nil
}

// Stop halts the sync loop and cancels the pending timer.
func (s *ConversationService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Send submits a user message. It rejects blank text and, while an
// assistant reply is outstanding, rejects further sends before any network
// call, so at most one assistant turn is ever in flight. The returned
// message is inserted optimistically and reconciled by later syncs.
func (s *ConversationService) Send(ctx context.Context, text string) (domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}

	s.mu.Lock()
	if s.waiting {
		s.mu.Unlock()
		return domain.Message{}, domain.ErrAssistantBusy
	}
	s.waiting = true
	s.mu.Unlock()

	id, err := s.ensureConversation(ctx)
	if err != nil {
		s.clearWaiting()
		return domain.Message{}, err
	}

	sent, err := s.client.SendMessage(ctx, id, text)
	if err != nil {
		// The input must not stay locked after a failed send.
		s.clearWaiting()
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}

	s.mu.Lock()
	s.insertLocked(sent)
	sortMessages(s.messages)
	scroll := s.onScrollLatest
	s.mu.Unlock()

	if scroll != nil {
		scroll()
	}
	s.notify()

	return sent, nil
}

// Sync fetches the canonical message list and reconciles it into local
// state. A fetch that completes after the conversation was reset is
// discarded rather than resurrecting stale messages.
func (s *ConversationService) Sync(ctx context.Context) error {
	s.mu.Lock()
	id := s.conversation
	s.mu.Unlock()
	if id == "" {
		return domain.ErrNoConversation
	}

	server, err := s.client.ListMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	s.mu.Lock()
	if s.conversation != id {
		s.mu.Unlock()
		return nil
	}
	s.messages = mergeMessages(s.messages, server)
	s.waiting = waitingForAssistant(s.messages)
	var scroll func()
	if s.nearBottom {
		s.pendingLatest = false
		scroll = s.onScrollLatest
	} else {
		s.pendingLatest = true
	}
	s.mu.Unlock()

	if scroll != nil {
		scroll()
	}
	s.notify()

	return nil
}

// IsWaitingForAssistant reports whether any assistant message is still in
// flight; it gates the input surface.
func (s *ConversationService) IsWaitingForAssistant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

// Messages returns a copy of the current ordered collection.
func (s *ConversationService) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMessages(s.messages)
}

func (s *ConversationService) Snapshot() ConversationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetNearBottom tells the engine whether the viewport sits within the
// near-bottom threshold. Away from the bottom, fresh data is absorbed
// silently and only the jump-to-latest affordance is surfaced.
func (s *ConversationService) SetNearBottom(near bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearBottom = near
	if near {
		s.pendingLatest = false
	}
}

// PendingLatest reports whether newer data arrived while the viewport was
// scrolled away from the bottom.
func (s *ConversationService) PendingLatest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLatest
}

// JumpToLatest scrolls to the newest message and runs one extra sync so the
// view is fresh at the moment of arrival.
func (s *ConversationService) JumpToLatest(ctx context.Context) {
	s.mu.Lock()
	s.nearBottom = true
	s.pendingLatest = false
	scroll := s.onScrollLatest
	s.mu.Unlock()

	if scroll != nil {
		scroll()
	}
	if err := s.Sync(ctx); err != nil && !errors.Is(err, domain.ErrNoConversation) {
		s.logger.Warn("sync on jump to latest", "err", err)
	}
}

// Reset deletes the active conversation and immediately provisions a
// replacement; the client is never left conversation-less.
func (s *ConversationService) Reset(ctx context.Context) error {
	s.mu.Lock()
	id := s.conversation
	s.mu.Unlock()
	if id == "" {
		return domain.ErrNoConversation
	}

	if err := s.client.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	s.mu.Lock()
	s.conversation = ""
	s.messages = nil
	s.waiting = false
	s.pendingLatest = false
	s.mu.Unlock()

	if _, err := s.ensureConversation(ctx); err != nil {
		return err
	}
	s.notify()

	return nil
}

// SyncInterval returns the delay before the next sync given current state.
func (s *ConversationService) SyncInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervalLocked()
}

func (s *ConversationService) intervalLocked() time.Duration {
	switch {
	case s.waiting:
		return s.cadence.Waiting
	case s.activity.IsActive():
		return s.cadence.Active
	default:
		return s.cadence.Idle
	}
}

func (s *ConversationService) armLocked(ctx context.Context) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.intervalLocked(), func() { s.tick(ctx) })
}

func (s *ConversationService) tick(ctx context.Context) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}
	if ctx.Err() != nil {
		s.Stop()
		return
	}

	if err := s.Sync(ctx); err != nil && !errors.Is(err, domain.ErrNoConversation) {
		// Transient failure: this tick is skipped, the next proceeds.
		s.logger.Warn("conversation sync", "err", err)
	}

	s.mu.Lock()
	if s.running {
		s.armLocked(ctx)
	}
	s.mu.Unlock()
}

// ensureConversation returns the active conversation id, attaching to an
// existing server-side conversation for this knowledge base or lazily
// creating one.
func (s *ConversationService) ensureConversation(ctx context.Context) (domain.ConversationID, error) {
	s.mu.Lock()
	id := s.conversation
	s.mu.Unlock()
	if id != "" {
		return id, nil
	}

	existing, err := s.client.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list conversations: %w", err)
	}
	for _, conv := range existing {
		if conv.KnowledgeBaseID == s.knowledgeBase {
			s.setConversation(conv.ID)
			return conv.ID, nil
		}
	}

	created, err := s.client.Create(ctx, s.title, s.knowledgeBase)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	s.setConversation(created.ID)

	return created.ID, nil
}

func (s *ConversationService) setConversation(id domain.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = id
}

func (s *ConversationService) clearWaiting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waiting = false
}

func (s *ConversationService) insertLocked(message domain.Message) {
	for _, existing := range s.messages {
		if existing.ID == message.ID {
			return
		}
	}
	s.messages = append(s.messages, message)
}

func (s *ConversationService) notify() {
	s.mu.Lock()
	handler := s.onChange
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if handler != nil {
		handler(snapshot)
	}
}

func (s *ConversationService) snapshotLocked() ConversationSnapshot {
	return ConversationSnapshot{
		ConversationID: s.conversation,
		Messages:       copyMessages(s.messages),
		Waiting:        s.waiting,
		PendingLatest:  s.pendingLatest,
	}
}

// mergeMessages reconciles a server snapshot into the local list. Known ids
// update in place only when the server copy differs and is not older than
// the local one, so a slow earlier fetch completing late cannot regress
// state. Unknown ids insert; locally inserted messages the server has not
// returned yet survive. The result is re-sorted for display.
func mergeMessages(local, server []domain.Message) []domain.Message {
	merged := make([]domain.Message, len(local))
	copy(merged, local)

	index := make(map[domain.MessageID]int, len(merged))
	for i, m := range merged {
		index[m.ID] = i
	}

	for _, incoming := range server {
		i, ok := index[incoming.ID]
		if !ok {
			index[incoming.ID] = len(merged)
			merged = append(merged, incoming)
			continue
		}
		current := merged[i]
		if incoming.UpdatedAt.Before(current.UpdatedAt) {
			// Out-of-order server snapshot.
			continue
		}
		if incoming.Status == current.Status &&
			incoming.Content == current.Content &&
			incoming.UpdatedAt.Equal(current.UpdatedAt) {
			continue
		}
		merged[i] = incoming
	}

	sortMessages(merged)
	return merged
}

func sortMessages(messages []domain.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Before(messages[j])
	})
}

func waitingForAssistant(messages []domain.Message) bool {
	for _, m := range messages {
		if m.Author == domain.AuthorAssistant && m.Status.InFlight() {
			return true
		}
	}
	return false
}

func copyMessages(messages []domain.Message) []domain.Message {
	out := make([]domain.Message, len(messages))
	copy(out, messages)
	return out
}

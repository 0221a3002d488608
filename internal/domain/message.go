package domain

import "time"

type MessageID string

type ConversationID string

type AuthorKind string

const (
	AuthorUser      AuthorKind = "USER"
	AuthorAssistant AuthorKind = "ASSISTANT"
)

type MessageStatus string

const (
	MessageReceived   MessageStatus = "RECEIVED"
	MessageProcessing MessageStatus = "PROCESSING"
	MessageSent       MessageStatus = "SENT"
	MessageFailed     MessageStatus = "FAILED"
)

func (s MessageStatus) Terminal() bool {
	return s == MessageSent || s == MessageFailed
}

// InFlight reports whether the server is still working on the message.
func (s MessageStatus) InFlight() bool {
	return s == MessageReceived || s == MessageProcessing
}

// Source is a retrieval chunk the assistant grounded its answer on.
type Source struct {
	DocumentID string
	Title      string
	Content    string
	ChunkIndex int
	Score      float64
}

type Message struct {
	ID             MessageID
	ConversationID ConversationID
	Author         AuthorKind
	Content        string
	Status         MessageStatus
	Sources        []Source
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderBucket is the coarse creation-time bucket used for display ordering.
// A user prompt and its assistant reply can carry timestamps jittered either
// way inside one bucket; the prompt must still render first.
const OrderBucket = time.Second

// Before reports whether m renders ahead of other: primary order is the
// coarse creation bucket, ties break USER before ASSISTANT, then raw
// timestamp, then ID for stability.
func (m Message) Before(other Message) bool {
	mb := m.CreatedAt.Truncate(OrderBucket)
	ob := other.CreatedAt.Truncate(OrderBucket)
	if !mb.Equal(ob) {
		return mb.Before(ob)
	}
	if m.Author != other.Author {
		return m.Author == AuthorUser
	}
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

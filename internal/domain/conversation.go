package domain

import "time"

type Conversation struct {
	ID              ConversationID
	Title           string
	KnowledgeBaseID KnowledgeBaseID
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type KnowledgeBaseID string

type KnowledgeBase struct {
	ID          KnowledgeBaseID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

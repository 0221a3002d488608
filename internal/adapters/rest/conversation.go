package rest

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type ConversationAPI struct {
	c *Client
}

type conversationSchema struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type sourceSchema struct {
	Score      float64 `json:"score"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
}

type messageSchema struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	ContentType    string         `json:"content_type"`
	Kind           string         `json:"kind"`
	ConversationID string         `json:"conversation_id"`
	Sources        []sourceSchema `json:"sources"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (a ConversationAPI) Create(ctx context.Context, title string, kb domain.KnowledgeBaseID) (domain.Conversation, error) {
	payload := map[string]string{
		"title":             title,
		"knowledge_base_id": string(kb),
	}

	var out conversationSchema
	if err := a.c.postJSON(ctx, "/conversations", payload, &out); err != nil {
		return domain.Conversation{}, err
	}

	return conversationFromSchema(out), nil
}

func (a ConversationAPI) List(ctx context.Context) ([]domain.Conversation, error) {
	var out []conversationSchema
	if err := a.c.getJSON(ctx, "/conversations", &out); err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, 0, len(out))
	for _, entry := range out {
		conversations = append(conversations, conversationFromSchema(entry))
	}

	return conversations, nil
}

func (a ConversationAPI) Delete(ctx context.Context, id domain.ConversationID) error {
	return a.c.delete(ctx, "/conversations/"+string(id))
}

func (a ConversationAPI) ListMessages(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	var out []messageSchema
	if err := a.c.getJSON(ctx, fmt.Sprintf("/conversations/%s/messages", id), &out); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(out))
	for _, entry := range out {
		messages = append(messages, messageFromSchema(entry))
	}

	return messages, nil
}

func (a ConversationAPI) SendMessage(ctx context.Context, id domain.ConversationID, text string) (domain.Message, error) {
	payload := map[string]string{
		"content":      text,
		"content_type": "TEXT",
	}

	var out messageSchema
	if err := a.c.postJSON(ctx, fmt.Sprintf("/conversations/%s/messages", id), payload, &out); err != nil {
		return domain.Message{}, err
	}

	return messageFromSchema(out), nil
}

func conversationFromSchema(entry conversationSchema) domain.Conversation {
	return domain.Conversation{
		ID:              domain.ConversationID(entry.ID),
		Title:           entry.Title,
		KnowledgeBaseID: domain.KnowledgeBaseID(entry.KnowledgeBaseID),
		Active:          entry.IsActive,
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
}

func messageFromSchema(entry messageSchema) domain.Message {
	var sources []domain.Source
	for _, src := range entry.Sources {
		sources = append(sources, domain.Source{
			DocumentID: src.DocumentID,
			Title:      src.Title,
			Content:    src.Content,
			ChunkIndex: src.ChunkIndex,
			Score:      src.Score,
		})
	}

	return domain.Message{
		ID:             domain.MessageID(entry.ID),
		ConversationID: domain.ConversationID(entry.ConversationID),
		Author:         domain.AuthorKind(entry.Kind),
		Content:        entry.Content,
		Status:         domain.MessageStatus(entry.Status),
		Sources:        sources,
		CreatedAt:      entry.CreatedAt,
		UpdatedAt:      entry.UpdatedAt,
	}
}

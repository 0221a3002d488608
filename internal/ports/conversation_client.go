package ports

import (
	"context"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type ConversationClient interface {
	Create(ctx context.Context, title string, kb domain.KnowledgeBaseID) (domain.Conversation, error)
	List(ctx context.Context) ([]domain.Conversation, error)
	Delete(ctx context.Context, id domain.ConversationID) error
	ListMessages(ctx context.Context, id domain.ConversationID) ([]domain.Message, error)
	SendMessage(ctx context.Context, id domain.ConversationID, text string) (domain.Message, error)
}

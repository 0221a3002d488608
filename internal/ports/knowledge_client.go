package ports

import (
	"context"
	"io"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type KnowledgeBaseClient interface {
	Create(ctx context.Context, name, description string) (domain.KnowledgeBase, error)
	List(ctx context.Context) ([]domain.KnowledgeBase, error)
	Get(ctx context.Context, id domain.KnowledgeBaseID) (domain.KnowledgeBase, error)
	Rename(ctx context.Context, id domain.KnowledgeBaseID, name string) (domain.KnowledgeBase, error)
	Delete(ctx context.Context, id domain.KnowledgeBaseID) error
}

type DocumentClient interface {
	Upload(ctx context.Context, kb domain.KnowledgeBaseID, filename string, r io.Reader) (domain.Document, error)
	List(ctx context.Context, kb domain.KnowledgeBaseID) ([]domain.Document, error)
	Status(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.TrackedResource, error)
	Retry(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.Document, error)
	Delete(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) error
}

type QuestionClient interface {
	Create(ctx context.Context, kb domain.KnowledgeBaseID, question, answer string) (domain.Question, error)
	List(ctx context.Context, kb domain.KnowledgeBaseID) ([]domain.Question, error)
	Status(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.TrackedResource, error)
	Retry(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.Question, error)
	BulkUpload(ctx context.Context, kb domain.KnowledgeBaseID, filename string, r io.Reader) (domain.BulkUploadReport, error)
}

type UserClient interface {
	Current(ctx context.Context) (domain.User, error)
}

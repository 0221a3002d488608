package rest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type DocumentAPI struct {
	c *Client
}

type documentSchema struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	FileType        string    `json:"file_type"`
	SizeBytes       int64     `json:"size_bytes"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	ProcessedChunks int       `json:"processed_chunks"`
	Summary         string    `json:"summary"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (a DocumentAPI) Upload(ctx context.Context, kb domain.KnowledgeBaseID, filename string, r io.Reader) (domain.Document, error) {
	var out documentSchema
	path := fmt.Sprintf("/knowledge-bases/%s/documents", kb)
	if err := a.c.upload(ctx, path, "file", filename, r, &out); err != nil {
		return domain.Document{}, err
	}

	return documentFromSchema(out), nil
}

func (a DocumentAPI) List(ctx context.Context, kb domain.KnowledgeBaseID) ([]domain.Document, error) {
	var out []documentSchema
	if err := a.c.getJSON(ctx, fmt.Sprintf("/knowledge-bases/%s/documents", kb), &out); err != nil {
		return nil, err
	}

	documents := make([]domain.Document, 0, len(out))
	for _, entry := range out {
		documents = append(documents, documentFromSchema(entry))
	}

	return documents, nil
}

func (a DocumentAPI) Status(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.TrackedResource, error) {
	var out documentSchema
	if err := a.c.getJSON(ctx, fmt.Sprintf("/knowledge-bases/%s/documents/%s", kb, id), &out); err != nil {
		return domain.TrackedResource{}, err
	}

	return documentFromSchema(out).Tracked(), nil
}

func (a DocumentAPI) Retry(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.Document, error) {
	var out documentSchema
	path := fmt.Sprintf("/knowledge-bases/%s/documents/%s/retry", kb, id)
	if err := a.c.postJSON(ctx, path, struct{}{}, &out); err != nil {
		return domain.Document{}, err
	}

	return documentFromSchema(out), nil
}

func (a DocumentAPI) Delete(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) error {
	return a.c.delete(ctx, fmt.Sprintf("/knowledge-bases/%s/documents/%s", kb, id))
}

func documentFromSchema(entry documentSchema) domain.Document {
	return domain.Document{
		ID:              domain.ResourceID(entry.ID),
		Title:           entry.Title,
		FileType:        entry.FileType,
		SizeBytes:       entry.SizeBytes,
		Status:          domain.ResourceStatus(entry.Status),
		ErrorMessage:    entry.ErrorMessage,
		KnowledgeBaseID: domain.KnowledgeBaseID(entry.KnowledgeBaseID),
		ProcessedChunks: entry.ProcessedChunks,
		Summary:         entry.Summary,
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
}

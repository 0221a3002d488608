package rest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type QuestionAPI struct {
	c *Client
}

type questionSchema struct {
	ID              string    `json:"id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type bulkUploadSchema struct {
	Submitted int `json:"submitted"`
	Failed    int `json:"failed"`
}

func (a QuestionAPI) Create(ctx context.Context, kb domain.KnowledgeBaseID, question, answer string) (domain.Question, error) {
	body := struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}{Question: question, Answer: answer}

	var out questionSchema
	if err := a.c.postJSON(ctx, fmt.Sprintf("/knowledge-bases/%s/questions", kb), body, &out); err != nil {
		return domain.Question{}, err
	}

	return questionFromSchema(out), nil
}

func (a QuestionAPI) List(ctx context.Context, kb domain.KnowledgeBaseID) ([]domain.Question, error) {
	var out []questionSchema
	if err := a.c.getJSON(ctx, fmt.Sprintf("/knowledge-bases/%s/questions", kb), &out); err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(out))
	for _, entry := range out {
		questions = append(questions, questionFromSchema(entry))
	}

	return questions, nil
}

func (a QuestionAPI) Status(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.TrackedResource, error) {
	var out questionSchema
	if err := a.c.getJSON(ctx, fmt.Sprintf("/knowledge-bases/%s/questions/%s", kb, id), &out); err != nil {
		return domain.TrackedResource{}, err
	}

	return questionFromSchema(out).Tracked(), nil
}

func (a QuestionAPI) Retry(ctx context.Context, kb domain.KnowledgeBaseID, id domain.ResourceID) (domain.Question, error) {
	var out questionSchema
	path := fmt.Sprintf("/knowledge-bases/%s/questions/%s/retry", kb, id)
	if err := a.c.postJSON(ctx, path, struct{}{}, &out); err != nil {
		return domain.Question{}, err
	}

	return questionFromSchema(out), nil
}

func (a QuestionAPI) BulkUpload(ctx context.Context, kb domain.KnowledgeBaseID, filename string, r io.Reader) (domain.BulkUploadReport, error) {
	var out bulkUploadSchema
	path := fmt.Sprintf("/knowledge-bases/%s/questions/bulk", kb)
	if err := a.c.upload(ctx, path, "file", filename, r, &out); err != nil {
		return domain.BulkUploadReport{}, err
	}

	return domain.BulkUploadReport{Submitted: out.Submitted, Failed: out.Failed}, nil
}

func questionFromSchema(entry questionSchema) domain.Question {
	return domain.Question{
		ID:              domain.ResourceID(entry.ID),
		Question:        entry.Question,
		Answer:          entry.Answer,
		Status:          domain.ResourceStatus(entry.Status),
		ErrorMessage:    entry.ErrorMessage,
		KnowledgeBaseID: domain.KnowledgeBaseID(entry.KnowledgeBaseID),
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
}

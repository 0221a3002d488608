package rest

import (
	"context"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type KnowledgeBaseAPI struct {
	c *Client
}

type UserAPI struct {
	c *Client
}

type knowledgeBaseSchema struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type userSchema struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (a KnowledgeBaseAPI) Create(ctx context.Context, name, description string) (domain.KnowledgeBase, error) {
	payload := map[string]string{"name": name, "description": description}

	var out knowledgeBaseSchema
	if err := a.c.postJSON(ctx, "/knowledge-bases", payload, &out); err != nil {
		return domain.KnowledgeBase{}, err
	}

	return knowledgeBaseFromSchema(out), nil
}

func (a KnowledgeBaseAPI) List(ctx context.Context) ([]domain.KnowledgeBase, error) {
	var out []knowledgeBaseSchema
	if err := a.c.getJSON(ctx, "/knowledge-bases", &out); err != nil {
		return nil, err
	}

	bases := make([]domain.KnowledgeBase, 0, len(out))
	for _, entry := range out {
		bases = append(bases, knowledgeBaseFromSchema(entry))
	}

	return bases, nil
}

func (a KnowledgeBaseAPI) Get(ctx context.Context, id domain.KnowledgeBaseID) (domain.KnowledgeBase, error) {
	var out knowledgeBaseSchema
	if err := a.c.getJSON(ctx, "/knowledge-bases/"+string(id), &out); err != nil {
		return domain.KnowledgeBase{}, err
	}

	return knowledgeBaseFromSchema(out), nil
}

func (a KnowledgeBaseAPI) Rename(ctx context.Context, id domain.KnowledgeBaseID, name string) (domain.KnowledgeBase, error) {
	payload := map[string]string{"name": name}

	var out knowledgeBaseSchema
	if err := a.c.putJSON(ctx, "/knowledge-bases/"+string(id), payload, &out); err != nil {
		return domain.KnowledgeBase{}, err
	}

	return knowledgeBaseFromSchema(out), nil
}

func (a KnowledgeBaseAPI) Delete(ctx context.Context, id domain.KnowledgeBaseID) error {
	return a.c.delete(ctx, "/knowledge-bases/"+string(id))
}

func (a UserAPI) Current(ctx context.Context) (domain.User, error) {
	var out userSchema
	if err := a.c.getJSON(ctx, "/users/me", &out); err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:        out.ID,
		Email:     out.Email,
		FullName:  out.FullName,
		Role:      domain.Role(out.Role),
		CreatedAt: out.CreatedAt,
	}, nil
}

func knowledgeBaseFromSchema(entry knowledgeBaseSchema) domain.KnowledgeBase {
	return domain.KnowledgeBase{
		ID:          domain.KnowledgeBaseID(entry.ID),
		Name:        entry.Name,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}

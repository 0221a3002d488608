// Package rest is the HTTP transport collaborator: it implements the client
// ports against the DocBrain REST surface and decorates every request with
// the stored access credential.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/bnema/docbrain-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	store   ports.CredentialStore
	now     func() time.Time
}

func NewClient(baseURL string, httpClient *http.Client, store ports.CredentialStore) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		store:   store,
		now:     time.Now,
	}
}

// The REST surface is split into one API value per collaborator port, all
// sharing the same underlying client.

func (c *Client) Auth() AuthAPI                    { return AuthAPI{c} }
func (c *Client) Conversations() ConversationAPI   { return ConversationAPI{c} }
func (c *Client) KnowledgeBases() KnowledgeBaseAPI { return KnowledgeBaseAPI{c} }
func (c *Client) Documents() DocumentAPI           { return DocumentAPI{c} }
func (c *Client) Questions() QuestionAPI           { return QuestionAPI{c} }
func (c *Client) Users() UserAPI                   { return UserAPI{c} }

var (
	_ ports.AuthClient          = AuthAPI{}
	_ ports.ConversationClient  = ConversationAPI{}
	_ ports.KnowledgeBaseClient = KnowledgeBaseAPI{}
	_ ports.DocumentClient      = DocumentAPI{}
	_ ports.QuestionClient      = QuestionAPI{}
	_ ports.UserClient          = UserAPI{}
)

type apiError struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.store != nil {
		record, err := c.store.Load(ctx)
		if err == nil && record.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+record.AccessToken)
		} else if err != nil && !errors.Is(err, domain.ErrNoCredentials) {
			return fmt.Errorf("load credentials: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrUnauthorized)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: %s", method, path, decodeError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) putJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPut, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

func (c *Client) postForm(ctx context.Context, path string, values url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create multipart field %q: %w", field, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read upload payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart payload: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType(), out)
}

func decodeError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	var payload apiError
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	return resp.Status
}

package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var restNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type staticStore struct {
	record domain.CredentialRecord
	err    error
}

func (s staticStore) Load(context.Context) (domain.CredentialRecord, error) {
	if s.err != nil {
		return domain.CredentialRecord{}, s.err
	}
	return s.record, nil
}

func (s staticStore) Save(context.Context, domain.CredentialRecord) error { return nil }
func (s staticStore) Clear(context.Context) error                         { return nil }
func (s staticStore) Watch(context.Context) (<-chan struct{}, error)      { return nil, nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, record domain.CredentialRecord) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, server.Client(), staticStore{record: record})
	client.now = func() time.Time { return restNow }
	return client
}

func TestClientAttachesBearerCredential(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}, domain.CredentialRecord{AccessToken: "token-123"})

	_, err := client.KnowledgeBases().List(context.Background())
	require.NoError(t, err)
}

func TestClientOmitsBearerWithoutCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, server.Client(), staticStore{err: domain.ErrNoCredentials})
	_, err := client.KnowledgeBases().List(context.Background())
	require.NoError(t, err)
}

func TestAuthLoginPostsPasswordGrantForm(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a@example.com", r.PostFormValue("username"))
		assert.Equal(t, "secret", r.PostFormValue("password"))

		_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer","expires_in":1800}`))
	}, domain.CredentialRecord{})

	record, err := client.Auth().Login(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at-1", record.AccessToken)
	assert.Equal(t, "rt-1", record.RefreshToken)
	assert.Equal(t, restNow.Add(30*time.Minute), record.ExpiresAt)
}

func TestAuthRenewDefaultsLifetime(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "rt-1", r.PostFormValue("refresh_token"))

		_, _ = w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-2","token_type":"bearer"}`))
	}, domain.CredentialRecord{})

	record, err := client.Auth().Renew(context.Background(), "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-2", record.AccessToken)
	assert.Equal(t, restNow.Add(time.Hour), record.ExpiresAt)
}

func TestClientMapsUnauthorized(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"invalid token"}`, http.StatusUnauthorized)
	}, domain.CredentialRecord{AccessToken: "stale"})

	_, err := client.Users().Current(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClientSurfacesErrorDetail(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"knowledge base not found"}`, http.StatusNotFound)
	}, domain.CredentialRecord{})

	_, err := client.KnowledgeBases().Get(context.Background(), "kb-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge base not found")
}

func TestConversationListMessagesDecodes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/conv-1/messages", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"m1","content":"hello","content_type":"TEXT","kind":"USER","conversation_id":"conv-1","status":"SENT","created_at":"2026-03-01T12:00:00Z","updated_at":"2026-03-01T12:00:00Z"},
			{"id":"m2","content":"an answer","content_type":"TEXT","kind":"ASSISTANT","conversation_id":"conv-1","status":"SENT","sources":[{"document_id":"d1","title":"Handbook","content":"chunk","chunk_index":3,"score":0.92}],"created_at":"2026-03-01T12:00:01Z","updated_at":"2026-03-01T12:00:02Z"}
		]`))
	}, domain.CredentialRecord{AccessToken: "token"})

	messages, err := client.Conversations().ListMessages(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, domain.AuthorUser, messages[0].Author)
	assert.Equal(t, domain.MessageSent, messages[0].Status)

	reply := messages[1]
	assert.Equal(t, domain.AuthorAssistant, reply.Author)
	require.Len(t, reply.Sources, 1)
	assert.Equal(t, "Handbook", reply.Sources[0].Title)
	assert.Equal(t, 0.92, reply.Sources[0].Score)
}

func TestConversationSendMessagePostsTextContent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/conversations/conv-1/messages", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"m1","content":"question","content_type":"TEXT","kind":"USER","conversation_id":"conv-1","status":"RECEIVED","created_at":"2026-03-01T12:00:00Z","updated_at":"2026-03-01T12:00:00Z"}`))
	}, domain.CredentialRecord{AccessToken: "token"})

	message, err := client.Conversations().SendMessage(context.Background(), "conv-1", "question")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageID("m1"), message.ID)
	assert.Equal(t, domain.MessageReceived, message.Status)
}

func TestDocumentUploadSendsMultipartFile(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge-bases/kb-1/documents", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "handbook.pdf", header.Filename)

		_, _ = w.Write([]byte(`{"id":"doc-1","title":"handbook.pdf","file_type":"pdf","status":"PENDING","knowledge_base_id":"kb-1","created_at":"2026-03-01T12:00:00Z","updated_at":"2026-03-01T12:00:00Z"}`))
	}, domain.CredentialRecord{AccessToken: "token"})

	doc, err := client.Documents().Upload(context.Background(), "kb-1", "handbook.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceID("doc-1"), doc.ID)
	assert.Equal(t, domain.ResourcePending, doc.Status)
}

func TestQuestionBulkUploadDecodesReport(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge-bases/kb-1/questions/bulk", r.URL.Path)
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "faq.csv", header.Filename)

		_, _ = w.Write([]byte(`{"submitted":12,"failed":2}`))
	}, domain.CredentialRecord{AccessToken: "token"})

	report, err := client.Questions().BulkUpload(context.Background(), "kb-1", "faq.csv", strings.NewReader("q,a\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, report.Submitted)
	assert.Equal(t, 2, report.Failed)
}

func TestDocumentStatusProjectsTrackedResource(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge-bases/kb-1/documents/doc-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"doc-1","title":"handbook.pdf","status":"FAILED","error_message":"unsupported encoding","knowledge_base_id":"kb-1"}`))
	}, domain.CredentialRecord{AccessToken: "token"})

	resource, err := client.Documents().Status(context.Background(), "kb-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceFailed, resource.Status)
	assert.Equal(t, "unsupported encoding", resource.ErrorMessage)
}

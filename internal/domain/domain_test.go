package domain

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRecordComplete(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, CredentialRecord{AccessToken: "a", RefreshToken: "r", ExpiresAt: expiry}.Complete())
	assert.False(t, CredentialRecord{RefreshToken: "r", ExpiresAt: expiry}.Complete())
	assert.False(t, CredentialRecord{AccessToken: "a", ExpiresAt: expiry}.Complete())
	assert.False(t, CredentialRecord{AccessToken: "a", RefreshToken: "r"}.Complete())
}

func TestCredentialRecordExpiry(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := CredentialRecord{AccessToken: "a", RefreshToken: "r", ExpiresAt: expiry}

	assert.False(t, record.Expired(expiry.Add(-time.Minute)))
	assert.True(t, record.Expired(expiry))
	assert.True(t, record.Expired(expiry.Add(time.Minute)))

	assert.False(t, record.ExpiringSoon(expiry.Add(-10*time.Minute), 5*time.Minute))
	assert.True(t, record.ExpiringSoon(expiry.Add(-5*time.Minute), 5*time.Minute))
	assert.True(t, record.ExpiringSoon(expiry.Add(-time.Minute), 5*time.Minute))
}

func TestMessageStatusPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, MessageSent.Terminal())
	assert.True(t, MessageFailed.Terminal())
	assert.False(t, MessageReceived.Terminal())
	assert.False(t, MessageProcessing.Terminal())

	assert.True(t, MessageReceived.InFlight())
	assert.True(t, MessageProcessing.InFlight())
	assert.False(t, MessageSent.InFlight())
	assert.False(t, MessageFailed.InFlight())
}

func TestResourceStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, ResourceProcessed.Terminal())
	assert.True(t, ResourceFailed.Terminal())
	assert.False(t, ResourcePending.Terminal())
	assert.False(t, ResourceProcessing.Terminal())
}

func TestMessageBeforeOrdersUserAheadOfAssistantInSameBucket(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	prompt := Message{ID: "m2", Author: AuthorUser, CreatedAt: base.Add(800 * time.Millisecond)}
	reply := Message{ID: "m1", Author: AuthorAssistant, CreatedAt: base.Add(200 * time.Millisecond)}

	// The reply carries the earlier raw timestamp, yet the prompt renders
	// first because both land inside the same coarse bucket.
	assert.True(t, prompt.Before(reply))
	assert.False(t, reply.Before(prompt))
}

func TestMessageBeforeOrdersAcrossBuckets(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	earlier := Message{ID: "m1", Author: AuthorAssistant, CreatedAt: base}
	later := Message{ID: "m2", Author: AuthorUser, CreatedAt: base.Add(time.Second)}

	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
}

func TestMessageBeforeIsDeterministicUnderShuffle(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		{ID: "d", Author: AuthorAssistant, CreatedAt: base.Add(time.Second + 100*time.Millisecond)},
		{ID: "a", Author: AuthorUser, CreatedAt: base.Add(300 * time.Millisecond)},
		{ID: "c", Author: AuthorUser, CreatedAt: base.Add(time.Second + 900*time.Millisecond)},
		{ID: "b", Author: AuthorAssistant, CreatedAt: base.Add(100 * time.Millisecond)},
	}

	sort.SliceStable(messages, func(i, j int) bool { return messages[i].Before(messages[j]) })

	got := make([]MessageID, 0, len(messages))
	for _, m := range messages {
		got = append(got, m.ID)
	}
	require.Equal(t, []MessageID{"a", "b", "c", "d"}, got)
}

func TestRolePermissions(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleUser.Has(PermConverse))
	assert.True(t, RoleUser.Has(PermViewKnowledgeBases))
	assert.False(t, RoleUser.Has(PermUploadDocument))
	assert.False(t, RoleUser.Has(PermCreateKnowledgeBase))

	assert.True(t, RoleOwner.Has(PermUploadDocument))
	assert.True(t, RoleAdmin.Has(PermDeleteKnowledgeBase))

	assert.False(t, RoleAdmin.Has(Permission("UNKNOWN")))
}

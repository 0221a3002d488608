package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntilTerminalStopsOnFirstTerminalFetch(t *testing.T) {
	t.Parallel()

	fetches := 0
	fetch := func(_ context.Context, id domain.ResourceID) (domain.TrackedResource, error) {
		fetches++
		return domain.TrackedResource{ID: id, Status: domain.ResourceProcessed}, nil
	}

	poller := NewStatusPoller(time.Millisecond, nil)
	final, err := poller.PollUntilTerminal(context.Background(), "doc-1", fetch, TerminalStatus, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.ResourceProcessed, final.Status)
	assert.Equal(t, 1, fetches)
}

func TestPollUntilTerminalReportsEveryObservation(t *testing.T) {
	t.Parallel()

	statuses := []domain.ResourceStatus{
		domain.ResourcePending,
		domain.ResourceProcessing,
		domain.ResourceProcessing,
		domain.ResourceFailed,
	}
	fetches := 0
	fetch := func(_ context.Context, id domain.ResourceID) (domain.TrackedResource, error) {
		status := statuses[fetches]
		fetches++
		return domain.TrackedResource{ID: id, Status: status}, nil
	}

	var seen []domain.ResourceStatus
	poller := NewStatusPoller(time.Millisecond, nil)
	final, err := poller.PollUntilTerminal(context.Background(), "doc-1", fetch, TerminalStatus,
		func(resource domain.TrackedResource) { seen = append(seen, resource.Status) })

	require.NoError(t, err)
	assert.Equal(t, domain.ResourceFailed, final.Status)
	assert.Equal(t, statuses, seen)
}

func TestPollUntilTerminalStopsOnFetchError(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("gateway timeout")
	fetches := 0
	fetch := func(_ context.Context, _ domain.ResourceID) (domain.TrackedResource, error) {
		fetches++
		if fetches == 1 {
			return domain.TrackedResource{Status: domain.ResourceProcessing}, nil
		}
		return domain.TrackedResource{}, fetchErr
	}

	poller := NewStatusPoller(time.Millisecond, nil)
	_, err := poller.PollUntilTerminal(context.Background(), "doc-1", fetch, TerminalStatus, nil)

	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 2, fetches)
}

func TestPollUntilTerminalHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(_ context.Context, id domain.ResourceID) (domain.TrackedResource, error) {
		cancel()
		return domain.TrackedResource{ID: id, Status: domain.ResourceProcessing}, nil
	}

	poller := NewStatusPoller(time.Hour, nil)
	last, err := poller.PollUntilTerminal(ctx, "doc-1", fetch, TerminalStatus, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.ResourceProcessing, last.Status)
}

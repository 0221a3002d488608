package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/docbrain-cli/internal/domain"
)

// DefaultPollInterval is the fixed cadence for resource status polling.
const DefaultPollInterval = 2 * time.Second

type FetchStatusFunc func(ctx context.Context, id domain.ResourceID) (domain.TrackedResource, error)

// TerminalStatus is the terminal-state predicate shared by document and
// question ingestion.
func TerminalStatus(r domain.TrackedResource) bool {
	return r.Status.Terminal()
}

// StatusPoller repeatedly fetches a resource's processing status until it
// reaches a terminal state. A retry of a failed resource starts a fresh
// polling cycle; finished cycles are never resumed.
type StatusPoller struct {
	interval time.Duration
	logger   *slog.Logger
}

func NewStatusPoller(interval time.Duration, logger *slog.Logger) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatusPoller{interval: interval, logger: logger}
}

// PollUntilTerminal fetches the status of id until isTerminal reports true,
// invoking onUpdate with every snapshot so the caller always holds the
// newest known state, including mid-cycle ones. The first fetch error ends
// the loop: a resource that cannot be observed is surfaced as unknown
// rather than polled forever. A resource already terminal on the first
// fetch costs exactly one round-trip and schedules no tick.
func (p *StatusPoller) PollUntilTerminal(
	ctx context.Context,
	id domain.ResourceID,
	fetch FetchStatusFunc,
	isTerminal func(domain.TrackedResource) bool,
	onUpdate func(domain.TrackedResource),
) (domain.TrackedResource, error) {
	for {
		resource, err := fetch(ctx, id)
		if err != nil {
			p.logger.Warn("status poll ended on fetch error", "resource", id, "err", err)
			return domain.TrackedResource{}, fmt.Errorf("fetch status of %s: %w", id, err)
		}
		if onUpdate != nil {
			onUpdate(resource)
		}
		if isTerminal(resource) {
			return resource, nil
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return resource, ctx.Err()
		case <-timer.C:
		}
	}
}

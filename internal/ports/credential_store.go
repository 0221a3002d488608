package ports

import (
	"context"

	"github.com/bnema/docbrain-cli/internal/domain"
)

// CredentialStore is the durable home of the session credential record. It
// is synchronously readable and observable for external mutation, so two
// processes sharing the store converge on the same session.
type CredentialStore interface {
	// Load returns domain.ErrNoCredentials when no record is stored.
	Load(ctx context.Context) (domain.CredentialRecord, error)
	Save(ctx context.Context, record domain.CredentialRecord) error
	Clear(ctx context.Context) error
	// Watch emits after every mutation of the underlying store, the caller's
	// own writes included, until ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

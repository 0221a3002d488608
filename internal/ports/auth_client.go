package ports

import (
	"context"

	"github.com/bnema/docbrain-cli/internal/domain"
)

type AuthClient interface {
	Login(ctx context.Context, email, password string) (domain.CredentialRecord, error)
	Renew(ctx context.Context, refreshToken string) (domain.CredentialRecord, error)
}

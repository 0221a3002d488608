package domain

import "time"

// CredentialRecord is the durable session credential triple. Absence of any
// field means the client is unauthenticated. A record is replaced whole on
// every renewal and deleted on logout or unrecoverable renewal failure.
type CredentialRecord struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

func (r CredentialRecord) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && !r.ExpiresAt.IsZero()
}

func (r CredentialRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// ExpiringSoon reports whether the record is within skew of expiry.
func (r CredentialRecord) ExpiringSoon(now time.Time, skew time.Duration) bool {
	return !r.ExpiresAt.After(now.Add(skew))
}

package domain

import "errors"

var (
	ErrNoCredentials  = errors.New("no stored credentials")
	ErrUnauthorized   = errors.New("request unauthorized")
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrAssistantBusy  = errors.New("assistant reply still in flight")
	ErrNoConversation = errors.New("no active conversation")
)

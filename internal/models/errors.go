package models

import "errors"

var (
	// ErrForbidden is wrapped by sources when access to a channel is denied.
	// The scanner skips the channel and carries on.
	ErrForbidden = errors.New("access forbidden")

	ErrRebuildInProgress = errors.New("rebuild already in progress")

	ErrInvalidLedger = errors.New("invalid ledger")

	ErrNoScope = errors.New("no guild configured")
)

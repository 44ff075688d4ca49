package statement

import "errors"

var (
	// ErrNoToken is returned when a user has no stored upstream token.
	ErrNoToken = errors.New("no upstream token on file")

	// ErrSyncInProgress is returned when a sync for the same user is already
	// running. The upstream rate limit is one shared budget per token, so
	// concurrent syncs would be rejected upstream and race on ledger writes.
	ErrSyncInProgress = errors.New("sync already in progress for this user")
)

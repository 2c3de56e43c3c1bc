// Package models defines the gateway's persisted state records.
package models

import "time"

// LockRecord tracks failed verification attempts for one identity.
// Blocked is terminal and implies LockUntil == nil.
type LockRecord struct {
	FailCount int        `json:"fail_count" cbor:"fail_count"`
	LockUntil *time.Time `json:"lock_until" cbor:"lock_until"`
	Blocked   bool       `json:"blocked" cbor:"blocked"`
}

// LockStatus is the result of a lock check. Remaining is a human-readable
// duration, or "permanent" for blocked identities.
type LockStatus struct {
	Locked    bool
	Remaining string
}

package common

// Snapshot keys under which the gateway persists its state.
const (
	SnapshotLockRecords   = "lock_records"
	SnapshotDailyCounts   = "daily_counts"
	SnapshotOneTimeCodes  = "one_time_codes"
	SnapshotAdmins        = "admins"
	SnapshotSuperAdmins   = "super_admins"
	SnapshotVerifiedUsers = "verified_users"
)

// AlphaNumeric is the 62-symbol alphabet used for one-time codes.
const AlphaNumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

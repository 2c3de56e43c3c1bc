// Package common defines shared constants and sentinel errors used across
// the gateway. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Configuration errors.
	ErrorUnknownBackend = errors.New("unknown storage backend")
	ErrorUnknownCodec   = errors.New("unknown snapshot codec")

	// Catalog errors.
	ErrorUnsupportedCatalogFormat = errors.New("unsupported catalog format")

	// Transport errors.
	ErrorMalformedEnvelope = errors.New("malformed message envelope")
)

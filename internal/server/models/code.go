package models

import "time"

// OneTimeCode is an admin-issued, single-use verification code.
// Once Used is set the record never changes again.
type OneTimeCode struct {
	// ID identifies the record in logs; Code itself is never logged.
	ID        string    `json:"id" cbor:"id"`
	Code      string    `json:"code" cbor:"code"`
	Creator   string    `json:"creator" cbor:"creator"`
	CreatedAt time.Time `json:"created_at" cbor:"created_at"`
	Used      bool      `json:"used" cbor:"used"`
	UsedBy    *string   `json:"used_by" cbor:"used_by"`
}

// RedeemOutcome is the result of trying a candidate one-time code.
type RedeemOutcome int

const (
	RedeemNotFound RedeemOutcome = iota
	RedeemSuccess
	RedeemExpired
)

func (o RedeemOutcome) String() string {
	switch o {
	case RedeemSuccess:
		return "success"
	case RedeemExpired:
		return "expired"
	default:
		return "not_found"
	}
}

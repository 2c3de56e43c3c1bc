package models

// DailyCount is the number of catalog queries an identity made on Date
// (YYYYMMDD in the gateway's fixed day-boundary zone).
type DailyCount struct {
	Date  string `json:"date" cbor:"date"`
	Count int    `json:"count" cbor:"count"`
}

package entities

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// TipRecord is one append-only historical entry. A multi-tip call produces
// one record per unit, not per call.
type TipRecord struct {
	RecordID   string
	RoomID     uint64
	Tipper     Address
	Streamer   Address
	Amount     sdkmath.Int
	OccurredAt time.Time
}

// PayoutLeg is one (recipient, amount) pair of a distribution.
type PayoutLeg struct {
	Recipient Address
	Amount    sdkmath.Int
}

// Distribution is the record of what one tip operation actually transferred.
type Distribution struct {
	RoomID     uint64
	SchemeID   uint64
	Tipper     Address
	Streamer   Address
	Amount     sdkmath.Int
	TipCount   uint64
	Payouts    []PayoutLeg
	Records    []TipRecord
	OccurredAt time.Time
}

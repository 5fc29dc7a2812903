package entities

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// UserStats accumulates gross tipping activity per tipper identity.
type UserStats struct {
	User        Address
	TotalTipped sdkmath.Int
	TipCount    uint64
}

// LedgerStats are the global counters. TotalVolume equals the sum of
// TotalReceived across all rooms at all times.
type LedgerStats struct {
	TotalRooms  uint64
	TotalTips   uint64
	TotalVolume sdkmath.Int
}

type TreasuryEntryKind string

const (
	TreasuryEntryWithdrawal TreasuryEntryKind = "withdrawal"
	TreasuryEntryDeposit    TreasuryEntryKind = "deposit"
)

// TreasuryEntry logs one movement of the undistributed vault balance.
type TreasuryEntry struct {
	EntryID      string
	Kind         TreasuryEntryKind
	Counterparty Address
	Amount       sdkmath.Int
	OccurredAt   time.Time
}

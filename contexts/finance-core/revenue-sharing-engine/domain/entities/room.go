package entities

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// Room is a streamer-owned tipping destination bound to one scheme at a time.
// SchemeID and Active are the only streamer-mutable fields; the counters are
// advanced only by successful tip distributions.
type Room struct {
	ID            uint64
	Streamer      Address
	SchemeID      uint64
	Active        bool
	CreatedAt     time.Time
	TotalReceived sdkmath.Int
	TipCount      uint64
}

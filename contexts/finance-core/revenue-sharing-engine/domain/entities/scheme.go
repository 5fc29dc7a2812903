package entities

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// TotalShareBps is the required share total: 10000 basis points = 100%.
const TotalShareBps = 10000

// Scheme is a named revenue-split plan. Recipients pair positionally with
// ShareBps; the order is preserved in stored data and emitted distributions.
type Scheme struct {
	ID         uint64
	Name       string
	Recipients []Address
	ShareBps   []uint32
	Active     bool
	CreatedAt  time.Time
}

// HasValidSplit reports whether the recipient/share lists are well formed:
// equal non-zero length and shares summing to exactly TotalShareBps.
func (s Scheme) HasValidSplit() bool {
	if len(s.Recipients) == 0 || len(s.Recipients) != len(s.ShareBps) {
		return false
	}
	var total uint64
	for _, share := range s.ShareBps {
		if share > TotalShareBps {
			return false
		}
		total += uint64(share)
	}
	return total == TotalShareBps
}

// HasZeroRecipient reports whether any recipient is the zero identity.
func (s Scheme) HasZeroRecipient() bool {
	for _, recipient := range s.Recipients {
		if recipient.IsZero() {
			return true
		}
	}
	return false
}

// Split divides amount across the scheme's recipients. Each payout is
// floor(amount*share/10000); the integer-division remainder is assigned to
// the last recipient so the payouts always sum to amount exactly.
func (s Scheme) Split(amount sdkmath.Int) []sdkmath.Int {
	payouts := make([]sdkmath.Int, len(s.ShareBps))
	distributed := sdkmath.ZeroInt()
	for i, share := range s.ShareBps {
		payouts[i] = amount.MulRaw(int64(share)).QuoRaw(TotalShareBps)
		distributed = distributed.Add(payouts[i])
	}
	last := len(payouts) - 1
	payouts[last] = payouts[last].Add(amount.Sub(distributed))
	return payouts
}

// SplitUnits divides amount into count equal units, assigning the remainder
// to the last unit. Used by multi-tip calls to produce per-unit records.
func SplitUnits(amount sdkmath.Int, count uint32) []sdkmath.Int {
	units := make([]sdkmath.Int, count)
	base := amount.QuoRaw(int64(count))
	consumed := sdkmath.ZeroInt()
	for i := range units {
		units[i] = base
		consumed = consumed.Add(base)
	}
	units[count-1] = units[count-1].Add(amount.Sub(consumed))
	return units
}

package entities

import (
	"testing"

	sdkmath "cosmossdk.io/math"
)

func TestSplitExactShares(t *testing.T) {
	scheme := Scheme{
		Recipients: []Address{"streamer_1", "platform"},
		ShareBps:   []uint32{9000, 1000},
	}
	payouts := scheme.Split(sdkmath.NewInt(1000000))

	if len(payouts) != 2 {
		t.Fatalf("expected 2 payouts, got %d", len(payouts))
	}
	if payouts[0].String() != "900000" {
		t.Fatalf("expected 900000 for streamer, got %s", payouts[0])
	}
	if payouts[1].String() != "100000" {
		t.Fatalf("expected 100000 for platform, got %s", payouts[1])
	}
}

func TestSplitRemainderGoesToLastRecipient(t *testing.T) {
	scheme := Scheme{
		Recipients: []Address{"a", "b", "c"},
		ShareBps:   []uint32{3333, 3333, 3334},
	}
	amount := sdkmath.NewInt(101)
	payouts := scheme.Split(amount)

	total := sdkmath.ZeroInt()
	for _, payout := range payouts {
		total = total.Add(payout)
	}
	if !total.Equal(amount) {
		t.Fatalf("split lost value: distributed %s of %s", total, amount)
	}
	if !payouts[2].GT(payouts[0]) {
		t.Fatalf("expected remainder on last recipient, got %s vs %s", payouts[2], payouts[0])
	}
}

func TestSplitConservesValueAcrossAmounts(t *testing.T) {
	scheme := Scheme{
		Recipients: []Address{"a", "b", "c", "d"},
		ShareBps:   []uint32{1, 2500, 2499, 5000},
	}
	for _, raw := range []int64{1, 2, 7, 9999, 10000, 10001, 123456789} {
		amount := sdkmath.NewInt(raw)
		total := sdkmath.ZeroInt()
		for _, payout := range scheme.Split(amount) {
			total = total.Add(payout)
		}
		if !total.Equal(amount) {
			t.Fatalf("amount %d: distributed %s", raw, total)
		}
	}
}

func TestSplitUnitsEvenAndRemainder(t *testing.T) {
	units := SplitUnits(sdkmath.NewInt(1000000), 5)
	if len(units) != 5 {
		t.Fatalf("expected 5 units, got %d", len(units))
	}
	for i, unit := range units {
		if unit.String() != "200000" {
			t.Fatalf("unit %d: expected 200000, got %s", i, unit)
		}
	}

	units = SplitUnits(sdkmath.NewInt(101), 2)
	if units[0].String() != "50" || units[1].String() != "51" {
		t.Fatalf("expected 50/51, got %s/%s", units[0], units[1])
	}
}

func TestHasValidSplitRejectsBadShares(t *testing.T) {
	cases := []struct {
		name       string
		recipients []Address
		shares     []uint32
	}{
		{"empty", nil, nil},
		{"length mismatch", []Address{"a", "b"}, []uint32{10000}},
		{"sum below total", []Address{"a", "b"}, []uint32{9000, 500}},
		{"sum above total", []Address{"a", "b"}, []uint32{9000, 1500}},
	}
	for _, tc := range cases {
		scheme := Scheme{Recipients: tc.recipients, ShareBps: tc.shares}
		if scheme.HasValidSplit() {
			t.Fatalf("%s: expected invalid split", tc.name)
		}
	}

	valid := Scheme{Recipients: []Address{"a"}, ShareBps: []uint32{10000}}
	if !valid.HasValidSplit() {
		t.Fatalf("single full-share recipient should be valid")
	}
}

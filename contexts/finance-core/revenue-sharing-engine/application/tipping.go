package application

import (
	"context"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

// Tip splits amount across the room's scheme and records one tip event.
func (s Service) Tip(ctx context.Context, caller entities.Address, roomID uint64, amount sdkmath.Int) (entities.Distribution, error) {
	return s.distribute(ctx, caller, roomID, 1, amount)
}

// TipMultiple is the aggregate form: counters and history advance by count
// discrete tip units while the fund movement is a single atomic distribution
// of the full amount.
func (s Service) TipMultiple(ctx context.Context, caller entities.Address, roomID uint64, count int, amount sdkmath.Int) (entities.Distribution, error) {
	// The unit count must fit uint32 before any transfer is attempted; a
	// truncated count would divide by zero or silently drop units.
	if count <= 0 || uint64(count) > math.MaxUint32 {
		return entities.Distribution{}, domainerrors.ErrInvalidCount
	}
	return s.distribute(ctx, caller, roomID, uint32(count), amount)
}

func (s Service) distribute(ctx context.Context, caller entities.Address, roomID uint64, units uint32, amount sdkmath.Int) (entities.Distribution, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return entities.Distribution{}, domainerrors.ErrInvalidAmount
	}

	room, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return entities.Distribution{}, err
	}
	if !room.Active {
		return entities.Distribution{}, domainerrors.ErrRoomInactive
	}
	scheme, err := s.Schemes.GetScheme(ctx, room.SchemeID)
	if err != nil {
		return entities.Distribution{}, err
	}
	if s.BlockTipsOnInactiveScheme && !scheme.Active {
		return entities.Distribution{}, domainerrors.ErrSchemeInactive
	}

	payouts := scheme.Split(amount)
	legs := make([]entities.PayoutLeg, len(payouts))
	transfers := make([]ports.Payout, len(payouts))
	for i, payout := range payouts {
		legs[i] = entities.PayoutLeg{Recipient: scheme.Recipients[i], Amount: payout}
		transfers[i] = ports.Payout{Recipient: scheme.Recipients[i], Amount: payout}
	}

	// All transfers are attempted as one batch before any counter moves;
	// a rejection leaves the ledger untouched.
	if err := s.Payments.Distribute(ctx, caller, transfers); err != nil {
		return entities.Distribution{}, fmt.Errorf("distribute tip for room %d: %w", room.ID, err)
	}

	now := s.now()
	unitAmounts := entities.SplitUnits(amount, units)
	records := make([]entities.TipRecord, len(unitAmounts))
	for i, unitAmount := range unitAmounts {
		records[i] = entities.TipRecord{
			RecordID:   uuid.NewString(),
			RoomID:     room.ID,
			Tipper:     caller,
			Streamer:   room.Streamer,
			Amount:     unitAmount,
			OccurredAt: now,
		}
	}

	envelope, err := newEnvelope("tip.distributed", fmt.Sprintf("%d", room.ID), now, map[string]any{
		"room_id":   room.ID,
		"scheme_id": scheme.ID,
		"tipper":    caller.String(),
		"streamer":  room.Streamer.String(),
		"amount":    amount.String(),
		"tip_count": uint64(units),
	})
	if err != nil {
		return entities.Distribution{}, err
	}

	mutation := ports.TipMutation{
		RoomID:        room.ID,
		Tipper:        caller,
		Amount:        amount,
		TipCountDelta: uint64(units),
		Records:       records,
		Envelope:      envelope,
	}
	if err := s.Ledger.ApplyTip(ctx, mutation); err != nil {
		return entities.Distribution{}, fmt.Errorf("commit tip for room %d: %w", room.ID, err)
	}

	ResolveLogger(s.Logger).Info("tip distributed",
		"event", "tip_distributed",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"room_id", room.ID,
		"scheme_id", scheme.ID,
		"tipper", caller.String(),
		"amount", amount.String(),
		"tip_count", uint64(units),
	)
	return entities.Distribution{
		RoomID:     room.ID,
		SchemeID:   scheme.ID,
		Tipper:     caller,
		Streamer:   room.Streamer,
		Amount:     amount,
		TipCount:   uint64(units),
		Payouts:    legs,
		Records:    records,
		OccurredAt: now,
	}, nil
}

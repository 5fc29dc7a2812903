package application

import (
	"context"
	"fmt"
	"strconv"

	sdkmath "cosmossdk.io/math"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
)

func (s Service) CreateRoom(ctx context.Context, caller entities.Address, schemeID uint64) (entities.Room, error) {
	if caller.IsZero() {
		return entities.Room{}, domainerrors.ErrInvalidRecipient
	}
	scheme, err := s.Schemes.GetScheme(ctx, schemeID)
	if err != nil {
		return entities.Room{}, err
	}
	if s.BlockInactiveSchemeAssignment && !scheme.Active {
		return entities.Room{}, domainerrors.ErrSchemeInactive
	}

	now := s.now()
	room := entities.Room{
		Streamer:      caller,
		SchemeID:      scheme.ID,
		Active:        true,
		CreatedAt:     now,
		TotalReceived: sdkmath.ZeroInt(),
		TipCount:      0,
	}
	envelope, err := newEnvelope("room.created", caller.String(), now, map[string]any{
		"streamer":  caller.String(),
		"scheme_id": scheme.ID,
	})
	if err != nil {
		return entities.Room{}, err
	}
	roomID, err := s.Rooms.CreateRoom(ctx, room, envelope)
	if err != nil {
		return entities.Room{}, fmt.Errorf("create room: %w", err)
	}
	room.ID = roomID

	ResolveLogger(s.Logger).Info("room created",
		"event", "room_created",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"room_id", room.ID,
		"streamer", caller.String(),
		"scheme_id", scheme.ID,
	)
	return room, nil
}

func (s Service) UpdateRoomScheme(ctx context.Context, caller entities.Address, roomID, schemeID uint64) error {
	room, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Streamer != caller {
		return domainerrors.ErrUnauthorized
	}
	scheme, err := s.Schemes.GetScheme(ctx, schemeID)
	if err != nil {
		return err
	}
	if s.BlockInactiveSchemeAssignment && !scheme.Active {
		return domainerrors.ErrSchemeInactive
	}

	if err := s.Rooms.UpdateRoomBinding(ctx, room.ID, scheme.ID, room.Active); err != nil {
		return fmt.Errorf("update room %d scheme: %w", room.ID, err)
	}

	ResolveLogger(s.Logger).Info("room scheme updated",
		"event", "room_scheme_updated",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"room_id", room.ID,
		"scheme_id", scheme.ID,
	)
	return nil
}

func (s Service) SetRoomActive(ctx context.Context, caller entities.Address, roomID uint64, active bool) error {
	room, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Streamer != caller {
		return domainerrors.ErrUnauthorized
	}

	if err := s.Rooms.UpdateRoomBinding(ctx, room.ID, room.SchemeID, active); err != nil {
		return fmt.Errorf("set room %d active: %w", room.ID, err)
	}

	ResolveLogger(s.Logger).Info("room active flag updated",
		"event", "room_active_updated",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"room_id", room.ID,
		"active", strconv.FormatBool(active),
	)
	return nil
}

func (s Service) GetRoom(ctx context.Context, roomID uint64) (entities.Room, error) {
	return s.Rooms.GetRoom(ctx, roomID)
}

func (s Service) StreamerRooms(ctx context.Context, streamer entities.Address) ([]uint64, error) {
	return s.Rooms.ListStreamerRooms(ctx, streamer)
}

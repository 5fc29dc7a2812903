package application

import (
	"context"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
)

func (s Service) UserStats(ctx context.Context, user entities.Address) (entities.UserStats, error) {
	return s.Ledger.GetUserStats(ctx, user)
}

func (s Service) LedgerStats(ctx context.Context) (entities.LedgerStats, error) {
	return s.Ledger.GetLedgerStats(ctx)
}

func (s Service) RecentTips(ctx context.Context, limit int) ([]entities.TipRecord, error) {
	return s.Ledger.ListRecentTips(ctx, normalizeLimit(limit))
}

func (s Service) RoomTips(ctx context.Context, roomID uint64, limit int) ([]entities.TipRecord, error) {
	if _, err := s.Rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.Ledger.ListRoomTips(ctx, roomID, normalizeLimit(limit))
}

package unit

import (
	"context"
	"encoding/json"
	"testing"

	revenuesharingengine "tipstream/contexts/finance-core/revenue-sharing-engine"
	httptransport "tipstream/contexts/finance-core/revenue-sharing-engine/transport/http"
)

func TestTipFlowEndToEnd(t *testing.T) {
	module := revenuesharingengine.NewInMemoryModule(nil, "admin_1")
	ctx := context.Background()

	scheme, err := module.Handler.CreateSchemeHandler(ctx, httptransport.CreateSchemeRequest{
		Name:       "standard 90/10",
		Recipients: []string{"streamer_1", "platform"},
		ShareBps:   []uint32{9000, 1000},
	})
	if err != nil {
		t.Fatalf("create scheme failed: %v", err)
	}
	if scheme.Data.SchemeID != 0 {
		t.Fatalf("expected first scheme id 0, got %d", scheme.Data.SchemeID)
	}

	room, err := module.Handler.CreateRoomHandler(ctx, "streamer_1", httptransport.CreateRoomRequest{
		SchemeID: scheme.Data.SchemeID,
	})
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	if room.Data.RoomID != 1 {
		t.Fatalf("expected first room id 1, got %d", room.Data.RoomID)
	}

	tip, err := module.Handler.TipHandler(ctx, "tipper_1", room.Data.RoomID, httptransport.TipRequest{
		Amount: "1000000",
	})
	if err != nil {
		t.Fatalf("tip failed: %v", err)
	}
	if tip.Data.Payouts[0].Amount != "900000" || tip.Data.Payouts[1].Amount != "100000" {
		t.Fatalf("unexpected payouts: %+v", tip.Data.Payouts)
	}

	if module.Gateway.BalanceOf("streamer_1").String() != "900000" {
		t.Fatalf("streamer balance: %s", module.Gateway.BalanceOf("streamer_1"))
	}

	stats, err := module.Handler.LedgerStatsHandler(ctx)
	if err != nil {
		t.Fatalf("ledger stats failed: %v", err)
	}
	if stats.Data.TotalRooms != 1 || stats.Data.TotalTips != 1 || stats.Data.TotalVolume != "1000000" {
		t.Fatalf("unexpected ledger stats: %+v", stats.Data)
	}
}

func TestTipHandlerRejectsMalformedAmount(t *testing.T) {
	module := revenuesharingengine.NewInMemoryModule(nil, "admin_1")
	ctx := context.Background()

	scheme, err := module.Handler.CreateSchemeHandler(ctx, httptransport.CreateSchemeRequest{
		Name:       "solo",
		Recipients: []string{"streamer_1"},
		ShareBps:   []uint32{10000},
	})
	if err != nil {
		t.Fatalf("create scheme failed: %v", err)
	}
	room, err := module.Handler.CreateRoomHandler(ctx, "streamer_1", httptransport.CreateRoomRequest{
		SchemeID: scheme.Data.SchemeID,
	})
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	if _, err := module.Handler.TipHandler(ctx, "tipper_1", room.Data.RoomID, httptransport.TipRequest{
		Amount: "12.5",
	}); err == nil {
		t.Fatalf("expected error for fractional amount")
	}
	if _, err := module.Handler.TipHandler(ctx, "tipper_1", room.Data.RoomID, httptransport.TipRequest{
		Amount: "lots",
	}); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestMultiTipRecordsDiscreteUnits(t *testing.T) {
	module := revenuesharingengine.NewInMemoryModule(nil, "admin_1")
	ctx := context.Background()

	scheme, err := module.Handler.CreateSchemeHandler(ctx, httptransport.CreateSchemeRequest{
		Name:       "solo",
		Recipients: []string{"streamer_1"},
		ShareBps:   []uint32{10000},
	})
	if err != nil {
		t.Fatalf("create scheme failed: %v", err)
	}
	room, err := module.Handler.CreateRoomHandler(ctx, "streamer_1", httptransport.CreateRoomRequest{
		SchemeID: scheme.Data.SchemeID,
	})
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	tip, err := module.Handler.TipHandler(ctx, "tipper_1", room.Data.RoomID, httptransport.TipRequest{
		Amount: "5000000",
		Count:  5,
	})
	if err != nil {
		t.Fatalf("multi tip failed: %v", err)
	}
	if tip.Data.TipCount != 5 || len(tip.Data.Records) != 5 {
		t.Fatalf("expected 5 units, got count=%d records=%d", tip.Data.TipCount, len(tip.Data.Records))
	}

	history, err := module.Handler.RoomTipsHandler(ctx, room.Data.RoomID, 10)
	if err != nil {
		t.Fatalf("room tips failed: %v", err)
	}
	if len(history.Data) != 5 {
		t.Fatalf("expected 5 history records, got %d", len(history.Data))
	}

	user, err := module.Handler.UserStatsHandler(ctx, "tipper_1")
	if err != nil {
		t.Fatalf("user stats failed: %v", err)
	}
	if user.Data.TipCount != 5 || user.Data.TotalTipped != "5000000" {
		t.Fatalf("unexpected user stats: %+v", user.Data)
	}
}

func TestTipProducesPendingOutboxEvent(t *testing.T) {
	module := revenuesharingengine.NewInMemoryModule(nil, "admin_1")
	ctx := context.Background()

	scheme, err := module.Handler.CreateSchemeHandler(ctx, httptransport.CreateSchemeRequest{
		Name:       "solo",
		Recipients: []string{"streamer_1"},
		ShareBps:   []uint32{10000},
	})
	if err != nil {
		t.Fatalf("create scheme failed: %v", err)
	}
	room, err := module.Handler.CreateRoomHandler(ctx, "streamer_1", httptransport.CreateRoomRequest{
		SchemeID: scheme.Data.SchemeID,
	})
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	if _, err := module.Handler.TipHandler(ctx, "tipper_1", room.Data.RoomID, httptransport.TipRequest{
		Amount: "1000",
	}); err != nil {
		t.Fatalf("tip failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(ctx, 100)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}

	var found bool
	for _, row := range pending {
		if row.EventType != "tip.distributed" {
			continue
		}
		found = true
		var payload map[string]any
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			t.Fatalf("unmarshal envelope failed: %v", err)
		}
		if payload["event_type"] != "tip.distributed" {
			t.Fatalf("unexpected envelope payload: %v", payload)
		}
	}
	if !found {
		t.Fatalf("no tip.distributed event in outbox (%d pending)", len(pending))
	}
}

func TestTreasuryWithdrawalFlow(t *testing.T) {
	module := revenuesharingengine.NewInMemoryModule(nil, "admin_1")
	ctx := context.Background()

	if _, err := module.Handler.DepositHandler(ctx, "donor", httptransport.DepositRequest{
		Amount: "5000",
	}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	balance, err := module.Handler.VaultBalanceHandler(ctx)
	if err != nil {
		t.Fatalf("vault balance failed: %v", err)
	}
	if balance.Data.Balance != "5000" {
		t.Fatalf("expected vault balance 5000, got %s", balance.Data.Balance)
	}

	if _, err := module.Handler.WithdrawHandler(ctx, "not_admin", httptransport.WithdrawRequest{
		To: "dest",
	}); err == nil {
		t.Fatalf("expected non-admin withdrawal to fail")
	}

	entry, err := module.Handler.WithdrawHandler(ctx, "admin_1", httptransport.WithdrawRequest{
		To: "dest",
	})
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if entry.Data.Amount != "5000" || entry.Data.Kind != "withdrawal" {
		t.Fatalf("unexpected withdrawal entry: %+v", entry.Data)
	}

	balance, err = module.Handler.VaultBalanceHandler(ctx)
	if err != nil {
		t.Fatalf("vault balance failed: %v", err)
	}
	if balance.Data.Balance != "0" {
		t.Fatalf("vault not emptied: %s", balance.Data.Balance)
	}
}

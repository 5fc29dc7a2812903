package application

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"

	"tipstream/contexts/finance-core/revenue-sharing-engine/adapters/memory"
	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func newTestService(t *testing.T) (Service, *memory.Store, *memory.Gateway) {
	t.Helper()
	store := memory.NewStore()
	gateway := memory.NewGateway()
	service := Service{
		Schemes:                       store,
		Rooms:                         store,
		Ledger:                        store,
		Treasury:                      store,
		Payments:                      gateway,
		Clock:                         fixedClock{now: time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)},
		Admin:                         "admin_1",
		BlockInactiveSchemeAssignment: true,
	}
	return service, store, gateway
}

func createScheme(t *testing.T, service Service, recipients []entities.Address, shares []uint32) entities.Scheme {
	t.Helper()
	scheme, err := service.CreateScheme(context.Background(), ports.CreateSchemeInput{
		Name:       "test scheme",
		Recipients: recipients,
		ShareBps:   shares,
	})
	if err != nil {
		t.Fatalf("create scheme failed: %v", err)
	}
	return scheme
}

func TestEnsureDefaultSchemeCreatesSchemeZeroOnce(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureDefaultScheme(ctx, "platform", "treasury"); err != nil {
		t.Fatalf("ensure default scheme failed: %v", err)
	}
	if err := service.EnsureDefaultScheme(ctx, "platform", "treasury"); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}

	count, err := service.SchemeCount(ctx)
	if err != nil {
		t.Fatalf("count schemes failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one scheme, got %d", count)
	}

	scheme, err := service.GetScheme(ctx, 0)
	if err != nil {
		t.Fatalf("get default scheme failed: %v", err)
	}
	if scheme.Name != DefaultSchemeName {
		t.Fatalf("expected default scheme name, got %q", scheme.Name)
	}
	if scheme.ShareBps[0] != 9500 || scheme.ShareBps[1] != 500 {
		t.Fatalf("unexpected default shares: %v", scheme.ShareBps)
	}
}

func TestCreateSchemeRejectsInvalidSplit(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateScheme(context.Background(), ports.CreateSchemeInput{
		Name:       "short split",
		Recipients: []entities.Address{"a", "b"},
		ShareBps:   []uint32{9000, 500},
	})
	if !errors.Is(err, domainerrors.ErrInvalidSplit) {
		t.Fatalf("expected ErrInvalidSplit, got %v", err)
	}
}

func TestCreateSchemeRejectsZeroRecipient(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateScheme(context.Background(), ports.CreateSchemeInput{
		Name:       "blank recipient",
		Recipients: []entities.Address{"a", "  "},
		ShareBps:   []uint32{9000, 1000},
	})
	if !errors.Is(err, domainerrors.ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
}

func TestSchemeIDsAreSequentialFromZero(t *testing.T) {
	service, _, _ := newTestService(t)

	first := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	second := createScheme(t, service, []entities.Address{"b"}, []uint32{10000})
	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", first.ID, second.ID)
	}
}

func TestUpdateSchemeUnknownIDFails(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.UpdateScheme(context.Background(), ports.UpdateSchemeInput{
		SchemeID:   42,
		Name:       "ghost",
		Recipients: []entities.Address{"a"},
		ShareBps:   []uint32{10000},
		Active:     true,
	})
	if !errors.Is(err, domainerrors.ErrSchemeNotFound) {
		t.Fatalf("expected ErrSchemeNotFound, got %v", err)
	}
}

func TestCreateRoomAgainstInactiveSchemeBlocked(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	if _, err := service.UpdateScheme(ctx, ports.UpdateSchemeInput{
		SchemeID:   scheme.ID,
		Name:       scheme.Name,
		Recipients: scheme.Recipients,
		ShareBps:   scheme.ShareBps,
		Active:     false,
	}); err != nil {
		t.Fatalf("deactivate scheme failed: %v", err)
	}

	_, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if !errors.Is(err, domainerrors.ErrSchemeInactive) {
		t.Fatalf("expected ErrSchemeInactive, got %v", err)
	}
}

func TestRoomIDsAreSequentialFromOne(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	first, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("first room failed: %v", err)
	}
	second, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("second room failed: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected room ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	rooms, err := service.StreamerRooms(ctx, "streamer_1")
	if err != nil {
		t.Fatalf("list streamer rooms failed: %v", err)
	}
	if len(rooms) != 2 || rooms[0] != 1 || rooms[1] != 2 {
		t.Fatalf("unexpected streamer room list: %v", rooms)
	}
}

func TestUpdateRoomSchemeRequiresOwner(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	if err := service.UpdateRoomScheme(ctx, "intruder", room.ID, scheme.ID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := service.SetRoomActive(ctx, "intruder", room.ID, false); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on active toggle, got %v", err)
	}
}

func TestTipSplitsAndUpdatesAllCounters(t *testing.T) {
	service, _, gateway := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"streamer_1", "platform"}, []uint32{9000, 1000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	distribution, err := service.Tip(ctx, "tipper_1", room.ID, sdkmath.NewInt(1000000))
	if err != nil {
		t.Fatalf("tip failed: %v", err)
	}
	if len(distribution.Payouts) != 2 {
		t.Fatalf("expected 2 payout legs, got %d", len(distribution.Payouts))
	}
	if gateway.BalanceOf("streamer_1").String() != "900000" {
		t.Fatalf("streamer balance: %s", gateway.BalanceOf("streamer_1"))
	}
	if gateway.BalanceOf("platform").String() != "100000" {
		t.Fatalf("platform balance: %s", gateway.BalanceOf("platform"))
	}

	got, err := service.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room failed: %v", err)
	}
	if got.TipCount != 1 || got.TotalReceived.String() != "1000000" {
		t.Fatalf("room counters: count=%d total=%s", got.TipCount, got.TotalReceived)
	}

	stats, err := service.UserStats(ctx, "tipper_1")
	if err != nil {
		t.Fatalf("user stats failed: %v", err)
	}
	if stats.TipCount != 1 || stats.TotalTipped.String() != "1000000" {
		t.Fatalf("user stats: count=%d total=%s", stats.TipCount, stats.TotalTipped)
	}

	ledger, err := service.LedgerStats(ctx)
	if err != nil {
		t.Fatalf("ledger stats failed: %v", err)
	}
	if ledger.TotalRooms != 1 || ledger.TotalTips != 1 || ledger.TotalVolume.String() != "1000000" {
		t.Fatalf("ledger stats: %+v", ledger)
	}
}

func TestTipRejectsNonPositiveAmount(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	if _, err := service.Tip(ctx, "tipper_1", room.ID, sdkmath.ZeroInt()); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := service.Tip(ctx, "tipper_1", room.ID, sdkmath.NewInt(-5)); !errors.Is(err, domainerrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
}

func TestTipInactiveRoomBlocked(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	if err := service.SetRoomActive(ctx, "streamer_1", room.ID, false); err != nil {
		t.Fatalf("deactivate room failed: %v", err)
	}

	_, err = service.Tip(ctx, "tipper_1", room.ID, sdkmath.NewInt(100))
	if !errors.Is(err, domainerrors.ErrRoomInactive) {
		t.Fatalf("expected ErrRoomInactive, got %v", err)
	}
}

func TestTipUnknownRoomFails(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Tip(context.Background(), "tipper_1", 77, sdkmath.NewInt(100))
	if !errors.Is(err, domainerrors.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestTipMultipleAdvancesCountersByCount(t *testing.T) {
	service, _, gateway := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"streamer_1", "platform"}, []uint32{9000, 1000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	distribution, err := service.TipMultiple(ctx, "tipper_1", room.ID, 5, sdkmath.NewInt(5000000))
	if err != nil {
		t.Fatalf("tip multiple failed: %v", err)
	}
	if distribution.TipCount != 5 {
		t.Fatalf("expected tip count 5, got %d", distribution.TipCount)
	}
	if len(distribution.Records) != 5 {
		t.Fatalf("expected 5 per-unit records, got %d", len(distribution.Records))
	}
	for i, record := range distribution.Records {
		if record.Amount.String() != "1000000" {
			t.Fatalf("record %d amount: %s", i, record.Amount)
		}
	}

	// Funds move once for the aggregate amount.
	if gateway.BalanceOf("streamer_1").String() != "4500000" {
		t.Fatalf("streamer balance: %s", gateway.BalanceOf("streamer_1"))
	}

	got, err := service.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room failed: %v", err)
	}
	if got.TipCount != 5 || got.TotalReceived.String() != "5000000" {
		t.Fatalf("room counters: count=%d total=%s", got.TipCount, got.TotalReceived)
	}

	stats, err := service.LedgerStats(ctx)
	if err != nil {
		t.Fatalf("ledger stats failed: %v", err)
	}
	if stats.TotalTips != 5 {
		t.Fatalf("expected 5 global tips, got %d", stats.TotalTips)
	}
}

func TestTipMultipleRejectsNonPositiveCount(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	if _, err := service.TipMultiple(ctx, "tipper_1", room.ID, 0, sdkmath.NewInt(100)); !errors.Is(err, domainerrors.ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount for zero, got %v", err)
	}
	if _, err := service.TipMultiple(ctx, "tipper_1", room.ID, -3, sdkmath.NewInt(100)); !errors.Is(err, domainerrors.ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount for negative, got %v", err)
	}
}

func TestTipMultipleRejectsCountBeyondUnitRange(t *testing.T) {
	service, _, gateway := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"streamer_1"}, []uint32{10000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	// A count past the unit range must fail before any funds move; a
	// narrowed count would either divide by zero or drop units.
	if _, err := service.TipMultiple(ctx, "tipper_1", room.ID, 1<<32, sdkmath.NewInt(100)); !errors.Is(err, domainerrors.ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount for 1<<32, got %v", err)
	}
	if _, err := service.TipMultiple(ctx, "tipper_1", room.ID, 1<<32+3, sdkmath.NewInt(100)); !errors.Is(err, domainerrors.ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount for 1<<32+3, got %v", err)
	}

	if gateway.BalanceOf("streamer_1").String() != "0" {
		t.Fatalf("rejected count moved funds: %s", gateway.BalanceOf("streamer_1"))
	}
	got, err := service.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room failed: %v", err)
	}
	if got.TipCount != 0 || got.TotalReceived.String() != "0" {
		t.Fatalf("rejected count advanced counters: count=%d total=%s", got.TipCount, got.TotalReceived)
	}
}

func TestUpdateSchemeAppendsOutboxEvent(t *testing.T) {
	service, store, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"a"}, []uint32{10000})
	if _, err := service.UpdateScheme(ctx, ports.UpdateSchemeInput{
		SchemeID:   scheme.ID,
		Name:       "renamed",
		Recipients: scheme.Recipients,
		ShareBps:   scheme.ShareBps,
		Active:     false,
	}); err != nil {
		t.Fatalf("update scheme failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	var updated int
	for _, message := range pending {
		if message.EventType == "scheme.updated" {
			updated++
			if message.PartitionKey != "renamed" {
				t.Fatalf("unexpected partition key: %s", message.PartitionKey)
			}
		}
	}
	if updated != 1 {
		t.Fatalf("expected one scheme.updated event, got %d", updated)
	}
}

func TestTipRejectedTransferLeavesLedgerUntouched(t *testing.T) {
	service, _, gateway := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"streamer_1", "refuser"}, []uint32{9000, 1000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	gateway.RejectPayoutsTo("refuser")

	_, err = service.Tip(ctx, "tipper_1", room.ID, sdkmath.NewInt(1000))
	if !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	if gateway.BalanceOf("streamer_1").String() != "0" {
		t.Fatalf("partial payout leaked: %s", gateway.BalanceOf("streamer_1"))
	}
	got, err := service.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room failed: %v", err)
	}
	if got.TipCount != 0 || got.TotalReceived.String() != "0" {
		t.Fatalf("counters moved on failed tip: count=%d total=%s", got.TipCount, got.TotalReceived)
	}
	recent, err := service.RecentTips(ctx, 10)
	if err != nil {
		t.Fatalf("recent tips failed: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("history recorded a failed tip: %d records", len(recent))
	}
}

func TestRecentTipsMostRecentFirst(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	scheme := createScheme(t, service, []entities.Address{"streamer_1"}, []uint32{10000})
	room, err := service.CreateRoom(ctx, "streamer_1", scheme.ID)
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	for _, raw := range []int64{100, 200, 300} {
		if _, err := service.Tip(ctx, "tipper_1", room.ID, sdkmath.NewInt(raw)); err != nil {
			t.Fatalf("tip %d failed: %v", raw, err)
		}
	}

	recent, err := service.RecentTips(ctx, 2)
	if err != nil {
		t.Fatalf("recent tips failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Amount.String() != "300" || recent[1].Amount.String() != "200" {
		t.Fatalf("unexpected ordering: %s then %s", recent[0].Amount, recent[1].Amount)
	}

	roomTips, err := service.RoomTips(ctx, room.ID, 10)
	if err != nil {
		t.Fatalf("room tips failed: %v", err)
	}
	if len(roomTips) != 3 || roomTips[0].Amount.String() != "300" {
		t.Fatalf("unexpected room history: %d records, first %s", len(roomTips), roomTips[0].Amount)
	}
}

func TestRoomTipsUnknownRoomFails(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.RoomTips(context.Background(), 404, 10)
	if !errors.Is(err, domainerrors.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestWithdrawRequiresAdmin(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Withdraw(context.Background(), "intruder", "somewhere", sdkmath.NewInt(10))
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestWithdrawZeroAmountSweepsFullBalance(t *testing.T) {
	service, store, gateway := newTestService(t)
	ctx := context.Background()

	if _, err := service.Deposit(ctx, "donor", sdkmath.NewInt(2500)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	entry, err := service.Withdraw(ctx, "admin_1", "treasury_dest", sdkmath.ZeroInt())
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if entry.Amount.String() != "2500" {
		t.Fatalf("expected full sweep of 2500, got %s", entry.Amount)
	}
	if gateway.BalanceOf("treasury_dest").String() != "2500" {
		t.Fatalf("destination balance: %s", gateway.BalanceOf("treasury_dest"))
	}

	balance, err := service.VaultBalance(ctx)
	if err != nil {
		t.Fatalf("vault balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("vault not emptied: %s", balance)
	}

	entries := store.TreasuryEntries()
	if len(entries) != 2 {
		t.Fatalf("expected deposit+withdrawal entries, got %d", len(entries))
	}
	if entries[1].Kind != entities.TreasuryEntryWithdrawal {
		t.Fatalf("expected withdrawal entry, got %s", entries[1].Kind)
	}
}

func TestWithdrawMoreThanBalanceFails(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Deposit(ctx, "donor", sdkmath.NewInt(100)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	_, err := service.Withdraw(ctx, "admin_1", "dest", sdkmath.NewInt(500))
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestWithdrawEmptyVaultFails(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Withdraw(context.Background(), "admin_1", "dest", sdkmath.ZeroInt())
	if !errors.Is(err, domainerrors.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

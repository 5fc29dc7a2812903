package ports

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	contractsv1 "tipstream/contracts/gen/events/v1"
	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
)

type CreateSchemeInput struct {
	Name       string
	Recipients []entities.Address
	ShareBps   []uint32
}

type UpdateSchemeInput struct {
	SchemeID   uint64
	Name       string
	Recipients []entities.Address
	ShareBps   []uint32
	Active     bool
}

type SchemeRepository interface {
	// CreateScheme assigns and returns the next sequential scheme id,
	// starting at 0, appending the outbox event in the same atomic step.
	CreateScheme(ctx context.Context, scheme entities.Scheme, envelope EventEnvelope) (uint64, error)
	// UpdateScheme replaces the full scheme row and appends the outbox
	// event in the same atomic step.
	UpdateScheme(ctx context.Context, scheme entities.Scheme, envelope EventEnvelope) error
	GetScheme(ctx context.Context, schemeID uint64) (entities.Scheme, error)
	CountSchemes(ctx context.Context) (uint64, error)
}

type RoomRepository interface {
	// CreateRoom assigns and returns the next sequential room id,
	// starting at 1, advancing the global room counter and appending the
	// outbox event in the same atomic step.
	CreateRoom(ctx context.Context, room entities.Room, envelope EventEnvelope) (uint64, error)
	GetRoom(ctx context.Context, roomID uint64) (entities.Room, error)
	// UpdateRoomBinding replaces the streamer-mutable fields (scheme
	// binding and active flag) of an existing room.
	UpdateRoomBinding(ctx context.Context, roomID uint64, schemeID uint64, active bool) error
	// ListStreamerRooms returns room ids in insertion order.
	ListStreamerRooms(ctx context.Context, streamer entities.Address) ([]uint64, error)
}

// TipMutation is the full state delta of one successful tip operation. The
// repository applies it as a single atomic step: room counters, tipper stats,
// global stats, history records, and the outbox event commit together or not
// at all.
type TipMutation struct {
	RoomID        uint64
	Tipper        entities.Address
	Amount        sdkmath.Int
	TipCountDelta uint64
	Records       []entities.TipRecord
	Envelope      EventEnvelope
}

type LedgerRepository interface {
	ApplyTip(ctx context.Context, mutation TipMutation) error
	GetUserStats(ctx context.Context, user entities.Address) (entities.UserStats, error)
	GetLedgerStats(ctx context.Context) (entities.LedgerStats, error)
	// ListRecentTips and ListRoomTips return at most limit records,
	// most-recent first.
	ListRecentTips(ctx context.Context, limit int) ([]entities.TipRecord, error)
	ListRoomTips(ctx context.Context, roomID uint64, limit int) ([]entities.TipRecord, error)
}

type TreasuryRepository interface {
	ApplyTreasuryEntry(ctx context.Context, entry entities.TreasuryEntry, envelope EventEnvelope) error
}

type Payout struct {
	Recipient entities.Address
	Amount    sdkmath.Int
}

// PaymentGateway is the host value-transfer primitive. Distribute is
// all-or-nothing: if any recipient rejects its payout no value moves and the
// call reports failure synchronously.
type PaymentGateway interface {
	Distribute(ctx context.Context, tipper entities.Address, payouts []Payout) error
	Deposit(ctx context.Context, from entities.Address, amount sdkmath.Int) error
	VaultBalance(ctx context.Context) (sdkmath.Int, error)
	WithdrawFromVault(ctx context.Context, to entities.Address, amount sdkmath.Int) error
}

type Clock interface {
	Now() time.Time
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
	Seq         uint64
}

// Store is the in-memory reference implementation of every repository port.
// A single mutex serializes mutations, matching the engine's single-writer
// contract.
type Store struct {
	mu sync.RWMutex

	schemes       map[uint64]entities.Scheme
	nextSchemeID  uint64
	rooms         map[uint64]entities.Room
	nextRoomID    uint64
	streamerRooms map[entities.Address][]uint64

	userStats map[entities.Address]entities.UserStats
	stats     entities.LedgerStats

	tips     []entities.TipRecord
	roomTips map[uint64][]entities.TipRecord
	treasury []entities.TreasuryEntry

	outbox  map[string]outboxRecord
	nextSeq uint64
}

func NewStore() *Store {
	return &Store{
		schemes:       make(map[uint64]entities.Scheme),
		nextSchemeID:  0,
		rooms:         make(map[uint64]entities.Room),
		nextRoomID:    1,
		streamerRooms: make(map[entities.Address][]uint64),
		userStats:     make(map[entities.Address]entities.UserStats),
		stats:         entities.LedgerStats{TotalVolume: sdkmath.ZeroInt()},
		roomTips:      make(map[uint64][]entities.TipRecord),
		outbox:        make(map[string]outboxRecord),
	}
}

func (s *Store) CreateScheme(_ context.Context, scheme entities.Scheme, envelope ports.EventEnvelope) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheme.ID = s.nextSchemeID
	s.nextSchemeID++
	scheme.Recipients = append([]entities.Address(nil), scheme.Recipients...)
	scheme.ShareBps = append([]uint32(nil), scheme.ShareBps...)
	s.schemes[scheme.ID] = scheme
	if err := s.appendOutboxLocked(envelope); err != nil {
		return 0, err
	}
	return scheme.ID, nil
}

func (s *Store) UpdateScheme(_ context.Context, scheme entities.Scheme, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schemes[scheme.ID]; !ok {
		return domainerrors.ErrSchemeNotFound
	}
	scheme.Recipients = append([]entities.Address(nil), scheme.Recipients...)
	scheme.ShareBps = append([]uint32(nil), scheme.ShareBps...)
	s.schemes[scheme.ID] = scheme
	return s.appendOutboxLocked(envelope)
}

func (s *Store) GetScheme(_ context.Context, schemeID uint64) (entities.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scheme, ok := s.schemes[schemeID]
	if !ok {
		return entities.Scheme{}, domainerrors.ErrSchemeNotFound
	}
	return cloneScheme(scheme), nil
}

func (s *Store) CountSchemes(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.schemes)), nil
}

func (s *Store) CreateRoom(_ context.Context, room entities.Room, envelope ports.EventEnvelope) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room.ID = s.nextRoomID
	s.nextRoomID++
	s.rooms[room.ID] = room
	s.streamerRooms[room.Streamer] = append(s.streamerRooms[room.Streamer], room.ID)
	s.stats.TotalRooms++
	if err := s.appendOutboxLocked(envelope); err != nil {
		return 0, err
	}
	return room.ID, nil
}

func (s *Store) GetRoom(_ context.Context, roomID uint64) (entities.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return entities.Room{}, domainerrors.ErrRoomNotFound
	}
	return room, nil
}

func (s *Store) UpdateRoomBinding(_ context.Context, roomID, schemeID uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domainerrors.ErrRoomNotFound
	}
	room.SchemeID = schemeID
	room.Active = active
	s.rooms[roomID] = room
	return nil
}

func (s *Store) ListStreamerRooms(_ context.Context, streamer entities.Address) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]uint64(nil), s.streamerRooms[streamer]...), nil
}

func (s *Store) ApplyTip(_ context.Context, mutation ports.TipMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[mutation.RoomID]
	if !ok {
		return domainerrors.ErrRoomNotFound
	}

	room.TotalReceived = room.TotalReceived.Add(mutation.Amount)
	room.TipCount += mutation.TipCountDelta
	s.rooms[room.ID] = room

	stats, ok := s.userStats[mutation.Tipper]
	if !ok {
		stats = entities.UserStats{User: mutation.Tipper, TotalTipped: sdkmath.ZeroInt()}
	}
	stats.TotalTipped = stats.TotalTipped.Add(mutation.Amount)
	stats.TipCount += mutation.TipCountDelta
	s.userStats[mutation.Tipper] = stats

	s.stats.TotalTips += mutation.TipCountDelta
	s.stats.TotalVolume = s.stats.TotalVolume.Add(mutation.Amount)

	for _, record := range mutation.Records {
		s.tips = append(s.tips, record)
		s.roomTips[record.RoomID] = append(s.roomTips[record.RoomID], record)
	}
	return s.appendOutboxLocked(mutation.Envelope)
}

func (s *Store) GetUserStats(_ context.Context, user entities.Address) (entities.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.userStats[user]
	if !ok {
		return entities.UserStats{User: user, TotalTipped: sdkmath.ZeroInt()}, nil
	}
	return stats, nil
}

func (s *Store) GetLedgerStats(_ context.Context) (entities.LedgerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats, nil
}

func (s *Store) ListRecentTips(_ context.Context, limit int) ([]entities.TipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return recentFirst(s.tips, limit), nil
}

func (s *Store) ListRoomTips(_ context.Context, roomID uint64, limit int) ([]entities.TipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return recentFirst(s.roomTips[roomID], limit), nil
}

func (s *Store) ApplyTreasuryEntry(_ context.Context, entry entities.TreasuryEntry, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.treasury = append(s.treasury, entry)
	return s.appendOutboxLocked(envelope)
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	type pending struct {
		message ports.OutboxMessage
		seq     uint64
	}
	items := make([]pending, 0)
	for _, row := range s.outbox {
		if row.Status == outboxStatusPending {
			items = append(items, pending{message: row.Message, seq: row.Seq})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].seq < items[j].seq
	})
	if len(items) > limit {
		items = items[:limit]
	}
	messages := make([]ports.OutboxMessage, 0, len(items))
	for _, item := range items {
		messages = append(messages, item.message)
	}
	return messages, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return fmt.Errorf("outbox entry %s not found", outboxID)
	}
	ts := publishedAt.UTC()
	row.Status = outboxStatusPublished
	row.PublishedAt = &ts
	s.outbox[outboxID] = row
	return nil
}

// TreasuryEntries exposes the treasury log for tests and inspection tooling.
func (s *Store) TreasuryEntries() []entities.TreasuryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entities.TreasuryEntry(nil), s.treasury...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) appendOutboxLocked(envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.nextSeq++
	s.outbox[envelope.EventID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
		Status: outboxStatusPending,
		Seq:    s.nextSeq,
	}
	return nil
}

func cloneScheme(scheme entities.Scheme) entities.Scheme {
	scheme.Recipients = append([]entities.Address(nil), scheme.Recipients...)
	scheme.ShareBps = append([]uint32(nil), scheme.ShareBps...)
	return scheme
}

func recentFirst(records []entities.TipRecord, limit int) []entities.TipRecord {
	if limit <= 0 {
		limit = 50
	}
	count := len(records)
	if count < limit {
		limit = count
	}
	items := make([]entities.TipRecord, 0, limit)
	for i := count - 1; i >= count-limit; i-- {
		items = append(items, records[i])
	}
	return items
}

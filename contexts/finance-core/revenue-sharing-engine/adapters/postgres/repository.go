package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	ledgerStatsRowID = 1
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateScheme(ctx context.Context, scheme entities.Scheme, envelope ports.EventEnvelope) (uint64, error) {
	var schemeID uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Raw("SELECT COALESCE(MAX(scheme_id), -1) + 1 FROM revenue_schemes").Scan(&next).Error; err != nil {
			return err
		}
		scheme.ID = uint64(next)

		row, err := schemeModelFromEntity(scheme)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("scheme id %d already allocated", scheme.ID)
			}
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		schemeID = scheme.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return schemeID, nil
}

func (r *Repository) UpdateScheme(ctx context.Context, scheme entities.Scheme, envelope ports.EventEnvelope) error {
	row, err := schemeModelFromEntity(scheme)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&schemeModel{}).
			Where("scheme_id = ?", scheme.ID).
			Updates(map[string]any{
				"name":       row.Name,
				"recipients": row.Recipients,
				"share_bps":  row.ShareBps,
				"active":     row.Active,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrSchemeNotFound
		}
		return insertOutboxEnvelopeTx(tx, envelope)
	})
}

func (r *Repository) GetScheme(ctx context.Context, schemeID uint64) (entities.Scheme, error) {
	var row schemeModel
	err := r.db.WithContext(ctx).
		Where("scheme_id = ?", schemeID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Scheme{}, domainerrors.ErrSchemeNotFound
		}
		return entities.Scheme{}, err
	}
	return row.toEntity()
}

func (r *Repository) CountSchemes(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schemeModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (r *Repository) CreateRoom(ctx context.Context, room entities.Room, envelope ports.EventEnvelope) (uint64, error) {
	var roomID uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Raw("SELECT COALESCE(MAX(room_id), 0) + 1 FROM rooms").Scan(&next).Error; err != nil {
			return err
		}
		room.ID = uint64(next)

		row := roomModelFromEntity(room)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		stats, err := lockLedgerStatsTx(tx)
		if err != nil {
			return err
		}
		stats.TotalRooms++
		if err := tx.Model(&ledgerStatsModel{}).
			Where("id = ?", ledgerStatsRowID).
			Updates(map[string]any{"total_rooms": stats.TotalRooms}).
			Error; err != nil {
			return err
		}

		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		roomID = room.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return roomID, nil
}

func (r *Repository) GetRoom(ctx context.Context, roomID uint64) (entities.Room, error) {
	var row roomModel
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Room{}, domainerrors.ErrRoomNotFound
		}
		return entities.Room{}, err
	}
	return row.toEntity()
}

func (r *Repository) UpdateRoomBinding(ctx context.Context, roomID, schemeID uint64, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("room_id = ?", roomID).
		Updates(map[string]any{
			"scheme_id": schemeID,
			"active":    active,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoomNotFound
	}
	return nil
}

func (r *Repository) ListStreamerRooms(ctx context.Context, streamer entities.Address) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("streamer = ?", streamer.String()).
		Order("room_id ASC").
		Pluck("room_id", &ids).
		Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) ApplyTip(ctx context.Context, mutation ports.TipMutation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row roomModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ?", mutation.RoomID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRoomNotFound
			}
			return err
		}
		room, err := row.toEntity()
		if err != nil {
			return err
		}

		room.TotalReceived = room.TotalReceived.Add(mutation.Amount)
		room.TipCount += mutation.TipCountDelta
		if err := tx.Model(&roomModel{}).
			Where("room_id = ?", room.ID).
			Updates(map[string]any{
				"total_received": room.TotalReceived.String(),
				"tip_count":      room.TipCount,
			}).
			Error; err != nil {
			return err
		}

		if err := upsertUserStatsTx(tx, mutation.Tipper, mutation.Amount, mutation.TipCountDelta); err != nil {
			return err
		}

		stats, err := lockLedgerStatsTx(tx)
		if err != nil {
			return err
		}
		volume, err := parseAmount(stats.TotalVolume)
		if err != nil {
			return err
		}
		if err := tx.Model(&ledgerStatsModel{}).
			Where("id = ?", ledgerStatsRowID).
			Updates(map[string]any{
				"total_tips":   stats.TotalTips + mutation.TipCountDelta,
				"total_volume": volume.Add(mutation.Amount).String(),
			}).
			Error; err != nil {
			return err
		}

		for _, record := range mutation.Records {
			recordRow := tipRecordModelFromEntity(record)
			if err := tx.Create(&recordRow).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("tip record %s already exists", record.RecordID)
				}
				return err
			}
		}
		return insertOutboxEnvelopeTx(tx, mutation.Envelope)
	})
}

func (r *Repository) GetUserStats(ctx context.Context, user entities.Address) (entities.UserStats, error) {
	var row userStatsModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", user.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.UserStats{User: user, TotalTipped: sdkmath.ZeroInt()}, nil
		}
		return entities.UserStats{}, err
	}
	return row.toEntity()
}

func (r *Repository) GetLedgerStats(ctx context.Context) (entities.LedgerStats, error) {
	var row ledgerStatsModel
	err := r.db.WithContext(ctx).
		Where("id = ?", ledgerStatsRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LedgerStats{TotalVolume: sdkmath.ZeroInt()}, nil
		}
		return entities.LedgerStats{}, err
	}
	return row.toEntity()
}

func (r *Repository) ListRecentTips(ctx context.Context, limit int) ([]entities.TipRecord, error) {
	return r.listTips(ctx, nil, limit)
}

func (r *Repository) ListRoomTips(ctx context.Context, roomID uint64, limit int) ([]entities.TipRecord, error) {
	return r.listTips(ctx, &roomID, limit)
}

func (r *Repository) listTips(ctx context.Context, roomID *uint64, limit int) ([]entities.TipRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	tx := r.db.WithContext(ctx).Model(&tipRecordModel{})
	if roomID != nil {
		tx = tx.Where("room_id = ?", *roomID)
	}

	var rows []tipRecordModel
	if err := tx.Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.TipRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}
	return items, nil
}

func (r *Repository) ApplyTreasuryEntry(ctx context.Context, entry entities.TreasuryEntry, envelope ports.EventEnvelope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := treasuryEntryModelFromEntity(entry)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("treasury entry %s already exists", entry.EntryID)
			}
			return err
		}
		return insertOutboxEnvelopeTx(tx, envelope)
	})
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("outbox entry %s not found", outboxID)
	}
	return nil
}

func upsertUserStatsTx(tx *gorm.DB, user entities.Address, amount sdkmath.Int, countDelta uint64) error {
	var row userStatsModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", user.String()).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&userStatsModel{
			UserID:      user.String(),
			TotalTipped: amount.String(),
			TipCount:    countDelta,
		}).Error
	}
	if err != nil {
		return err
	}

	total, err := parseAmount(row.TotalTipped)
	if err != nil {
		return err
	}
	return tx.Model(&userStatsModel{}).
		Where("user_id = ?", row.UserID).
		Updates(map[string]any{
			"total_tipped": total.Add(amount).String(),
			"tip_count":    row.TipCount + countDelta,
		}).
		Error
}

func lockLedgerStatsTx(tx *gorm.DB) (ledgerStatsModel, error) {
	seed := ledgerStatsModel{
		ID:          ledgerStatsRowID,
		TotalVolume: sdkmath.ZeroInt().String(),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return ledgerStatsModel{}, err
	}

	var row ledgerStatsModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", ledgerStatsRowID).
		First(&row).
		Error; err != nil {
		return ledgerStatsModel{}, err
	}
	return row, nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

type schemeModel struct {
	SchemeID   uint64    `gorm:"column:scheme_id;primaryKey"`
	Name       string    `gorm:"column:name"`
	Recipients []byte    `gorm:"column:recipients;type:jsonb"`
	ShareBps   []byte    `gorm:"column:share_bps;type:jsonb"`
	Active     bool      `gorm:"column:active"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (schemeModel) TableName() string {
	return "revenue_schemes"
}

func schemeModelFromEntity(item entities.Scheme) (schemeModel, error) {
	recipients := make([]string, 0, len(item.Recipients))
	for _, recipient := range item.Recipients {
		recipients = append(recipients, recipient.String())
	}
	recipientsJSON, err := json.Marshal(recipients)
	if err != nil {
		return schemeModel{}, err
	}
	sharesJSON, err := json.Marshal(item.ShareBps)
	if err != nil {
		return schemeModel{}, err
	}
	return schemeModel{
		SchemeID:   item.ID,
		Name:       item.Name,
		Recipients: recipientsJSON,
		ShareBps:   sharesJSON,
		Active:     item.Active,
		CreatedAt:  item.CreatedAt.UTC(),
	}, nil
}

func (m schemeModel) toEntity() (entities.Scheme, error) {
	var recipients []string
	if err := json.Unmarshal(m.Recipients, &recipients); err != nil {
		return entities.Scheme{}, fmt.Errorf("decode scheme %d recipients: %w", m.SchemeID, err)
	}
	var shares []uint32
	if err := json.Unmarshal(m.ShareBps, &shares); err != nil {
		return entities.Scheme{}, fmt.Errorf("decode scheme %d shares: %w", m.SchemeID, err)
	}

	addresses := make([]entities.Address, 0, len(recipients))
	for _, recipient := range recipients {
		addresses = append(addresses, entities.Address(recipient))
	}
	return entities.Scheme{
		ID:         m.SchemeID,
		Name:       m.Name,
		Recipients: addresses,
		ShareBps:   shares,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt.UTC(),
	}, nil
}

type roomModel struct {
	RoomID        uint64    `gorm:"column:room_id;primaryKey"`
	Streamer      string    `gorm:"column:streamer"`
	SchemeID      uint64    `gorm:"column:scheme_id"`
	Active        bool      `gorm:"column:active"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	TotalReceived string    `gorm:"column:total_received"`
	TipCount      uint64    `gorm:"column:tip_count"`
}

func (roomModel) TableName() string {
	return "rooms"
}

func roomModelFromEntity(item entities.Room) roomModel {
	return roomModel{
		RoomID:        item.ID,
		Streamer:      item.Streamer.String(),
		SchemeID:      item.SchemeID,
		Active:        item.Active,
		CreatedAt:     item.CreatedAt.UTC(),
		TotalReceived: item.TotalReceived.String(),
		TipCount:      item.TipCount,
	}
}

func (m roomModel) toEntity() (entities.Room, error) {
	total, err := parseAmount(m.TotalReceived)
	if err != nil {
		return entities.Room{}, fmt.Errorf("decode room %d total: %w", m.RoomID, err)
	}
	return entities.Room{
		ID:            m.RoomID,
		Streamer:      entities.Address(m.Streamer),
		SchemeID:      m.SchemeID,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt.UTC(),
		TotalReceived: total,
		TipCount:      m.TipCount,
	}, nil
}

type tipRecordModel struct {
	Seq        uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	RecordID   string    `gorm:"column:record_id;uniqueIndex"`
	RoomID     uint64    `gorm:"column:room_id;index"`
	Tipper     string    `gorm:"column:tipper"`
	Streamer   string    `gorm:"column:streamer"`
	Amount     string    `gorm:"column:amount"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (tipRecordModel) TableName() string {
	return "tip_records"
}

func tipRecordModelFromEntity(item entities.TipRecord) tipRecordModel {
	return tipRecordModel{
		RecordID:   item.RecordID,
		RoomID:     item.RoomID,
		Tipper:     item.Tipper.String(),
		Streamer:   item.Streamer.String(),
		Amount:     item.Amount.String(),
		OccurredAt: item.OccurredAt.UTC(),
	}
}

func (m tipRecordModel) toEntity() (entities.TipRecord, error) {
	amount, err := parseAmount(m.Amount)
	if err != nil {
		return entities.TipRecord{}, fmt.Errorf("decode tip record %s amount: %w", m.RecordID, err)
	}
	return entities.TipRecord{
		RecordID:   m.RecordID,
		RoomID:     m.RoomID,
		Tipper:     entities.Address(m.Tipper),
		Streamer:   entities.Address(m.Streamer),
		Amount:     amount,
		OccurredAt: m.OccurredAt.UTC(),
	}, nil
}

type userStatsModel struct {
	UserID      string `gorm:"column:user_id;primaryKey"`
	TotalTipped string `gorm:"column:total_tipped"`
	TipCount    uint64 `gorm:"column:tip_count"`
}

func (userStatsModel) TableName() string {
	return "user_stats"
}

func (m userStatsModel) toEntity() (entities.UserStats, error) {
	total, err := parseAmount(m.TotalTipped)
	if err != nil {
		return entities.UserStats{}, fmt.Errorf("decode user %s stats: %w", m.UserID, err)
	}
	return entities.UserStats{
		User:        entities.Address(m.UserID),
		TotalTipped: total,
		TipCount:    m.TipCount,
	}, nil
}

type ledgerStatsModel struct {
	ID          int    `gorm:"column:id;primaryKey"`
	TotalRooms  uint64 `gorm:"column:total_rooms"`
	TotalTips   uint64 `gorm:"column:total_tips"`
	TotalVolume string `gorm:"column:total_volume"`
}

func (ledgerStatsModel) TableName() string {
	return "ledger_stats"
}

func (m ledgerStatsModel) toEntity() (entities.LedgerStats, error) {
	volume, err := parseAmount(m.TotalVolume)
	if err != nil {
		return entities.LedgerStats{}, fmt.Errorf("decode ledger stats volume: %w", err)
	}
	return entities.LedgerStats{
		TotalRooms:  m.TotalRooms,
		TotalTips:   m.TotalTips,
		TotalVolume: volume,
	}, nil
}

type treasuryEntryModel struct {
	EntryID      string    `gorm:"column:entry_id;primaryKey"`
	Kind         string    `gorm:"column:kind"`
	Counterparty string    `gorm:"column:counterparty"`
	Amount       string    `gorm:"column:amount"`
	OccurredAt   time.Time `gorm:"column:occurred_at"`
}

func (treasuryEntryModel) TableName() string {
	return "treasury_log"
}

func treasuryEntryModelFromEntity(item entities.TreasuryEntry) treasuryEntryModel {
	return treasuryEntryModel{
		EntryID:      item.EntryID,
		Kind:         string(item.Kind),
		Counterparty: item.Counterparty.String(),
		Amount:       item.Amount.String(),
		OccurredAt:   item.OccurredAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "revenue_sharing_outbox"
}

func parseAmount(value string) (sdkmath.Int, error) {
	if value == "" {
		return sdkmath.ZeroInt(), nil
	}
	amount, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("malformed amount %q", value)
	}
	return amount, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

const sourceService = "revenue-sharing-engine"

// Service is the ledger state machine. Every mutating operation either fully
// succeeds or fully fails; the repository ports apply each mutation as one
// atomic step, so readers only ever observe committed state.
type Service struct {
	Schemes  ports.SchemeRepository
	Rooms    ports.RoomRepository
	Ledger   ports.LedgerRepository
	Treasury ports.TreasuryRepository
	Payments ports.PaymentGateway
	Clock    ports.Clock

	// Admin is the only identity allowed to move the undistributed vault
	// balance.
	Admin entities.Address

	// BlockInactiveSchemeAssignment rejects binding a room to an inactive
	// scheme. BlockTipsOnInactiveScheme additionally gates tipping through
	// rooms already bound to one.
	BlockInactiveSchemeAssignment bool
	BlockTipsOnInactiveScheme     bool

	Logger *slog.Logger
}

// DefaultSchemeName is the label of the auto-created scheme 0.
const DefaultSchemeName = "Default"

const (
	defaultPlatformShareBps = 9500
	defaultTreasuryShareBps = 500
)

// EnsureDefaultScheme creates scheme 0 when the scheme table is empty, so
// rooms can be opened without a prior scheme-creation call.
func (s Service) EnsureDefaultScheme(ctx context.Context, operator, treasury entities.Address) error {
	count, err := s.Schemes.CountSchemes(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := s.now()
	scheme := entities.Scheme{
		Name:       DefaultSchemeName,
		Recipients: []entities.Address{operator, treasury},
		ShareBps:   []uint32{defaultPlatformShareBps, defaultTreasuryShareBps},
		Active:     true,
		CreatedAt:  now,
	}
	envelope, err := newEnvelope("scheme.created", "0", now, map[string]any{
		"scheme_id": uint64(0),
		"name":      scheme.Name,
	})
	if err != nil {
		return err
	}
	schemeID, err := s.Schemes.CreateScheme(ctx, scheme, envelope)
	if err != nil {
		return err
	}

	ResolveLogger(s.Logger).Info("default revenue scheme created",
		"event", "default_scheme_created",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"scheme_id", schemeID,
	)
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func newEnvelope(eventType, partitionKey string, occurredAt time.Time, data map[string]any) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	eventID := uuid.NewString()
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt.UTC(),
		SourceService: sourceService,
		TraceID:       eventID,
		SchemaVersion: 1,
		PartitionKey:  partitionKey,
		Data:          payload,
	}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

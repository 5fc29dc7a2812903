package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

func (s Service) CreateScheme(ctx context.Context, input ports.CreateSchemeInput) (entities.Scheme, error) {
	now := s.now()
	scheme := entities.Scheme{
		Name:       strings.TrimSpace(input.Name),
		Recipients: append([]entities.Address(nil), input.Recipients...),
		ShareBps:   append([]uint32(nil), input.ShareBps...),
		Active:     true,
		CreatedAt:  now,
	}
	if !scheme.HasValidSplit() {
		return entities.Scheme{}, domainerrors.ErrInvalidSplit
	}
	if scheme.HasZeroRecipient() {
		return entities.Scheme{}, domainerrors.ErrInvalidRecipient
	}

	envelope, err := newEnvelope("scheme.created", scheme.Name, now, map[string]any{
		"name":            scheme.Name,
		"recipient_count": len(scheme.Recipients),
	})
	if err != nil {
		return entities.Scheme{}, err
	}
	schemeID, err := s.Schemes.CreateScheme(ctx, scheme, envelope)
	if err != nil {
		return entities.Scheme{}, fmt.Errorf("create scheme: %w", err)
	}
	scheme.ID = schemeID

	ResolveLogger(s.Logger).Info("revenue scheme created",
		"event", "scheme_created",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"scheme_id", scheme.ID,
		"name", scheme.Name,
		"recipient_count", len(scheme.Recipients),
	)
	return scheme, nil
}

// UpdateScheme replaces name, recipients, shares, and the active flag in one
// atomic step. Partial updates are not supported.
func (s Service) UpdateScheme(ctx context.Context, input ports.UpdateSchemeInput) (entities.Scheme, error) {
	existing, err := s.Schemes.GetScheme(ctx, input.SchemeID)
	if err != nil {
		return entities.Scheme{}, err
	}

	scheme := entities.Scheme{
		ID:         existing.ID,
		Name:       strings.TrimSpace(input.Name),
		Recipients: append([]entities.Address(nil), input.Recipients...),
		ShareBps:   append([]uint32(nil), input.ShareBps...),
		Active:     input.Active,
		CreatedAt:  existing.CreatedAt,
	}
	if !scheme.HasValidSplit() {
		return entities.Scheme{}, domainerrors.ErrInvalidSplit
	}
	if scheme.HasZeroRecipient() {
		return entities.Scheme{}, domainerrors.ErrInvalidRecipient
	}

	envelope, err := newEnvelope("scheme.updated", scheme.Name, s.now(), map[string]any{
		"scheme_id":       scheme.ID,
		"name":            scheme.Name,
		"recipient_count": len(scheme.Recipients),
		"active":          scheme.Active,
	})
	if err != nil {
		return entities.Scheme{}, err
	}
	if err := s.Schemes.UpdateScheme(ctx, scheme, envelope); err != nil {
		return entities.Scheme{}, fmt.Errorf("update scheme %d: %w", scheme.ID, err)
	}

	ResolveLogger(s.Logger).Info("revenue scheme updated",
		"event", "scheme_updated",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"scheme_id", scheme.ID,
		"active", strconv.FormatBool(scheme.Active),
	)
	return scheme, nil
}

func (s Service) GetScheme(ctx context.Context, schemeID uint64) (entities.Scheme, error) {
	return s.Schemes.GetScheme(ctx, schemeID)
}

func (s Service) SchemeCount(ctx context.Context) (uint64, error) {
	return s.Schemes.CountSchemes(ctx)
}

package application

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
)

// Withdraw moves residual vault balance out of the engine. Rounding
// remainders never accumulate in the vault during normal tip flow; residue
// comes from direct deposits or host-level refunds. amount == 0 means
// withdraw everything.
func (s Service) Withdraw(ctx context.Context, caller, to entities.Address, amount sdkmath.Int) (entities.TreasuryEntry, error) {
	if caller != s.Admin || s.Admin.IsZero() {
		return entities.TreasuryEntry{}, domainerrors.ErrUnauthorized
	}
	if to.IsZero() {
		return entities.TreasuryEntry{}, domainerrors.ErrInvalidRecipient
	}
	if amount.IsNil() || amount.IsNegative() {
		return entities.TreasuryEntry{}, domainerrors.ErrInvalidAmount
	}

	balance, err := s.Payments.VaultBalance(ctx)
	if err != nil {
		return entities.TreasuryEntry{}, fmt.Errorf("read vault balance: %w", err)
	}
	if amount.IsZero() {
		amount = balance
	}
	if amount.IsZero() || balance.LT(amount) {
		return entities.TreasuryEntry{}, domainerrors.ErrInsufficientBalance
	}

	if err := s.Payments.WithdrawFromVault(ctx, to, amount); err != nil {
		return entities.TreasuryEntry{}, fmt.Errorf("withdraw from vault: %w", err)
	}

	now := s.now()
	entry := entities.TreasuryEntry{
		EntryID:      uuid.NewString(),
		Kind:         entities.TreasuryEntryWithdrawal,
		Counterparty: to,
		Amount:       amount,
		OccurredAt:   now,
	}
	envelope, err := newEnvelope("treasury.withdrawn", to.String(), now, map[string]any{
		"to":     to.String(),
		"amount": amount.String(),
	})
	if err != nil {
		return entities.TreasuryEntry{}, err
	}
	if err := s.Treasury.ApplyTreasuryEntry(ctx, entry, envelope); err != nil {
		return entities.TreasuryEntry{}, fmt.Errorf("record withdrawal: %w", err)
	}

	ResolveLogger(s.Logger).Info("vault balance withdrawn",
		"event", "treasury_withdrawn",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"to", to.String(),
		"amount", amount.String(),
	)
	return entry, nil
}

// Deposit credits the vault directly, mirroring the plain value transfers the
// engine can receive outside the tip flow.
func (s Service) Deposit(ctx context.Context, from entities.Address, amount sdkmath.Int) (entities.TreasuryEntry, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return entities.TreasuryEntry{}, domainerrors.ErrInvalidAmount
	}

	if err := s.Payments.Deposit(ctx, from, amount); err != nil {
		return entities.TreasuryEntry{}, fmt.Errorf("deposit to vault: %w", err)
	}

	now := s.now()
	entry := entities.TreasuryEntry{
		EntryID:      uuid.NewString(),
		Kind:         entities.TreasuryEntryDeposit,
		Counterparty: from,
		Amount:       amount,
		OccurredAt:   now,
	}
	envelope, err := newEnvelope("treasury.deposited", from.String(), now, map[string]any{
		"from":   from.String(),
		"amount": amount.String(),
	})
	if err != nil {
		return entities.TreasuryEntry{}, err
	}
	if err := s.Treasury.ApplyTreasuryEntry(ctx, entry, envelope); err != nil {
		return entities.TreasuryEntry{}, fmt.Errorf("record deposit: %w", err)
	}

	ResolveLogger(s.Logger).Info("vault deposit recorded",
		"event", "treasury_deposited",
		"module", "finance-core/revenue-sharing-engine",
		"layer", "application",
		"from", from.String(),
		"amount", amount.String(),
	)
	return entry, nil
}

func (s Service) VaultBalance(ctx context.Context) (sdkmath.Int, error) {
	return s.Payments.VaultBalance(ctx)
}

package memory

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	domainerrors "tipstream/contexts/finance-core/revenue-sharing-engine/domain/errors"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

// Gateway is the in-memory value-transfer primitive. Distributions validate
// every recipient before crediting any of them, so a rejection moves nothing.
type Gateway struct {
	mu       sync.RWMutex
	balances map[entities.Address]sdkmath.Int
	vault    sdkmath.Int
	rejected map[entities.Address]bool
}

func NewGateway() *Gateway {
	return &Gateway{
		balances: make(map[entities.Address]sdkmath.Int),
		vault:    sdkmath.ZeroInt(),
		rejected: make(map[entities.Address]bool),
	}
}

func (g *Gateway) Distribute(_ context.Context, _ entities.Address, payouts []ports.Payout) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, payout := range payouts {
		if g.rejected[payout.Recipient] {
			return fmt.Errorf("payout to %s: %w", payout.Recipient, domainerrors.ErrTransferFailed)
		}
	}
	for _, payout := range payouts {
		g.creditLocked(payout.Recipient, payout.Amount)
	}
	return nil
}

func (g *Gateway) Deposit(_ context.Context, _ entities.Address, amount sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.vault = g.vault.Add(amount)
	return nil
}

func (g *Gateway) VaultBalance(_ context.Context) (sdkmath.Int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.vault, nil
}

func (g *Gateway) WithdrawFromVault(_ context.Context, to entities.Address, amount sdkmath.Int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rejected[to] {
		return fmt.Errorf("withdrawal to %s: %w", to, domainerrors.ErrTransferFailed)
	}
	if g.vault.LT(amount) {
		return domainerrors.ErrInsufficientBalance
	}
	g.vault = g.vault.Sub(amount)
	g.creditLocked(to, amount)
	return nil
}

// RejectPayoutsTo makes the gateway refuse transfers to addr, simulating a
// recipient that rejects value.
func (g *Gateway) RejectPayoutsTo(addr entities.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rejected[addr] = true
}

// BalanceOf reports the total credited to addr across all distributions.
func (g *Gateway) BalanceOf(addr entities.Address) sdkmath.Int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	balance, ok := g.balances[addr]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return balance
}

func (g *Gateway) creditLocked(addr entities.Address, amount sdkmath.Int) {
	balance, ok := g.balances[addr]
	if !ok {
		balance = sdkmath.ZeroInt()
	}
	g.balances[addr] = balance.Add(amount)
}

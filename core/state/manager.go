package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"launchpad/native/sale"
	"launchpad/storage"
)

var (
	// ErrUnauthorizedTransfer is returned when the authorizing identity does
	// not control the source account.
	ErrUnauthorizedTransfer = errors.New("state: transfer not authorized by source account")
	// ErrInsufficientFunds is returned when the source account balance is
	// lower than the transfer amount.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrBalanceOverflow is returned when crediting would wrap the
	// destination balance.
	ErrBalanceOverflow = errors.New("state: balance overflow")
)

// Manager persists sale aggregates, buyer positions, allowlist records and
// asset balances in a key-value database using RLP encoding. It implements
// both the engine's state backend and its Ledger collaborator, which makes
// it the single source of truth hosts and tests wire the engine against.
type Manager struct {
	db storage.Database
}

// NewManager constructs a Manager backed by the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Stored representations use unsigned integers throughout because RLP does
// not encode signed values; schedule fields are validated non-negative
// before they reach the store.

type storedSaleState struct {
	ID                 [32]byte
	Admin              [20]byte
	SaleAsset          string
	PayAsset           string
	SaleVault          [20]byte
	PayVault           [20]byte
	PriceNumerator     uint64
	PriceDenominator   uint64
	SoftCap            uint64
	HardCap            uint64
	WalletMin          uint64
	WalletMax          uint64
	StartTs            uint64
	EndTs              uint64
	TgeBps             uint16
	CliffSeconds       uint64
	VestingSeconds     uint64
	BuyCooldownSeconds uint64
	Collected          uint64
	TotalAllocated     uint64
	TotalClaimed       uint64
	TotalRefunded      uint64
	FundsWithdrawn     uint64
	WhitelistEnabled   bool
	GuardEnabled       bool
	GuardAuthority     [20]byte
	IsPaused           bool
}

type storedBuyerPosition struct {
	SaleID         [32]byte
	Buyer          [20]byte
	Contributed    uint64
	Purchased      uint64
	Claimed        uint64
	LastPurchaseTs uint64
	Refunded       bool
}

type storedAllowlist struct {
	SaleID      [32]byte
	Root        [32]byte
	Enabled     bool
	Version     uint64
	LastUpdated uint64
}

func toStoredTs(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("state: negative timestamp %d", v)
	}
	return uint64(v), nil
}

// SaleGet loads a campaign aggregate.
func (m *Manager) SaleGet(id [32]byte) (*sale.SaleState, bool) {
	raw, err := m.db.Get(saleStateKey(id))
	if err != nil {
		return nil, false
	}
	stored := new(storedSaleState)
	if err := rlp.DecodeBytes(raw, stored); err != nil {
		return nil, false
	}
	return &sale.SaleState{
		ID:                 stored.ID,
		Admin:              stored.Admin,
		SaleAsset:          stored.SaleAsset,
		PayAsset:           stored.PayAsset,
		SaleVault:          stored.SaleVault,
		PayVault:           stored.PayVault,
		PriceNumerator:     stored.PriceNumerator,
		PriceDenominator:   stored.PriceDenominator,
		SoftCap:            stored.SoftCap,
		HardCap:            stored.HardCap,
		WalletMin:          stored.WalletMin,
		WalletMax:          stored.WalletMax,
		StartTs:            int64(stored.StartTs),
		EndTs:              int64(stored.EndTs),
		TgeBps:             stored.TgeBps,
		CliffSeconds:       int64(stored.CliffSeconds),
		VestingSeconds:     int64(stored.VestingSeconds),
		BuyCooldownSeconds: int64(stored.BuyCooldownSeconds),
		Collected:          stored.Collected,
		TotalAllocated:     stored.TotalAllocated,
		TotalClaimed:       stored.TotalClaimed,
		TotalRefunded:      stored.TotalRefunded,
		FundsWithdrawn:     stored.FundsWithdrawn,
		WhitelistEnabled:   stored.WhitelistEnabled,
		GuardEnabled:       stored.GuardEnabled,
		GuardAuthority:     stored.GuardAuthority,
		IsPaused:           stored.IsPaused,
	}, true
}

// SalePut persists a campaign aggregate.
func (m *Manager) SalePut(s *sale.SaleState) error {
	if s == nil {
		return fmt.Errorf("state: nil sale state")
	}
	startTs, err := toStoredTs(s.StartTs)
	if err != nil {
		return err
	}
	endTs, err := toStoredTs(s.EndTs)
	if err != nil {
		return err
	}
	cliff, err := toStoredTs(s.CliffSeconds)
	if err != nil {
		return err
	}
	vesting, err := toStoredTs(s.VestingSeconds)
	if err != nil {
		return err
	}
	cooldown, err := toStoredTs(s.BuyCooldownSeconds)
	if err != nil {
		return err
	}
	stored := &storedSaleState{
		ID:                 s.ID,
		Admin:              s.Admin,
		SaleAsset:          s.SaleAsset,
		PayAsset:           s.PayAsset,
		SaleVault:          s.SaleVault,
		PayVault:           s.PayVault,
		PriceNumerator:     s.PriceNumerator,
		PriceDenominator:   s.PriceDenominator,
		SoftCap:            s.SoftCap,
		HardCap:            s.HardCap,
		WalletMin:          s.WalletMin,
		WalletMax:          s.WalletMax,
		StartTs:            startTs,
		EndTs:              endTs,
		TgeBps:             s.TgeBps,
		CliffSeconds:       cliff,
		VestingSeconds:     vesting,
		BuyCooldownSeconds: cooldown,
		Collected:          s.Collected,
		TotalAllocated:     s.TotalAllocated,
		TotalClaimed:       s.TotalClaimed,
		TotalRefunded:      s.TotalRefunded,
		FundsWithdrawn:     s.FundsWithdrawn,
		WhitelistEnabled:   s.WhitelistEnabled,
		GuardEnabled:       s.GuardEnabled,
		GuardAuthority:     s.GuardAuthority,
		IsPaused:           s.IsPaused,
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	return m.db.Put(saleStateKey(s.ID), encoded)
}

// AllowlistGet loads the allowlist record for a campaign.
func (m *Manager) AllowlistGet(id [32]byte) (*sale.Allowlist, bool) {
	raw, err := m.db.Get(allowlistKey(id))
	if err != nil {
		return nil, false
	}
	stored := new(storedAllowlist)
	if err := rlp.DecodeBytes(raw, stored); err != nil {
		return nil, false
	}
	return &sale.Allowlist{
		SaleID:      stored.SaleID,
		Root:        stored.Root,
		Enabled:     stored.Enabled,
		Version:     stored.Version,
		LastUpdated: int64(stored.LastUpdated),
	}, true
}

// AllowlistPut persists the allowlist record for a campaign.
func (m *Manager) AllowlistPut(a *sale.Allowlist) error {
	if a == nil {
		return fmt.Errorf("state: nil allowlist")
	}
	updated, err := toStoredTs(a.LastUpdated)
	if err != nil {
		return err
	}
	stored := &storedAllowlist{
		SaleID:      a.SaleID,
		Root:        a.Root,
		Enabled:     a.Enabled,
		Version:     a.Version,
		LastUpdated: updated,
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	return m.db.Put(allowlistKey(a.SaleID), encoded)
}

// PositionGet loads the buyer position for (campaign, participant).
func (m *Manager) PositionGet(id [32]byte, buyer [20]byte) (*sale.BuyerPosition, bool) {
	raw, err := m.db.Get(positionKey(id, buyer))
	if err != nil {
		return nil, false
	}
	stored := new(storedBuyerPosition)
	if err := rlp.DecodeBytes(raw, stored); err != nil {
		return nil, false
	}
	return &sale.BuyerPosition{
		SaleID:         stored.SaleID,
		Buyer:          stored.Buyer,
		Contributed:    stored.Contributed,
		Purchased:      stored.Purchased,
		Claimed:        stored.Claimed,
		LastPurchaseTs: int64(stored.LastPurchaseTs),
		Refunded:       stored.Refunded,
	}, true
}

// PositionPut persists a buyer position.
func (m *Manager) PositionPut(p *sale.BuyerPosition) error {
	if p == nil {
		return fmt.Errorf("state: nil position")
	}
	lastPurchase, err := toStoredTs(p.LastPurchaseTs)
	if err != nil {
		return err
	}
	stored := &storedBuyerPosition{
		SaleID:         p.SaleID,
		Buyer:          p.Buyer,
		Contributed:    p.Contributed,
		Purchased:      p.Purchased,
		Claimed:        p.Claimed,
		LastPurchaseTs: lastPurchase,
		Refunded:       p.Refunded,
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	return m.db.Put(positionKey(p.SaleID, p.Buyer), encoded)
}

// BalanceOf reports the asset balance held by an account. Unknown accounts
// hold zero.
func (m *Manager) BalanceOf(account [20]byte, asset string) (uint64, error) {
	raw, err := m.db.Get(balanceKey(asset, account))
	if err != nil {
		return 0, nil
	}
	var balance uint64
	if err := rlp.DecodeBytes(raw, &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Transfer atomically debits from and credits to, provided the authorizing
// identity controls the source account and the balance suffices.
func (m *Manager) Transfer(from, to, authority [20]byte, asset string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if authority != from {
		return ErrUnauthorizedTransfer
	}
	fromBalance, err := m.BalanceOf(from, asset)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientFunds
	}
	toBalance, err := m.BalanceOf(to, asset)
	if err != nil {
		return err
	}
	if toBalance+amount < toBalance {
		return ErrBalanceOverflow
	}
	if err := m.putBalance(from, asset, fromBalance-amount); err != nil {
		return err
	}
	return m.putBalance(to, asset, toBalance+amount)
}

// Mint credits an account out of thin air. Hosts use it to seed campaign
// vaults with the sale asset and tests use it to fund participants; the
// sale asset's own mint policy lives outside this module.
func (m *Manager) Mint(account [20]byte, asset string, amount uint64) error {
	balance, err := m.BalanceOf(account, asset)
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return ErrBalanceOverflow
	}
	return m.putBalance(account, asset, balance+amount)
}

func (m *Manager) putBalance(account [20]byte, asset string, balance uint64) error {
	encoded, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return err
	}
	return m.db.Put(balanceKey(asset, account), encoded)
}
